package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/schedule"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/pkg/logger"
)

// SeatCounter は運行ごとの座席数を集計するインターフェース
type SeatCounter interface {
	CountByScheduleID(ctx context.Context, scheduleID string) (total int, taken int, err error)
}

// AvailabilityCache は空席数キャッシュへの書き込みインターフェース
type AvailabilityCache interface {
	SetSeatsLeft(ctx context.Context, scheduleID string, count int, ttl time.Duration) error
}

// AvailabilityRefresher は直近の運行の空席数キャッシュを定期的に温めるワーカー
// キャッシュは表示専用であり、予約可否の判断には使われない
type AvailabilityRefresher struct {
	scheduleRepo schedule.Repository
	seatCounter  SeatCounter
	cache        AvailabilityCache
	interval     time.Duration
	cacheTTL     time.Duration
	maxSchedules int
	stopCh       chan struct{}
	doneCh       chan struct{}
}

// NewAvailabilityRefresher は新しいリフレッシャーを作成
func NewAvailabilityRefresher(
	scheduleRepo schedule.Repository,
	seatCounter SeatCounter,
	cache AvailabilityCache,
	interval time.Duration,
	cacheTTL time.Duration,
) *AvailabilityRefresher {
	return &AvailabilityRefresher{
		scheduleRepo: scheduleRepo,
		seatCounter:  seatCounter,
		cache:        cache,
		interval:     interval,
		cacheTTL:     cacheTTL,
		maxSchedules: 200,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// Start はリフレッシャーを開始
func (r *AvailabilityRefresher) Start(ctx context.Context) {
	logger.Info("空席数リフレッシャー開始",
		zap.Duration("interval", r.interval),
		zap.Duration("cache_ttl", r.cacheTTL),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("空席数リフレッシャー停止（コンテキストキャンセル）")
			return
		case <-r.stopCh:
			logger.Info("空席数リフレッシャー停止（シグナル受信）")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// Stop はリフレッシャーを停止
func (r *AvailabilityRefresher) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

// refresh は直近の運行の空席数を再計算してキャッシュに書き込む
func (r *AvailabilityRefresher) refresh(ctx context.Context) {
	log := logger.Get()
	log.Debug("空席数キャッシュの更新開始")

	schedules, err := r.scheduleRepo.ListUpcoming(ctx, r.maxSchedules)
	if err != nil {
		log.Error("運行スケジュール一覧の取得失敗", zap.Error(err))
		return
	}

	refreshed := 0
	for _, s := range schedules {
		total, taken, err := r.seatCounter.CountByScheduleID(ctx, s.ID)
		if err != nil {
			log.Error("座席数の集計失敗", zap.String("schedule_id", s.ID), zap.Error(err))
			continue
		}
		if err := r.cache.SetSeatsLeft(ctx, s.ID, total-taken, r.cacheTTL); err != nil {
			log.Error("空席数キャッシュの書き込み失敗", zap.String("schedule_id", s.ID), zap.Error(err))
			continue
		}
		refreshed++
	}

	if refreshed > 0 {
		log.Debug("空席数キャッシュを更新", zap.Int("count", refreshed))
	}
}
