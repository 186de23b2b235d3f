package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/schedule"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/seat"
	redisinfra "github.com/sanosuguru/go-bus-seat-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/pkg/metrics"
)

const availabilityCacheTTL = 30 * time.Second

// AvailableBus は検索結果1件分の運行サマリー
type AvailableBus struct {
	ScheduleID    string
	CompanyName   string
	BusName       string
	BusNumber     string
	BusType       string
	JourneyDate   time.Time
	DepartureTime string
	ArrivalTime   string
	TotalSeats    int
	BookedSeats   int
	SeatsLeft     int
	Fare          float64
	BoardingPoint string
	DroppingPoint string
}

// SearchService は運行スケジュールの検索・一覧を提供する
// 予約経路とは独立した読み取り専用サービス
type SearchService struct {
	scheduleRepo schedule.Repository
	busRepo      schedule.BusRepository
	seatRepo     seat.Repository
	cache        AvailabilityCache
	metrics      *metrics.Metrics
}

// NewSearchService は新しいSearchServiceを作成する。cache と m は nil を許容する
func NewSearchService(scr schedule.Repository, br schedule.BusRepository, sr seat.Repository, cache AvailabilityCache, m *metrics.Metrics) *SearchService {
	return &SearchService{scheduleRepo: scr, busRepo: br, seatRepo: sr, cache: cache, metrics: m}
}

// SearchAvailableBuses は出発地・目的地・乗車日で運行を検索する
func (s *SearchService) SearchAvailableBuses(ctx context.Context, fromCity, toCity string, journeyDate time.Time) ([]*AvailableBus, error) {
	if fromCity == "" {
		return nil, schedule.ErrFromCityRequired
	}
	if toCity == "" {
		return nil, schedule.ErrToCityRequired
	}

	schedules, err := s.scheduleRepo.Search(ctx, fromCity, toCity, journeyDate)
	if err != nil {
		return nil, err
	}

	result := make([]*AvailableBus, 0, len(schedules))
	for _, sch := range schedules {
		ab, err := s.toAvailableBus(ctx, sch)
		if err != nil {
			return nil, err
		}
		result = append(result, ab)
	}
	return result, nil
}

// GetBusByScheduleID はスケジュールIDから運行サマリーを取得する
func (s *SearchService) GetBusByScheduleID(ctx context.Context, scheduleID string) (*AvailableBus, error) {
	sch, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	return s.toAvailableBus(ctx, sch)
}

func (s *SearchService) toAvailableBus(ctx context.Context, sch *schedule.BusSchedule) (*AvailableBus, error) {
	bus, err := s.busRepo.GetByID(ctx, sch.BusID)
	if err != nil {
		return nil, err
	}

	seatsLeft, taken, err := s.seatsLeft(ctx, sch.ID, bus.TotalSeats)
	if err != nil {
		return nil, err
	}

	return &AvailableBus{
		ScheduleID:    sch.ID,
		CompanyName:   bus.CompanyName,
		BusName:       bus.BusName,
		BusNumber:     bus.BusNumber,
		BusType:       bus.BusType,
		JourneyDate:   sch.JourneyDate,
		DepartureTime: sch.DepartureTime,
		ArrivalTime:   sch.ArrivalTime,
		TotalSeats:    bus.TotalSeats,
		BookedSeats:   taken,
		SeatsLeft:     seatsLeft,
		Fare:          sch.Fare,
		BoardingPoint: sch.BoardingPoint,
		DroppingPoint: sch.DroppingPoint,
	}, nil
}

// seatsLeft は空席数をキャッシュ優先で取得する
func (s *SearchService) seatsLeft(ctx context.Context, scheduleID string, totalSeats int) (left, taken int, err error) {
	if s.cache != nil {
		left, err := s.cache.GetSeatsLeft(ctx, scheduleID)
		if err == nil {
			s.observeCache("hit")
			return left, totalSeats - left, nil
		}
		s.observeCache("miss")
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("空席数キャッシュ取得エラー", zap.Error(err))
		}
	}

	_, taken, err = s.seatRepo.CountByScheduleID(ctx, scheduleID)
	if err != nil {
		return 0, 0, err
	}
	left = totalSeats - taken

	if s.cache != nil {
		if cacheErr := s.cache.SetSeatsLeft(ctx, scheduleID, left, availabilityCacheTTL); cacheErr != nil {
			logger.Warn("空席数キャッシュ保存エラー", zap.Error(cacheErr))
		}
	}
	return left, taken, nil
}

func (s *SearchService) observeCache(result string) {
	if s.metrics != nil {
		s.metrics.AvailabilityCacheTotal.WithLabelValues(result).Inc()
	}
}
