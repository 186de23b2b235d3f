package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss はキャッシュにキーが存在しない場合のエラー
var ErrCacheMiss = errors.New("cache miss")

// AvailabilityCache は運行ごとの空席数をキャッシュする
// 表示用の値であり、予約可否の判断には使用しない
type AvailabilityCache struct {
	client *redis.Client
}

// NewAvailabilityCache は新しい AvailabilityCache を作成する
func NewAvailabilityCache(client *redis.Client) *AvailabilityCache {
	return &AvailabilityCache{client: client}
}

func availabilityKey(scheduleID string) string {
	return fmt.Sprintf("schedule:%s:seats_left", scheduleID)
}

// GetSeatsLeft は空席数を取得する。キーがなければ ErrCacheMiss を返す
func (c *AvailabilityCache) GetSeatsLeft(ctx context.Context, scheduleID string) (int, error) {
	val, err := c.client.Get(ctx, availabilityKey(scheduleID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("空席数キャッシュの取得に失敗: %w", err)
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("空席数キャッシュの値が不正: %w", err)
	}
	return count, nil
}

// SetSeatsLeft は空席数をTTL付きで保存する
func (c *AvailabilityCache) SetSeatsLeft(ctx context.Context, scheduleID string, count int, ttl time.Duration) error {
	if err := c.client.Set(ctx, availabilityKey(scheduleID), count, ttl).Err(); err != nil {
		return fmt.Errorf("空席数キャッシュの保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は空席数キャッシュを削除する
// 予約コミット後に呼ばれ、次回参照時にDBから再計算される
func (c *AvailabilityCache) Invalidate(ctx context.Context, scheduleID string) error {
	if err := c.client.Del(ctx, availabilityKey(scheduleID)).Err(); err != nil {
		return fmt.Errorf("空席数キャッシュの削除に失敗: %w", err)
	}
	return nil
}
