package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/incident-watch/backend/pkg/logger"
)

// RedisTracker stores processed keys with a retention TTL, so the same key
// reappears as new after the window expires.
type RedisTracker struct {
	client    *redis.Client
	retention time.Duration
}

func NewRedisTracker(host string, port int, password string, db int, retentionHours int) (*RedisTracker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if retentionHours <= 0 {
		retentionHours = 24
	}

	logger.Info("Redis dedup tracker initialized",
		zap.String("addr", fmt.Sprintf("%s:%d", host, port)),
		zap.Int("retention_hours", retentionHours),
	)

	return &RedisTracker{
		client:    client,
		retention: time.Duration(retentionHours) * time.Hour,
	}, nil
}

func (r *RedisTracker) Seen(ctx context.Context, key string) bool {
	n, err := r.client.Exists(ctx, "seen:"+key).Result()
	if err != nil {
		logger.Warn("Redis dedup check failed", zap.Error(err))
		return false
	}
	return n > 0
}

func (r *RedisTracker) MarkSeen(ctx context.Context, key string) error {
	// SetNX keeps the original insertion time: re-marking a seen key must
	// not extend its retention window.
	err := r.client.SetNX(ctx, "seen:"+key, 1, r.retention).Err()
	if err != nil {
		return fmt.Errorf("failed to mark key seen: %w", err)
	}
	return nil
}

func (r *RedisTracker) Close() error {
	return r.client.Close()
}
