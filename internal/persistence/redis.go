package persistence

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/gym-platform/internal/config"
	"github.com/spec-kit/gym-platform/internal/domain"
)

// unread-count cache entries expire on their own as a safety net; every
// notification mutation also invalidates them explicitly.
const unreadCacheTTL = 5 * time.Minute

// Redis wraps the go-redis client and exposes the unread-count cache.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

func unreadKey(recipient domain.Recipient) string {
	return "unread:" + recipient.Key()
}

// GetUnreadCount returns the cached unread count, or ok=false on miss or
// any transport error (callers fall through to the store).
func (r *Redis) GetUnreadCount(ctx context.Context, recipient domain.Recipient) (int64, bool) {
	if r == nil || r.Client == nil {
		return 0, false
	}
	val, err := r.Client.Get(ctx, unreadKey(recipient)).Result()
	if err != nil {
		return 0, false
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

// SetUnreadCount caches the unread count for a recipient.
func (r *Redis) SetUnreadCount(ctx context.Context, recipient domain.Recipient, count int64) {
	if r == nil || r.Client == nil {
		return
	}
	_ = r.Client.Set(ctx, unreadKey(recipient), strconv.FormatInt(count, 10), unreadCacheTTL).Err()
}

// InvalidateUnreadCount drops the cached count after a mutation.
func (r *Redis) InvalidateUnreadCount(ctx context.Context, recipient domain.Recipient) {
	if r == nil || r.Client == nil {
		return
	}
	_ = r.Client.Del(ctx, unreadKey(recipient)).Err()
}
