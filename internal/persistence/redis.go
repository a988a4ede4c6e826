package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/site-api/internal/config"
)

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
	logger *zap.Logger
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

	return &Redis{Client: client, logger: logger}
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

// MarkEventSeen records a webhook event id and reports whether it was already
// processed. Providers redeliver events; a duplicate must not mutate state
// twice. Degrades open on Redis errors so an unavailable cache never blocks
// event processing.
func (r *Redis) MarkEventSeen(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	if r == nil || r.Client == nil || eventID == "" {
		return false, nil
	}
	fresh, err := r.Client.SetNX(ctx, "webhook:event:"+eventID, 1, ttl).Result()
	if err != nil {
		r.logger.Warn("webhook dedup unavailable", zap.Error(err))
		return false, nil
	}
	return !fresh, nil
}
