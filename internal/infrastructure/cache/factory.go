// Package cache provides the dashboard summary caches: Redis for shared
// deployments and an in-process fallback.
package cache

import (
	"fmt"

	"github.com/stocker/backend/internal/application/report"
	"github.com/stocker/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Option configures NewSummaryCache
type Option func(*factoryOptions)

type factoryOptions struct {
	logger        *zap.Logger
	allowFallback bool
}

// WithLogger sets the logger used to report the chosen backend
func WithLogger(logger *zap.Logger) Option {
	return func(o *factoryOptions) {
		o.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory cache. Default is true.
func WithInMemoryFallback(allow bool) Option {
	return func(o *factoryOptions) {
		o.allowFallback = allow
	}
}

// NewSummaryCache returns a Redis cache when redis.enabled is set and
// reachable, the in-memory cache otherwise. The returned close function
// releases the Redis client and is never nil.
func NewSummaryCache(cfg config.RedisConfig, opts ...Option) (report.SummaryCache, func() error, error) {
	o := factoryOptions{logger: zap.NewNop(), allowFallback: true}
	for _, opt := range opts {
		opt(&o)
	}
	noClose := func() error { return nil }

	if !cfg.Enabled {
		o.logger.Info("using in-memory dashboard cache")
		return NewInMemorySummaryCache(), noClose, nil
	}

	client, err := NewRedisClient(cfg)
	if err != nil {
		if !o.allowFallback {
			return nil, noClose, fmt.Errorf("redis required for dashboard cache: %w", err)
		}
		o.logger.Warn("Redis unavailable, falling back to in-memory dashboard cache", zap.Error(err))
		return NewInMemorySummaryCache(), noClose, nil
	}

	o.logger.Info("using Redis dashboard cache",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.DB),
	)
	c := NewRedisSummaryCache(client, "")
	return c, c.Close, nil
}
