package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stocker/backend/internal/application/report"
	"github.com/stocker/backend/internal/infrastructure/config"
)

// DefaultSummaryKey is the Redis key holding the dashboard summary
const DefaultSummaryKey = "stocker:dashboard:summary"

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisSummaryCache keeps the dashboard summary in Redis as JSON so that
// every API instance sees the same value and the same invalidation
type RedisSummaryCache struct {
	client *redis.Client
	key    string
}

// NewRedisSummaryCache creates a cache on an existing client. An empty key
// uses DefaultSummaryKey.
func NewRedisSummaryCache(client *redis.Client, key string) *RedisSummaryCache {
	if key == "" {
		key = DefaultSummaryKey
	}
	return &RedisSummaryCache{client: client, key: key}
}

// Get returns the cached summary, or nil on a miss
func (c *RedisSummaryCache) Get(ctx context.Context) (*report.DashboardSummary, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read dashboard summary: %w", err)
	}

	var summary report.DashboardSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		// a value written by an incompatible version is treated as a miss
		return nil, nil
	}
	return &summary, nil
}

// Set stores the summary for ttl
func (c *RedisSummaryCache) Set(ctx context.Context, summary *report.DashboardSummary, ttl time.Duration) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode dashboard summary: %w", err)
	}
	if err := c.client.Set(ctx, c.key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write dashboard summary: %w", err)
	}
	return nil
}

// Invalidate drops the cached summary
func (c *RedisSummaryCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate dashboard summary: %w", err)
	}
	return nil
}

// Close closes the underlying client
func (c *RedisSummaryCache) Close() error {
	return c.client.Close()
}

var _ report.SummaryCache = (*RedisSummaryCache)(nil)
