package cache

import (
	"context"
	"sync"
	"time"

	"github.com/stocker/backend/internal/application/report"
)

// InMemorySummaryCache keeps the dashboard summary in process memory.
// Suitable for a single API instance.
type InMemorySummaryCache struct {
	mu        sync.RWMutex
	summary   *report.DashboardSummary
	expiresAt time.Time
	now       func() time.Time
}

// NewInMemorySummaryCache creates an empty cache
func NewInMemorySummaryCache() *InMemorySummaryCache {
	return &InMemorySummaryCache{now: time.Now}
}

// Get returns a copy of the cached summary, or nil when absent or expired
func (c *InMemorySummaryCache) Get(_ context.Context) (*report.DashboardSummary, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.summary == nil || !c.now().Before(c.expiresAt) {
		return nil, nil
	}
	return copySummary(c.summary), nil
}

// Set stores a copy of the summary for ttl
func (c *InMemorySummaryCache) Set(_ context.Context, summary *report.DashboardSummary, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary = copySummary(summary)
	c.expiresAt = c.now().Add(ttl)
	return nil
}

// Invalidate drops the cached summary
func (c *InMemorySummaryCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary = nil
	return nil
}

func copySummary(s *report.DashboardSummary) *report.DashboardSummary {
	cp := *s
	cp.RecentAdjustments = append([]report.RecentAdjustment(nil), s.RecentAdjustments...)
	return &cp
}

var _ report.SummaryCache = (*InMemorySummaryCache)(nil)
