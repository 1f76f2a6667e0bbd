package report

import (
	"context"

	"github.com/stocker/backend/internal/domain/catalog"
	"github.com/stocker/backend/internal/domain/inventory"
	"github.com/stocker/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SummaryInvalidationHandler drops the cached dashboard summary whenever
// stock or the catalog changes
type SummaryInvalidationHandler struct {
	cache  SummaryCache
	logger *zap.Logger
}

// NewSummaryInvalidationHandler creates a new handler
func NewSummaryInvalidationHandler(cache SummaryCache, logger *zap.Logger) *SummaryInvalidationHandler {
	return &SummaryInvalidationHandler{cache: cache, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *SummaryInvalidationHandler) EventTypes() []string {
	return []string{
		inventory.EventTypeStockAdjusted,
		catalog.EventTypeProductCreated,
		catalog.EventTypeProductUpdated,
		catalog.EventTypeProductDeleted,
		catalog.EventTypeCategoryDeleted,
	}
}

// Handle invalidates the cache
func (h *SummaryInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if err := h.cache.Invalidate(ctx); err != nil {
		h.logger.Warn("dashboard cache invalidation failed",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

var _ shared.EventHandler = (*SummaryInvalidationHandler)(nil)
