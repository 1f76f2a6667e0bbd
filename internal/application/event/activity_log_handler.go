// Package event holds application-level subscribers of domain events.
package event

import (
	"context"

	"github.com/stocker/backend/internal/domain/inventory"
	"github.com/stocker/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ActivityLogHandler writes a structured log line for every domain event.
// Stock changes are logged at info and threshold crossings at warn so that
// they can be picked out of the log stream without the database.
type ActivityLogHandler struct {
	logger *zap.Logger
}

// NewActivityLogHandler creates a new ActivityLogHandler
func NewActivityLogHandler(logger *zap.Logger) *ActivityLogHandler {
	return &ActivityLogHandler{logger: logger.Named("activity")}
}

// EventTypes returns nil: the handler receives every event
func (h *ActivityLogHandler) EventTypes() []string {
	return nil
}

// Handle logs the event
func (h *ActivityLogHandler) Handle(_ context.Context, evt shared.DomainEvent) error {
	base := []zap.Field{
		zap.String("event_type", evt.EventType()),
		zap.String("event_id", evt.EventID().String()),
		zap.String("aggregate_id", evt.AggregateID().String()),
		zap.Time("occurred_at", evt.OccurredAt()),
	}

	switch e := evt.(type) {
	case *inventory.StockAdjustedEvent:
		fields := append(base,
			zap.Int("delta", e.Delta),
			zap.Int("old_quantity", e.OldQuantity),
			zap.Int("new_quantity", e.NewQuantity),
			zap.String("entry_id", e.EntryID.String()),
		)
		if e.ActingUserID != nil {
			fields = append(fields, zap.String("user_id", e.ActingUserID.String()))
		}
		h.logger.Info("stock adjusted", fields...)
	case *inventory.StockBelowThresholdEvent:
		h.logger.Warn("stock at or below threshold", append(base,
			zap.String("product_name", e.ProductName),
			zap.Int("quantity", e.CurrentQuantity),
			zap.Int("threshold", e.Threshold),
		)...)
	default:
		h.logger.Debug("domain event", base...)
	}
	return nil
}

var _ shared.EventHandler = (*ActivityLogHandler)(nil)
