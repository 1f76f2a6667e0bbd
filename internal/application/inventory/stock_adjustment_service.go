package inventory

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stocker/backend/internal/domain/catalog"
	"github.com/stocker/backend/internal/domain/inventory"
	"github.com/stocker/backend/internal/domain/shared"
	"github.com/stocker/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// DefaultNotificationTimeout bounds the post-commit low stock alert
	DefaultNotificationTimeout = 10 * time.Second

	// maxConflictAttempts bounds retries when a version check fails on
	// databases that do not honour row locks
	maxConflictAttempts = 3
)

// Adjustment outcomes reported to the metrics recorder
const (
	OutcomeApplied        = "applied"
	OutcomeNotFound       = "not_found"
	OutcomeInvalidInput   = "invalid_input"
	OutcomeOutOfBounds    = "out_of_bounds"
	OutcomePersistenceErr = "persistence_error"
)

// AdjustmentRecorder receives adjustment and notification measurements
type AdjustmentRecorder interface {
	RecordAdjustment(ctx context.Context, outcome string, delta int)
	RecordLowStockNotification(ctx context.Context, delivered bool)
}

type noopRecorder struct{}

func (noopRecorder) RecordAdjustment(context.Context, string, int)    {}
func (noopRecorder) RecordLowStockNotification(context.Context, bool) {}

// AdjustStockInput is the raw caller input for a stock adjustment.
// Delta is kept as text so that malformed quantities are reported as
// invalid input rather than rejected by the transport.
type AdjustStockInput struct {
	ProductID    uuid.UUID
	Delta        string
	ActingUserID *uuid.UUID
	Note         string
}

// AdjustStockResult describes a committed adjustment. NotificationErr is a
// warning: the stock change stands even when it is set.
type AdjustStockResult struct {
	Product         *catalog.Product
	Entry           *inventory.StockLedgerEntry
	OldQuantity     int
	NewQuantity     int
	Notified        bool
	NotificationErr error
}

// StockAdjustmentService applies signed quantity changes to products.
// The read-check-write-append sequence runs in one transaction holding the
// product row lock, so concurrent adjustments of one product serialize and
// adjustments of different products do not contend.
type StockAdjustmentService struct {
	txScope        TransactionScope
	notifier       LowStockNotifier
	eventPublisher shared.EventPublisher
	recorder       AdjustmentRecorder
	notifyTimeout  time.Duration
	logger         *zap.Logger
}

// NewStockAdjustmentService creates a new StockAdjustmentService
func NewStockAdjustmentService(txScope TransactionScope, notifier LowStockNotifier, logger *zap.Logger) *StockAdjustmentService {
	return &StockAdjustmentService{
		txScope:       txScope,
		notifier:      notifier,
		recorder:      noopRecorder{},
		notifyTimeout: DefaultNotificationTimeout,
		logger:        logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockAdjustmentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetRecorder sets the metrics recorder
func (s *StockAdjustmentService) SetRecorder(recorder AdjustmentRecorder) {
	if recorder != nil {
		s.recorder = recorder
	}
}

// SetNotificationTimeout sets the bound on the low stock alert call
func (s *StockAdjustmentService) SetNotificationTimeout(d time.Duration) {
	if d > 0 {
		s.notifyTimeout = d
	}
}

// AdjustStock parses the delta from caller input and applies it.
//
// Errors: shared.ErrNotFound when the product does not exist,
// shared.ErrInvalidInput for a malformed or out of range delta,
// shared.ErrInvalidState when the result would be negative or above
// catalog.MaxStockQuantity, shared.ErrPersistence when the commit fails.
// None of them leave any state changed.
func (s *StockAdjustmentService) AdjustStock(ctx context.Context, input AdjustStockInput) (*AdjustStockResult, error) {
	return s.adjust(ctx, input.ProductID, func() (int, error) {
		return ParseDelta(input.Delta)
	}, input.ActingUserID, input.Note, inventory.EntryKindAdjustment)
}

// AdjustStockBy applies an already typed delta
func (s *StockAdjustmentService) AdjustStockBy(
	ctx context.Context,
	productID uuid.UUID,
	delta int,
	actingUserID *uuid.UUID,
	note string,
) (*AdjustStockResult, error) {
	return s.adjust(ctx, productID, func() (int, error) {
		if delta == 0 {
			return 0, shared.NewInvalidInputError("quantity change must not be zero")
		}
		return delta, nil
	}, actingUserID, note, inventory.EntryKindAdjustment)
}

// ParseDelta parses a signed integer quantity change. Values outside the
// 32-bit range the ledger stores are rejected as invalid.
func ParseDelta(raw string) (int, error) {
	delta, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return 0, shared.NewInvalidInputError("invalid quantity")
	}
	if delta == 0 {
		return 0, shared.NewInvalidInputError("quantity change must not be zero")
	}
	return int(delta), nil
}

func (s *StockAdjustmentService) adjust(
	ctx context.Context,
	productID uuid.UUID,
	parseDelta func() (int, error),
	actingUserID *uuid.UUID,
	note string,
	kind inventory.EntryKind,
) (*AdjustStockResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock", "adjust",
		telemetry.SpanAttrProductID, productID.String(),
	)
	defer span.End()

	var (
		result *AdjustStockResult
		err    error
	)
	for attempt := 1; attempt <= maxConflictAttempts; attempt++ {
		result, err = s.adjustOnce(ctx, productID, parseDelta, actingUserID, note, kind)
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			break
		}
		s.logger.Debug("stock adjustment version conflict, retrying",
			zap.String("product_id", productID.String()),
			zap.Int("attempt", attempt),
		)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		s.recorder.RecordAdjustment(ctx, outcomeOf(err), 0)
		s.logger.Info("stock adjustment rejected",
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrDelta, result.Entry.Delta,
		telemetry.SpanAttrOldQuantity, result.OldQuantity,
		telemetry.SpanAttrNewQuantity, result.NewQuantity,
	)
	s.recorder.RecordAdjustment(ctx, OutcomeApplied, result.Entry.Delta)
	s.logger.Info("stock adjusted",
		zap.String("product_id", productID.String()),
		zap.Int("delta", result.Entry.Delta),
		zap.Int("old_quantity", result.OldQuantity),
		zap.Int("new_quantity", result.NewQuantity),
	)

	s.afterCommit(ctx, result)
	return result, nil
}

func (s *StockAdjustmentService) adjustOnce(
	ctx context.Context,
	productID uuid.UUID,
	parseDelta func() (int, error),
	actingUserID *uuid.UUID,
	note string,
	kind inventory.EntryKind,
) (*AdjustStockResult, error) {
	var result *AdjustStockResult

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.ProductRepo().FindByIDForUpdate(ctx, productID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewNotFoundError("product")
			}
			return shared.NewPersistenceError(err)
		}

		delta, err := parseDelta()
		if err != nil {
			return err
		}

		oldQuantity, newQuantity, err := product.ApplyStockDelta(delta)
		if err != nil {
			return err
		}

		entry, err := inventory.NewStockLedgerEntry(product.ID, actingUserID, kind, delta, newQuantity, note)
		if err != nil {
			return err
		}

		if err := repos.ProductRepo().SaveStock(ctx, product); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				return err
			}
			return shared.NewPersistenceError(err)
		}

		seq, err := repos.LedgerRepo().NextSequence(ctx, product.ID)
		if err != nil {
			return shared.NewPersistenceError(err)
		}
		entry.Sequence = seq

		if _, err := repos.LedgerRepo().Append(ctx, entry); err != nil {
			return shared.NewPersistenceError(err)
		}

		result = &AdjustStockResult{
			Product:     product,
			Entry:       entry,
			OldQuantity: oldQuantity,
			NewQuantity: newQuantity,
		}
		return nil
	})
	if err != nil {
		if _, ok := shared.AsDomainError(err); ok {
			return nil, err
		}
		// commit failures surface here
		return nil, shared.NewPersistenceError(err)
	}
	return result, nil
}

// afterCommit publishes events and sends the low stock alert. Nothing here
// may undo the committed change.
func (s *StockAdjustmentService) afterCommit(ctx context.Context, result *AdjustStockResult) {
	events := []shared.DomainEvent{inventory.NewStockAdjustedEvent(result.Entry)}
	crossed := inventory.CrossedBelowThreshold(result.OldQuantity, result.NewQuantity)
	if crossed {
		telemetry.AddEvent(trace.SpanFromContext(ctx), "low_stock_threshold_crossed",
			telemetry.SpanAttrNewQuantity, result.NewQuantity,
		)
		events = append(events, inventory.NewStockBelowThresholdEvent(
			result.Product.ID, result.Product.Name, result.NewQuantity, catalog.LowStockThreshold,
		))
	}
	if s.eventPublisher != nil {
		// Errors are logged by the event bus, not propagated
		_ = s.eventPublisher.Publish(ctx, events...)
	}

	if !crossed || s.notifier == nil {
		return
	}

	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	if err := s.notifier.NotifyLowStock(notifyCtx, result.Product); err != nil {
		result.NotificationErr = shared.NewNotificationError(err)
		s.recorder.RecordLowStockNotification(ctx, false)
		s.logger.Warn("low stock notification failed",
			zap.String("product_id", result.Product.ID.String()),
			zap.Int("quantity", result.NewQuantity),
			zap.Error(err),
		)
		return
	}
	result.Notified = true
	s.recorder.RecordLowStockNotification(ctx, true)
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, shared.ErrInvalidInput):
		return OutcomeInvalidInput
	case errors.Is(err, shared.ErrInvalidState):
		return OutcomeOutOfBounds
	default:
		return OutcomePersistenceErr
	}
}
