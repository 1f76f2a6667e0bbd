package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when no meter is supplied.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// StockLevelProvider reports the number of products at or below the
// low-stock threshold.
type StockLevelProvider interface {
	LowStockCount(ctx context.Context) (int64, error)
}

// StockMetricsConfig holds configuration for stock metrics.
type StockMetricsConfig struct {
	Meter    metric.Meter
	Logger   *zap.Logger
	Provider StockLevelProvider
}

// OutcomeApplied is the adjustment outcome that moves units
const OutcomeApplied = "applied"

// StockMetrics records stock adjustment and low-stock alert activity.
// It satisfies the adjustment recorder of the stock adjustment service.
type StockMetrics struct {
	logger   *zap.Logger
	provider StockLevelProvider

	adjustmentsTotal   *Counter
	unitsMovedTotal    *Counter
	notificationsTotal *Counter
	lowStockProducts   *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
}

// NewStockMetrics creates the stock instruments.
func NewStockMetrics(cfg StockMetricsConfig) (*StockMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sm := &StockMetrics{
		logger:   logger,
		provider: cfg.Provider,
		stopChan: make(chan struct{}),
	}

	var err error
	if sm.adjustmentsTotal, err = NewCounter(cfg.Meter,
		"stocker_stock_adjustments_total",
		"Stock adjustments by outcome",
		"{adjustments}",
	); err != nil {
		return nil, err
	}
	if sm.unitsMovedTotal, err = NewCounter(cfg.Meter,
		"stocker_stock_units_moved_total",
		"Units added to or removed from stock",
		"{units}",
	); err != nil {
		return nil, err
	}
	if sm.notificationsTotal, err = NewCounter(cfg.Meter,
		"stocker_low_stock_notifications_total",
		"Low stock alerts by delivery result",
		"{notifications}",
	); err != nil {
		return nil, err
	}
	if sm.lowStockProducts, err = NewGauge(cfg.Meter,
		"stocker_low_stock_products",
		"Products at or below the low stock threshold",
		"{products}",
	); err != nil {
		return nil, err
	}
	return sm, nil
}

// RecordAdjustment counts an adjustment attempt and, when applied, the units moved
func (sm *StockMetrics) RecordAdjustment(ctx context.Context, outcome string, delta int) {
	sm.adjustmentsTotal.Inc(ctx, AttrOutcome.String(outcome))
	if outcome != OutcomeApplied || delta == 0 {
		return
	}
	direction, units := "in", int64(delta)
	if delta < 0 {
		direction, units = "out", int64(-delta)
	}
	sm.unitsMovedTotal.Add(ctx, units, AttrDirection.String(direction))
}

// RecordLowStockNotification counts an alert delivery attempt
func (sm *StockMetrics) RecordLowStockNotification(ctx context.Context, delivered bool) {
	sm.notificationsTotal.Inc(ctx, AttrDelivered.Bool(delivered))
}

// StartPeriodicCollection samples the low-stock gauge every interval
// (default: 1 minute) until Stop is called or ctx ends. Non-blocking.
func (sm *StockMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	if sm.provider == nil {
		return
	}
	sm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = time.Minute
		}
		go sm.runPeriodicCollection(ctx, interval)
	})
}

func (sm *StockMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sm.collect(ctx)
	for {
		select {
		case <-sm.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			sm.collect(ctx)
		}
	}
}

func (sm *StockMetrics) collect(ctx context.Context) {
	count, err := sm.provider.LowStockCount(ctx)
	if err != nil {
		sm.logger.Warn("Failed to get low stock count", zap.Error(err))
		return
	}
	sm.lowStockProducts.Record(ctx, count)
}

// Stop stops the periodic collection.
func (sm *StockMetrics) Stop() {
	sm.stopOnce.Do(func() {
		close(sm.stopChan)
	})
}
