package telemetry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stocker/backend/internal/infrastructure/config"
)

func TestProviders_Disabled(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	tp, err := NewTracerProvider(ctx, ConfigFrom(config.TelemetryConfig{ServiceName: "test"}), logger)
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("x"))
	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, MetricsConfig{ServiceName: "test"}, logger)
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("x"))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerFor(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), samplerFor(0).Description())
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased")
}

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string][]metricdata.DataPoint[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string][]metricdata.DataPoint[int64])
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				out[m.Name] = data.DataPoints
			case metricdata.Gauge[int64]:
				out[m.Name] = data.DataPoints
			}
		}
	}
	return out
}

func valueFor(points []metricdata.DataPoint[int64], key attribute.Key, want attribute.Value) int64 {
	for _, dp := range points {
		if v, ok := dp.Attributes.Value(key); ok && v == want {
			return dp.Value
		}
	}
	return -1
}

type fixedProvider struct {
	count int64
	calls atomic.Int32
}

func (p *fixedProvider) LowStockCount(context.Context) (int64, error) {
	p.calls.Add(1)
	return p.count, nil
}

func TestStockMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(ctx) }()

	_, err := NewStockMetrics(StockMetricsConfig{})
	assert.True(t, errors.Is(err, ErrMeterNil))

	levels := &fixedProvider{count: 4}
	sm, err := NewStockMetrics(StockMetricsConfig{Meter: provider.Meter("test"), Provider: levels})
	require.NoError(t, err)

	sm.RecordAdjustment(ctx, OutcomeApplied, 5)
	sm.RecordAdjustment(ctx, OutcomeApplied, -3)
	sm.RecordAdjustment(ctx, "out_of_bounds", 0)
	sm.RecordLowStockNotification(ctx, true)
	sm.RecordLowStockNotification(ctx, false)
	sm.RecordLowStockNotification(ctx, false)

	sm.StartPeriodicCollection(ctx, time.Hour)
	require.Eventually(t, func() bool { return levels.calls.Load() > 0 }, time.Second, 10*time.Millisecond)
	sm.Stop()

	sums := collectSums(t, reader)
	adjustments := sums["stocker_stock_adjustments_total"]
	assert.Equal(t, int64(2), valueFor(adjustments, AttrOutcome, attribute.StringValue(OutcomeApplied)))
	assert.Equal(t, int64(1), valueFor(adjustments, AttrOutcome, attribute.StringValue("out_of_bounds")))

	units := sums["stocker_stock_units_moved_total"]
	assert.Equal(t, int64(5), valueFor(units, AttrDirection, attribute.StringValue("in")))
	assert.Equal(t, int64(3), valueFor(units, AttrDirection, attribute.StringValue("out")))

	notifications := sums["stocker_low_stock_notifications_total"]
	assert.Equal(t, int64(1), valueFor(notifications, AttrDelivered, attribute.BoolValue(true)))
	assert.Equal(t, int64(2), valueFor(notifications, AttrDelivered, attribute.BoolValue(false)))

	require.Eventually(t, func() bool {
		gauge := collectSums(t, reader)["stocker_low_stock_products"]
		return len(gauge) == 1 && gauge[0].Value == 4
	}, time.Second, 10*time.Millisecond)
}

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestStartServiceSpan(t *testing.T) {
	recorder := installRecorder(t)

	_, span := StartServiceSpan(context.Background(), "stock", "adjust", SpanAttrDelta, -2, "ignored")
	SetAttributes(span, SpanAttrNewQuantity, 4)
	AddEvent(span, "threshold_crossed", SpanAttrProductID, "p-1")
	RecordError(span, errors.New("boom"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	s := ended[0]
	assert.Equal(t, "stock.adjust", s.Name())
	assert.Contains(t, s.Attributes(), attribute.Int(SpanAttrDelta, -2))
	assert.Contains(t, s.Attributes(), attribute.Int(SpanAttrNewQuantity, 4))
	require.Len(t, s.Events(), 2) // the event and the recorded error
	assert.Equal(t, "threshold_crossed", s.Events()[0].Name)
	assert.Equal(t, "boom", s.Status().Description)
}

func TestDBTracingPlugin(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("disabled registers nothing", func(t *testing.T) {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		require.NoError(t, err)
		require.NoError(t, db.Use(NewDBTracingPlugin(DefaultDBTracingConfig(), logger)))
		assert.Nil(t, db.Callback().Query().Get("otel_slow_query:query"))
	})

	t.Run("enabled records query spans", func(t *testing.T) {
		recorder := installRecorder(t)

		cfg := DefaultDBTracingConfig()
		cfg.Enabled = true
		cfg.DBSystem = "sqlite"

		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		require.NoError(t, err)
		require.NoError(t, db.Use(NewDBTracingPlugin(cfg, logger)))
		assert.NotNil(t, db.Callback().Query().Get("otel_slow_query:query"))

		var n int
		require.NoError(t, db.WithContext(context.Background()).Raw("SELECT 1").Scan(&n).Error)
		assert.Equal(t, 1, n)
		assert.NotEmpty(t, recorder.Ended())
	})
}
