package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stocker/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Product", uuid.New())}
}

type testHandler struct {
	mu      sync.Mutex
	types   []string
	handled []string
	err     error
	panics  bool
}

func (h *testHandler) Handle(_ context.Context, e shared.DomainEvent) error {
	if h.panics {
		panic("boom")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, e.EventType())
	return h.err
}

func (h *testHandler) EventTypes() []string { return h.types }

func (h *testHandler) got() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.handled...)
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	stock := &testHandler{types: []string{"StockAdjusted"}}
	all := &testHandler{}
	explicit := &testHandler{types: []string{"ignored"}}

	bus.Subscribe(stock)
	bus.Subscribe(all)
	bus.Subscribe(explicit, "ProductDeleted")

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("StockAdjusted"),
		newTestEvent("ProductDeleted"),
	))

	assert.Equal(t, []string{"StockAdjusted"}, stock.got())
	assert.Equal(t, []string{"StockAdjusted", "ProductDeleted"}, all.got())
	assert.Equal(t, []string{"ProductDeleted"}, explicit.got())

	bus.Unsubscribe(all)
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("StockAdjusted")))
	assert.Len(t, all.got(), 2)
	assert.Len(t, stock.got(), 2)
}

func TestInMemoryEventBus_HandlerFailuresAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := &testHandler{types: []string{"X"}, err: errors.New("cache down")}
	panicking := &testHandler{types: []string{"X"}, panics: true}
	healthy := &testHandler{types: []string{"X"}}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("X"))
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, healthy.got())
	assert.Equal(t, 2, logs.FilterMessage("handler failed to process event").Len())
}

func TestInMemoryEventBus_StopDropsEvents(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &testHandler{}
	bus.Subscribe(h)

	require.NoError(t, bus.Stop(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("X")))
	assert.Empty(t, h.got())

	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("X")))
	assert.Len(t, h.got(), 1)
}
