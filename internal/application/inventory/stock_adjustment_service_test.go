package inventory_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appinventory "github.com/stocker/backend/internal/application/inventory"
	"github.com/stocker/backend/internal/domain/catalog"
	"github.com/stocker/backend/internal/domain/inventory"
	"github.com/stocker/backend/internal/domain/shared"
	"github.com/stocker/backend/internal/infrastructure/persistence/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// mockNotifier records low stock notifications
type mockNotifier struct {
	mu       sync.Mutex
	products []catalog.Product
	err      error
	block    bool
}

func (m *mockNotifier) NotifyLowStock(ctx context.Context, p *catalog.Product) error {
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = append(m.products, *p)
	return m.err
}

func (m *mockNotifier) calls() []catalog.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]catalog.Product(nil), m.products...)
}

// mockPublisher records published events
type mockPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (m *mockPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *mockPublisher) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.EventType())
	}
	return out
}

// mockRecorder records metric calls
type mockRecorder struct {
	mu            sync.Mutex
	outcomes      []string
	notifications []bool
}

func (m *mockRecorder) RecordAdjustment(_ context.Context, outcome string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *mockRecorder) RecordLowStockNotification(_ context.Context, delivered bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, delivered)
}

type fixture struct {
	store     *memory.Store
	notifier  *mockNotifier
	publisher *mockPublisher
	recorder  *mockRecorder
	service   *appinventory.StockAdjustmentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     memory.NewStore(),
		notifier:  &mockNotifier{},
		publisher: &mockPublisher{},
		recorder:  &mockRecorder{},
	}
	f.service = appinventory.NewStockAdjustmentService(f.store, f.notifier, zaptest.NewLogger(t))
	f.service.SetEventPublisher(f.publisher)
	f.service.SetRecorder(f.recorder)
	return f
}

func (f *fixture) seedProduct(t *testing.T, quantity int) *catalog.Product {
	t.Helper()
	ctx := context.Background()

	category, err := catalog.NewCategory("General")
	require.NoError(t, err)
	require.NoError(t, f.store.Categories().Save(ctx, category))

	p, err := catalog.NewProduct(catalog.ProductDetails{
		Name:       "Widget " + uuid.NewString()[:8],
		Price:      decimal.NewFromInt(2),
		CategoryID: category.ID,
	})
	require.NoError(t, err)
	p.QuantityInStock = quantity
	require.NoError(t, f.store.Products().Save(ctx, p))
	return p
}

func (f *fixture) quantity(t *testing.T, id uuid.UUID) int {
	t.Helper()
	p, err := f.store.Products().FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.QuantityInStock
}

func (f *fixture) ledger(t *testing.T, id uuid.UUID) []inventory.StockLedgerEntry {
	t.Helper()
	entries, err := f.store.Ledger().ListByProduct(context.Background(), id)
	require.NoError(t, err)
	return entries
}

func TestAdjustStock_AppliesDelta(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, 10)
	user := uuid.New()

	result, err := f.service.AdjustStock(context.Background(), appinventory.AdjustStockInput{
		ProductID:    p.ID,
		Delta:        " 7 ",
		ActingUserID: &user,
		Note:         "delivery",
	})
	require.NoError(t, err)

	assert.Equal(t, 10, result.OldQuantity)
	assert.Equal(t, 17, result.NewQuantity)
	assert.Equal(t, 17, result.Product.QuantityInStock)
	assert.Equal(t, 17, f.quantity(t, p.ID))

	entries := f.ledger(t, p.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, 7, entries[0].Delta)
	assert.Equal(t, "delivery", entries[0].Note)
	assert.Equal(t, &user, entries[0].ActingUserID)
	assert.Equal(t, int64(1), entries[0].Sequence)
	assert.Equal(t, inventory.EntryKindAdjustment, entries[0].Kind)

	assert.Equal(t, []string{inventory.EventTypeStockAdjusted}, f.publisher.types())
	assert.Equal(t, []string{appinventory.OutcomeApplied}, f.recorder.outcomes)
	assert.Empty(t, f.notifier.calls())
}

func TestAdjustStock_RejectsWithoutStateChange(t *testing.T) {
	tests := []struct {
		name    string
		start   int
		delta   string
		wantErr *shared.DomainError
		msg     string
		outcome string
	}{
		{"negative result", 3, "-4", shared.ErrInvalidState, "resulting stock can't be negative", appinventory.OutcomeOutOfBounds},
		{"non-numeric", 3, "abc", shared.ErrInvalidInput, "invalid quantity", appinventory.OutcomeInvalidInput},
		{"decimal", 3, "1.5", shared.ErrInvalidInput, "invalid quantity", appinventory.OutcomeInvalidInput},
		{"empty", 3, "", shared.ErrInvalidInput, "invalid quantity", appinventory.OutcomeInvalidInput},
		{"zero", 3, "0", shared.ErrInvalidInput, "quantity change must not be zero", appinventory.OutcomeInvalidInput},
		{"beyond int32", 10, "+3000000000", shared.ErrInvalidInput, "invalid quantity", appinventory.OutcomeInvalidInput},
		{"beyond int64", 10, "+9223372036854775807", shared.ErrInvalidInput, "invalid quantity", appinventory.OutcomeInvalidInput},
		{"above maximum stock", catalog.MaxStockQuantity - 1, "2", shared.ErrInvalidState, "resulting stock exceeds the maximum quantity", appinventory.OutcomeOutOfBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			p := f.seedProduct(t, tt.start)

			result, err := f.service.AdjustStock(context.Background(), appinventory.AdjustStockInput{
				ProductID: p.ID,
				Delta:     tt.delta,
			})
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, tt.wantErr))
			assert.Equal(t, tt.msg, err.Error())

			assert.Equal(t, tt.start, f.quantity(t, p.ID))
			assert.Empty(t, f.ledger(t, p.ID))
			assert.Empty(t, f.publisher.types())
			assert.Equal(t, []string{tt.outcome}, f.recorder.outcomes)
		})
	}
}

func TestAdjustStock_ProductNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.AdjustStock(context.Background(), appinventory.AdjustStockInput{
		ProductID: uuid.New(),
		Delta:     "abc",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
	assert.Equal(t, "product not found", err.Error())
}

func TestAdjustStock_ThresholdCrossing(t *testing.T) {
	tests := []struct {
		name       string
		start      int
		delta      string
		final      int
		wantNotify bool
	}{
		{"crossing downward notifies", 6, "-2", 4, true},
		{"already below does not notify", 3, "-1", 2, false},
		{"crossing upward does not notify", 4, "+3", 7, false},
		{"landing exactly on threshold notifies", 8, "-3", 5, true},
		{"staying above does not notify", 20, "-5", 15, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			p := f.seedProduct(t, tt.start)

			result, err := f.service.AdjustStock(context.Background(), appinventory.AdjustStockInput{
				ProductID: p.ID,
				Delta:     tt.delta,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.final, result.NewQuantity)
			assert.Equal(t, tt.wantNotify, result.Notified)
			assert.NoError(t, result.NotificationErr)

			calls := f.notifier.calls()
			if tt.wantNotify {
				require.Len(t, calls, 1)
				assert.Equal(t, tt.final, calls[0].QuantityInStock)
				assert.Contains(t, f.publisher.types(), inventory.EventTypeStockBelowThreshold)
			} else {
				assert.Empty(t, calls)
				assert.NotContains(t, f.publisher.types(), inventory.EventTypeStockBelowThreshold)
			}
		})
	}
}

func TestAdjustStock_NotificationFailureIsAWarning(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("smtp unavailable")
	p := f.seedProduct(t, 6)

	result, err := f.service.AdjustStock(context.Background(), appinventory.AdjustStockInput{
		ProductID: p.ID,
		Delta:     "-2",
	})
	require.NoError(t, err)
	require.Error(t, result.NotificationErr)
	assert.True(t, errors.Is(result.NotificationErr, shared.ErrNotification))
	assert.False(t, result.Notified)

	assert.Equal(t, 4, f.quantity(t, p.ID))
	assert.Len(t, f.ledger(t, p.ID), 1)
	assert.Equal(t, []bool{false}, f.recorder.notifications)
}

func TestAdjustStock_NotificationIsBounded(t *testing.T) {
	f := newFixture(t)
	f.notifier.block = true
	f.service.SetNotificationTimeout(50 * time.Millisecond)
	p := f.seedProduct(t, 6)

	start := time.Now()
	result, err := f.service.AdjustStock(context.Background(), appinventory.AdjustStockInput{
		ProductID: p.ID,
		Delta:     "-1",
	})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	require.Error(t, result.NotificationErr)
	assert.ErrorIs(t, result.NotificationErr, context.DeadlineExceeded)
	assert.Equal(t, 5, f.quantity(t, p.ID))
}

func TestAdjustStock_PersistenceFailureRollsBack(t *testing.T) {
	for _, point := range []string{memory.FaultLedgerAppend, memory.FaultProductSaveStock, memory.FaultCommit} {
		t.Run(point, func(t *testing.T) {
			f := newFixture(t)
			p := f.seedProduct(t, 10)
			f.store.InjectFault(point, errors.New("disk full"))

			_, err := f.service.AdjustStock(context.Background(), appinventory.AdjustStockInput{
				ProductID: p.ID,
				Delta:     "-7",
			})
			require.Error(t, err)
			assert.True(t, errors.Is(err, shared.ErrPersistence))

			assert.Equal(t, 10, f.quantity(t, p.ID))
			assert.Empty(t, f.ledger(t, p.ID))
			assert.Empty(t, f.notifier.calls())
			assert.Equal(t, []string{appinventory.OutcomePersistenceErr}, f.recorder.outcomes)
		})
	}
}

func TestAdjustStock_ConcurrentAdjustmentsSerialize(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, 10)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, delta := range []string{"+3", "-2"} {
		wg.Add(1)
		go func(d string) {
			defer wg.Done()
			_, err := f.service.AdjustStock(context.Background(), appinventory.AdjustStockInput{
				ProductID: p.ID,
				Delta:     d,
			})
			errs <- err
		}(delta)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, 11, f.quantity(t, p.ID))
	entries := f.ledger(t, p.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Delta+entries[1].Delta)
}

func TestAdjustStock_ManyConcurrentWritersKeepLedgerOrder(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, 0)
	other := f.seedProduct(t, 100)

	const writers = 25
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.service.AdjustStockBy(context.Background(), p.ID, 2, nil, "")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := f.service.AdjustStockBy(context.Background(), other.ID, -1, nil, "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 2*writers, f.quantity(t, p.ID))
	assert.Equal(t, 100-writers, f.quantity(t, other.ID))

	entries := f.ledger(t, p.ID)
	require.Len(t, entries, writers)
	for i, e := range entries {
		// most recent first, each entry records the running total
		assert.Equal(t, int64(writers-i), e.Sequence)
		assert.Equal(t, 2*(writers-i), e.QuantityAfter)
	}
}

func TestAdjustStockBy_RejectsZero(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, 1)

	_, err := f.service.AdjustStockBy(context.Background(), p.ID, 0, nil, "")
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestParseDelta(t *testing.T) {
	d, err := appinventory.ParseDelta("-12")
	require.NoError(t, err)
	assert.Equal(t, -12, d)

	d, err = appinventory.ParseDelta("+4")
	require.NoError(t, err)
	assert.Equal(t, 4, d)

	_, err = appinventory.ParseDelta("4x")
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	d, err = appinventory.ParseDelta("2147483647")
	require.NoError(t, err)
	assert.Equal(t, catalog.MaxStockQuantity, d)

	for _, raw := range []string{"2147483648", "-2147483649", "9223372036854775808"} {
		_, err = appinventory.ParseDelta(raw)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput), raw)
	}
}

func TestAdjustStockBy_RejectsOverflow(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, 10)

	_, err := f.service.AdjustStockBy(context.Background(), p.ID, math.MaxInt, nil, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
	assert.Equal(t, "resulting stock exceeds the maximum quantity", err.Error())
	assert.Equal(t, 10, f.quantity(t, p.ID))
	assert.Empty(t, f.ledger(t, p.ID))
}
