package report_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appinventory "github.com/stocker/backend/internal/application/inventory"
	"github.com/stocker/backend/internal/application/report"
	"github.com/stocker/backend/internal/domain/catalog"
	"github.com/stocker/backend/internal/domain/inventory"
	"github.com/stocker/backend/internal/domain/partner"
	"github.com/stocker/backend/internal/infrastructure/persistence/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCache struct {
	mu          sync.Mutex
	summary     *report.DashboardSummary
	sets        int
	invalidated int
}

func (c *fakeCache) Get(context.Context) (*report.DashboardSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summary, nil
}

func (c *fakeCache) Set(_ context.Context, s *report.DashboardSummary, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary = s
	c.sets++
	return nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary = nil
	c.invalidated++
	return nil
}

type fakeArchiver struct {
	kinds []string
	data  [][]byte
	err   error
}

func (a *fakeArchiver) Archive(_ context.Context, kind string, _ time.Time, data []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.kinds = append(a.kinds, kind)
	a.data = append(a.data, data)
	return "exports/" + kind + "/x.csv", nil
}

type seeded struct {
	store    *memory.Store
	supplier *partner.Supplier
	beans    *catalog.Product
	filters  *catalog.Product
}

func seed(t *testing.T) *seeded {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	coffee, err := catalog.NewCategory("Coffee")
	require.NoError(t, err)
	require.NoError(t, store.Categories().Save(ctx, coffee))

	sup, err := partner.NewSupplier(partner.SupplierDetails{
		Name: "Roasters", Email: "hello@roasters.test", Phone: "555", Website: "https://roasters.test",
	})
	require.NoError(t, err)
	require.NoError(t, store.Suppliers().Save(ctx, sup))

	mk := func(name, price string, qty int) *catalog.Product {
		p, err := catalog.NewProduct(catalog.ProductDetails{
			Name: name, Price: decimal.RequireFromString(price), CategoryID: coffee.ID,
		})
		require.NoError(t, err)
		p.SetSuppliers([]uuid.UUID{sup.ID})
		p.QuantityInStock = qty
		require.NoError(t, store.Products().Save(ctx, p))
		return p
	}

	return &seeded{
		store:    store,
		supplier: sup,
		beans:    mk("Beans", "10.00", 12),
		filters:  mk("Filters", "2.50", 0),
	}
}

func TestDashboardService_Summary(t *testing.T) {
	ctx := context.Background()
	s := seed(t)

	adjust := appinventory.NewStockAdjustmentService(s.store, nil, zap.NewNop())
	_, err := adjust.AdjustStockBy(ctx, s.beans.ID, -8, nil, "sale")
	require.NoError(t, err)

	cache := &fakeCache{}
	svc := report.NewDashboardService(
		s.store.Products(), s.store.Categories(), s.store.Suppliers(), s.store.Ledger(),
		cache, time.Minute, zap.NewNop(),
	)

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, summary.TotalProducts)
	assert.EqualValues(t, 1, summary.TotalCategories)
	assert.EqualValues(t, 1, summary.TotalSuppliers)
	assert.EqualValues(t, 2, summary.LowStockCount)
	assert.EqualValues(t, 1, summary.OutOfStockCount)
	assert.True(t, decimal.RequireFromString("40").Equal(summary.TotalStockValue))
	require.Len(t, summary.RecentAdjustments, 1)
	assert.Equal(t, "Beans", summary.RecentAdjustments[0].ProductName)
	assert.Equal(t, string(inventory.EntryKindAdjustment), summary.RecentAdjustments[0].Kind)
	assert.Equal(t, 1, cache.sets)

	again, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Same(t, summary, again)
	assert.Equal(t, 1, cache.sets)
}

func TestSummaryInvalidationHandler(t *testing.T) {
	cache := &fakeCache{summary: &report.DashboardSummary{}}
	h := report.NewSummaryInvalidationHandler(cache, zap.NewNop())

	assert.Contains(t, h.EventTypes(), inventory.EventTypeStockAdjusted)
	assert.Contains(t, h.EventTypes(), catalog.EventTypeCategoryDeleted)

	entry, err := inventory.NewStockLedgerEntry(uuid.New(), nil, inventory.EntryKindAdjustment, 1, 1, "")
	require.NoError(t, err)
	require.NoError(t, h.Handle(context.Background(), inventory.NewStockAdjustedEvent(entry)))

	got, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, cache.invalidated)
}

func readCSV(t *testing.T, b []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestExportService_InventoryCSV(t *testing.T) {
	s := seed(t)
	archiver := &fakeArchiver{}
	svc := report.NewExportService(s.store.Products(), s.store.Categories(), s.store.Suppliers(), zap.NewNop())
	svc.SetArchiver(archiver)

	var buf bytes.Buffer
	require.NoError(t, svc.InventoryCSV(context.Background(), &buf))

	rows := readCSV(t, buf.Bytes())
	assert.Equal(t, [][]string{
		{"Product", "Category", "Quantity in Stock", "Price", "Low Stock"},
		{"Beans", "Coffee", "12", "10.00", "No"},
		{"Filters", "Coffee", "0", "2.50", "Yes"},
	}, rows)

	require.Equal(t, []string{report.ExportInventory}, archiver.kinds)
	assert.Equal(t, buf.Bytes(), archiver.data[0])
}

func TestExportService_SuppliersCSV(t *testing.T) {
	s := seed(t)
	svc := report.NewExportService(s.store.Products(), s.store.Categories(), s.store.Suppliers(), zap.NewNop())
	svc.SetArchiver(&fakeArchiver{err: errors.New("bucket unreachable")})

	var buf bytes.Buffer
	require.NoError(t, svc.SuppliersCSV(context.Background(), &buf))

	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Supplier", "Email", "Phone", "Website", "Products"}, rows[0])
	assert.Equal(t, []string{"Roasters", "hello@roasters.test", "555", "https://roasters.test", "Beans; Filters"}, rows[1])
}
