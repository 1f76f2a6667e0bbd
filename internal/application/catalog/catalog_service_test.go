package catalog_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appcatalog "github.com/stocker/backend/internal/application/catalog"
	appinventory "github.com/stocker/backend/internal/application/inventory"
	"github.com/stocker/backend/internal/domain/catalog"
	"github.com/stocker/backend/internal/domain/inventory"
	"github.com/stocker/backend/internal/domain/partner"
	"github.com/stocker/backend/internal/domain/shared"
	"github.com/stocker/backend/internal/infrastructure/persistence/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type services struct {
	store      *memory.Store
	categories *appcatalog.CategoryService
	products   *appcatalog.ProductService
	adjust     *appinventory.StockAdjustmentService
	publisher  *recordingPublisher
}

func newServices() *services {
	store := memory.NewStore()
	logger := zap.NewNop()
	pub := &recordingPublisher{}

	cs := appcatalog.NewCategoryService(store.Categories(), store, logger)
	cs.SetEventPublisher(pub)
	ps := appcatalog.NewProductService(store.Products(), store, logger)
	ps.SetEventPublisher(pub)

	return &services{
		store:      store,
		categories: cs,
		products:   ps,
		adjust:     appinventory.NewStockAdjustmentService(store, nil, logger),
		publisher:  pub,
	}
}

func (s *services) category(t *testing.T, name string) uuid.UUID {
	t.Helper()
	c, err := s.categories.Create(context.Background(), appcatalog.CreateCategoryRequest{Name: name})
	require.NoError(t, err)
	return c.ID
}

func (s *services) supplier(t *testing.T) uuid.UUID {
	t.Helper()
	sp, err := partner.NewSupplier(partner.SupplierDetails{Name: "Acme", Email: "a@acme.io", Phone: "1"})
	require.NoError(t, err)
	require.NoError(t, s.store.Suppliers().Save(context.Background(), sp))
	return sp.ID
}

func price(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("records initial stock in the ledger", func(t *testing.T) {
		s := newServices()
		catID := s.category(t, "Coffee")
		supID := s.supplier(t)
		user := uuid.New()

		resp, err := s.products.Create(ctx, appcatalog.CreateProductRequest{
			Name:            "Beans",
			Price:           price("12.50"),
			CategoryID:      catID,
			SupplierIDs:     []uuid.UUID{supID, supID},
			InitialQuantity: 8,
			ExpiryDate:      "2030-01-31",
		}, &user)
		require.NoError(t, err)

		assert.Equal(t, 8, resp.QuantityInStock)
		assert.False(t, resp.IsLowStock)
		assert.Equal(t, []uuid.UUID{supID}, resp.SupplierIDs)
		require.NotNil(t, resp.ExpiryDate)
		assert.Equal(t, "2030-01-31", *resp.ExpiryDate)

		entries, err := s.store.Ledger().ListByProduct(ctx, resp.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, inventory.EntryKindInitialStock, entries[0].Kind)
		assert.Equal(t, 8, entries[0].Delta)
		assert.Equal(t, &user, entries[0].ActingUserID)

		assert.Equal(t, []string{catalog.EventTypeProductCreated, inventory.EventTypeStockAdjusted}, s.publisher.types())
	})

	t.Run("zero initial stock writes no ledger entry", func(t *testing.T) {
		s := newServices()
		resp, err := s.products.Create(ctx, appcatalog.CreateProductRequest{
			Name:       "Filters",
			CategoryID: s.category(t, "Coffee"),
		}, nil)
		require.NoError(t, err)
		assert.True(t, resp.Price.IsZero())
		assert.True(t, resp.IsLowStock)

		entries, err := s.store.Ledger().ListByProduct(ctx, resp.ID)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("rejects unknown category and supplier", func(t *testing.T) {
		s := newServices()
		_, err := s.products.Create(ctx, appcatalog.CreateProductRequest{Name: "X", CategoryID: uuid.New()}, nil)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))

		_, err = s.products.Create(ctx, appcatalog.CreateProductRequest{
			Name:        "X",
			CategoryID:  s.category(t, "A"),
			SupplierIDs: []uuid.UUID{uuid.New()},
		}, nil)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))

		all, err := s.products.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("rejects bad expiry date", func(t *testing.T) {
		s := newServices()
		_, err := s.products.Create(ctx, appcatalog.CreateProductRequest{
			Name:       "X",
			CategoryID: s.category(t, "A"),
			ExpiryDate: "31/01/2030",
		}, nil)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func TestProductService_UpdateKeepsStock(t *testing.T) {
	ctx := context.Background()
	s := newServices()
	catID := s.category(t, "Tea")
	other := s.category(t, "Herbal")

	created, err := s.products.Create(ctx, appcatalog.CreateProductRequest{
		Name: "Green", CategoryID: catID, InitialQuantity: 9,
	}, nil)
	require.NoError(t, err)

	updated, err := s.products.Update(ctx, created.ID, appcatalog.UpdateProductRequest{
		Name:       "Sencha",
		Price:      price("3.10"),
		CategoryID: other,
	})
	require.NoError(t, err)
	assert.Equal(t, "Sencha", updated.Name)
	assert.Equal(t, other, updated.CategoryID)
	assert.Equal(t, 9, updated.QuantityInStock)

	_, err = s.products.Update(ctx, uuid.New(), appcatalog.UpdateProductRequest{Name: "X", CategoryID: catID})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestProductService_ListLowStock(t *testing.T) {
	ctx := context.Background()
	s := newServices()
	catID := s.category(t, "Misc")

	for name, qty := range map[string]int{"a": 2, "b": 5, "c": 6, "d": 40} {
		_, err := s.products.Create(ctx, appcatalog.CreateProductRequest{Name: name, CategoryID: catID, InitialQuantity: qty}, nil)
		require.NoError(t, err)
	}

	low, err := s.products.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "a", low[0].Name)
	assert.Equal(t, "b", low[1].Name)
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()
	s := newServices()
	p, err := s.products.Create(ctx, appcatalog.CreateProductRequest{
		Name: "Gone", CategoryID: s.category(t, "A"), InitialQuantity: 3,
	}, nil)
	require.NoError(t, err)

	require.NoError(t, s.products.Delete(ctx, p.ID))

	_, err = s.products.GetByID(ctx, p.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
	entries, err := s.store.Ledger().ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Contains(t, s.publisher.types(), catalog.EventTypeProductDeleted)

	assert.True(t, errors.Is(s.products.Delete(ctx, p.ID), shared.ErrNotFound))
}

func TestCategoryService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := newServices()
	doomed := s.category(t, "Seasonal")
	kept := s.category(t, "Staples")

	var doomedProducts []uuid.UUID
	for _, name := range []string{"Pumpkin", "Eggnog"} {
		p, err := s.products.Create(ctx, appcatalog.CreateProductRequest{Name: name, CategoryID: doomed, InitialQuantity: 10}, nil)
		require.NoError(t, err)
		_, err = s.adjust.AdjustStockBy(ctx, p.ID, -4, nil, "sold")
		require.NoError(t, err)
		doomedProducts = append(doomedProducts, p.ID)
	}
	survivor, err := s.products.Create(ctx, appcatalog.CreateProductRequest{Name: "Rice", CategoryID: kept, InitialQuantity: 10}, nil)
	require.NoError(t, err)

	require.NoError(t, s.categories.Delete(ctx, doomed))

	_, err = s.categories.GetByID(ctx, doomed)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
	for _, id := range doomedProducts {
		_, err := s.products.GetByID(ctx, id)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
		entries, err := s.store.Ledger().ListByProduct(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, entries)
	}

	_, err = s.products.GetByID(ctx, survivor.ID)
	require.NoError(t, err)
	entries, err := s.store.Ledger().ListByProduct(ctx, survivor.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Contains(t, s.publisher.types(), catalog.EventTypeCategoryDeleted)
}

func TestCategoryService_CRUD(t *testing.T) {
	ctx := context.Background()
	s := newServices()

	b, err := s.categories.Create(ctx, appcatalog.CreateCategoryRequest{Name: "beta"})
	require.NoError(t, err)
	_, err = s.categories.Create(ctx, appcatalog.CreateCategoryRequest{Name: "Alpha"})
	require.NoError(t, err)

	list, err := s.categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alpha", list[0].Name)

	renamed, err := s.categories.Update(ctx, b.ID, appcatalog.UpdateCategoryRequest{Name: "Beta"})
	require.NoError(t, err)
	assert.Equal(t, "Beta", renamed.Name)

	_, err = s.categories.Create(ctx, appcatalog.CreateCategoryRequest{Name: " "})
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	assert.True(t, errors.Is(s.categories.Delete(ctx, uuid.New()), shared.ErrNotFound))
}
