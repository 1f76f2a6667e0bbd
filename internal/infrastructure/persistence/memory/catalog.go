package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocker/backend/internal/domain/catalog"
	"github.com/stocker/backend/internal/domain/shared"
)

// CategoryRepository is the in-memory catalog.CategoryRepository
type CategoryRepository struct {
	s    *Store
	inTx bool
}

// FindByID finds a category by its ID
func (r *CategoryRepository) FindByID(_ context.Context, id uuid.UUID) (*catalog.Category, error) {
	defer r.s.rlock(r.inTx)()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &c, nil
}

// FindAll returns every category ordered by name
func (r *CategoryRepository) FindAll(_ context.Context) ([]catalog.Category, error) {
	defer r.s.rlock(r.inTx)()
	out := make([]catalog.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return lessName(out[i].Name, out[j].Name) })
	return out, nil
}

// Save creates or updates a category
func (r *CategoryRepository) Save(_ context.Context, c *catalog.Category) error {
	defer r.s.wlock(r.inTx)()
	stored := *c
	stored.ClearDomainEvents()
	r.s.categories[c.ID] = stored
	return nil
}

// Delete removes the category
func (r *CategoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	defer r.s.wlock(r.inTx)()
	if _, ok := r.s.categories[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.s.categories, id)
	return nil
}

// Count returns the number of categories
func (r *CategoryRepository) Count(_ context.Context) (int64, error) {
	defer r.s.rlock(r.inTx)()
	return int64(len(r.s.categories)), nil
}

// ProductRepository is the in-memory catalog.ProductRepository
type ProductRepository struct {
	s    *Store
	inTx bool
}

// FindByID loads a product
func (r *ProductRepository) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	defer r.s.rlock(r.inTx)()
	return r.get(id)
}

// FindByIDForUpdate loads a product. The transaction already holds the
// store lock, which stands in for the row lock.
func (r *ProductRepository) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	defer r.s.rlock(r.inTx)()
	return r.get(id)
}

func (r *ProductRepository) get(id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := copyProduct(p)
	return &cp, nil
}

// FindAll returns every product ordered by name
func (r *ProductRepository) FindAll(_ context.Context) ([]catalog.Product, error) {
	defer r.s.rlock(r.inTx)()
	return r.filter(func(catalog.Product) bool { return true }), nil
}

// FindByCategory returns the products of one category
func (r *ProductRepository) FindByCategory(_ context.Context, categoryID uuid.UUID) ([]catalog.Product, error) {
	defer r.s.rlock(r.inTx)()
	return r.filter(func(p catalog.Product) bool { return p.CategoryID == categoryID }), nil
}

// FindBySupplier returns the products linked to one supplier
func (r *ProductRepository) FindBySupplier(_ context.Context, supplierID uuid.UUID) ([]catalog.Product, error) {
	defer r.s.rlock(r.inTx)()
	return r.filter(func(p catalog.Product) bool {
		for _, id := range p.SupplierIDs {
			if id == supplierID {
				return true
			}
		}
		return false
	}), nil
}

// FindLowStock returns products at or below threshold
func (r *ProductRepository) FindLowStock(_ context.Context, threshold int) ([]catalog.Product, error) {
	defer r.s.rlock(r.inTx)()
	return r.filter(func(p catalog.Product) bool { return p.QuantityInStock <= threshold }), nil
}

func (r *ProductRepository) filter(keep func(catalog.Product) bool) []catalog.Product {
	out := make([]catalog.Product, 0)
	for _, p := range r.s.products {
		if keep(p) {
			out = append(out, copyProduct(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessName(out[i].Name, out[j].Name) })
	return out
}

// Save creates or updates a product. Quantity is written on create only.
func (r *ProductRepository) Save(_ context.Context, p *catalog.Product) error {
	defer r.s.wlock(r.inTx)()
	stored := copyProduct(*p)
	if existing, ok := r.s.products[p.ID]; ok {
		stored.QuantityInStock = existing.QuantityInStock
	}
	r.s.products[p.ID] = stored
	return nil
}

// SaveStock writes the quantity when the stored version is the one read
func (r *ProductRepository) SaveStock(_ context.Context, p *catalog.Product) error {
	defer r.s.wlock(r.inTx)()
	if err := r.s.takeFault(FaultProductSaveStock); err != nil {
		return err
	}
	existing, ok := r.s.products[p.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if existing.Version != p.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	existing.QuantityInStock = p.QuantityInStock
	existing.Version = p.Version
	existing.UpdatedAt = time.Now()
	r.s.products[p.ID] = existing
	return nil
}

// Delete removes a product with its ledger entries
func (r *ProductRepository) Delete(_ context.Context, id uuid.UUID) error {
	defer r.s.wlock(r.inTx)()
	if _, ok := r.s.products[id]; !ok {
		return shared.ErrNotFound
	}
	r.deleteProducts(map[uuid.UUID]struct{}{id: {}})
	return nil
}

// DeleteByCategory removes every product of a category
func (r *ProductRepository) DeleteByCategory(_ context.Context, categoryID uuid.UUID) (int, error) {
	defer r.s.wlock(r.inTx)()
	ids := make(map[uuid.UUID]struct{})
	for id, p := range r.s.products {
		if p.CategoryID == categoryID {
			ids[id] = struct{}{}
		}
	}
	r.deleteProducts(ids)
	return len(ids), nil
}

func (r *ProductRepository) deleteProducts(ids map[uuid.UUID]struct{}) {
	if len(ids) == 0 {
		return
	}
	kept := r.s.ledger[:0:0]
	for _, e := range r.s.ledger {
		if _, gone := ids[e.ProductID]; !gone {
			kept = append(kept, e)
		}
	}
	r.s.ledger = kept
	for id := range ids {
		delete(r.s.products, id)
	}
}

// Summary aggregates stock figures over all products
func (r *ProductRepository) Summary(_ context.Context, threshold int) (*catalog.StockSummary, error) {
	defer r.s.rlock(r.inTx)()
	sum := &catalog.StockSummary{TotalValue: decimal.Zero}
	for _, p := range r.s.products {
		sum.TotalProducts++
		sum.TotalUnits += int64(p.QuantityInStock)
		if p.QuantityInStock <= threshold {
			sum.LowStockCount++
		}
		if p.QuantityInStock == 0 {
			sum.OutOfStockCount++
		}
		sum.TotalValue = sum.TotalValue.Add(p.StockValue())
	}
	return sum, nil
}

func copyProduct(p catalog.Product) catalog.Product {
	cp := p
	cp.SupplierIDs = append(make([]uuid.UUID, 0, len(p.SupplierIDs)), p.SupplierIDs...)
	if p.ExpiryDate != nil {
		d := *p.ExpiryDate
		cp.ExpiryDate = &d
	}
	cp.ClearDomainEvents()
	return cp
}

func lessName(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la == lb {
		return a < b
	}
	return la < lb
}

var (
	_ catalog.CategoryRepository = (*CategoryRepository)(nil)
	_ catalog.ProductRepository  = (*ProductRepository)(nil)
)
