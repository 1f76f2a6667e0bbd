package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	// FindByID finds a category by its ID, or fails with shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)

	// FindAll returns every category ordered by name
	FindAll(ctx context.Context) ([]Category, error)

	// Save creates or updates a category
	Save(ctx context.Context, category *Category) error

	// Delete removes the category row only. Callers remove products first.
	Delete(ctx context.Context, id uuid.UUID) error

	// Count returns the number of categories
	Count(ctx context.Context) (int64, error)
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID loads a product with its supplier links
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDForUpdate loads a product and locks its row until the
	// surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindAll returns every product ordered by name
	FindAll(ctx context.Context) ([]Product, error)

	// FindByCategory returns the products of one category
	FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]Product, error)

	// FindBySupplier returns the products linked to one supplier
	FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]Product, error)

	// FindLowStock returns products with quantity at or below threshold
	FindLowStock(ctx context.Context, threshold int) ([]Product, error)

	// Save creates or updates a product's details and supplier links.
	// The stored quantity is written on create only.
	Save(ctx context.Context, product *Product) error

	// SaveStock writes the quantity of a product whose version was read
	// under lock. Fails with shared.ErrConcurrencyConflict on a stale version.
	SaveStock(ctx context.Context, product *Product) error

	// Delete removes a product together with its ledger entries and
	// supplier links
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByCategory removes every product of a category, with their
	// ledger entries and supplier links, and returns how many were removed
	DeleteByCategory(ctx context.Context, categoryID uuid.UUID) (int, error)

	// Summary aggregates stock figures over all products
	Summary(ctx context.Context, threshold int) (*StockSummary, error)
}

// StockSummary aggregates stock figures over the catalog
type StockSummary struct {
	TotalProducts   int64
	LowStockCount   int64
	OutOfStockCount int64
	TotalUnits      int64
	TotalValue      decimal.Decimal
}
