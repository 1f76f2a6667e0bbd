package partner

import (
	"context"

	"github.com/google/uuid"
)

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	// FindByID finds a supplier by its ID, or fails with shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)

	// FindByIDs returns the suppliers that exist among ids
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Supplier, error)

	// FindAll returns every supplier ordered by name
	FindAll(ctx context.Context) ([]Supplier, error)

	// Save creates or updates a supplier
	Save(ctx context.Context, supplier *Supplier) error

	// Delete removes a supplier and its product links
	Delete(ctx context.Context, id uuid.UUID) error

	// Count returns the number of suppliers
	Count(ctx context.Context) (int64, error)
}
