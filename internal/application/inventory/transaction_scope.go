package inventory

import (
	"context"

	"github.com/stocker/backend/internal/domain/catalog"
	"github.com/stocker/backend/internal/domain/inventory"
	"github.com/stocker/backend/internal/domain/partner"
)

// TransactionScope provides transactional access to the stock repositories.
// All repository calls made through the TransactionalRepositories passed to
// fn are committed together, or rolled back together when fn returns an error.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories bound to one transaction.
//
//   - ProductRepo owns the current quantity of each product and the row lock
//     that serializes adjustments of the same product.
//   - LedgerRepo is append-only.
type TransactionalRepositories interface {
	ProductRepo() catalog.ProductRepository
	CategoryRepo() catalog.CategoryRepository
	SupplierRepo() partner.SupplierRepository
	LedgerRepo() inventory.StockLedgerRepository
}
