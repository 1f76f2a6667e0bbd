package inventory

import (
	"context"

	"github.com/google/uuid"
)

// StockLedgerRepository is the append-only store of stock changes.
// It deliberately has no update or delete operations; rows disappear only
// when their product is deleted.
type StockLedgerRepository interface {
	// Append stores a new entry and returns its ID. Sequence must already
	// be assigned (see NextSequence).
	Append(ctx context.Context, entry *StockLedgerEntry) (uuid.UUID, error)

	// NextSequence returns the sequence number for the next entry of a
	// product. Call it while holding the product row lock.
	NextSequence(ctx context.Context, productID uuid.UUID) (int64, error)

	// ListByProduct returns a product's entries, most recent first
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]StockLedgerEntry, error)

	// ListRecent returns the latest entries across all products
	ListRecent(ctx context.Context, limit int) ([]StockLedgerEntry, error)
}
