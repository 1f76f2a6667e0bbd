package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/stocker/backend/internal/domain/inventory"
)

// LedgerRepository is the in-memory inventory.StockLedgerRepository
type LedgerRepository struct {
	s    *Store
	inTx bool
}

// Append stores a new entry
func (r *LedgerRepository) Append(_ context.Context, e *inventory.StockLedgerEntry) (uuid.UUID, error) {
	defer r.s.wlock(r.inTx)()
	if err := r.s.takeFault(FaultLedgerAppend); err != nil {
		return uuid.Nil, err
	}
	r.s.ledger = append(r.s.ledger, *e)
	return e.ID, nil
}

// NextSequence returns one more than the highest sequence of the product
func (r *LedgerRepository) NextSequence(_ context.Context, productID uuid.UUID) (int64, error) {
	defer r.s.rlock(r.inTx)()
	var last int64
	for _, e := range r.s.ledger {
		if e.ProductID == productID && e.Sequence > last {
			last = e.Sequence
		}
	}
	return last + 1, nil
}

// ListByProduct returns entries most recent first
func (r *LedgerRepository) ListByProduct(_ context.Context, productID uuid.UUID) ([]inventory.StockLedgerEntry, error) {
	defer r.s.rlock(r.inTx)()
	out := make([]inventory.StockLedgerEntry, 0)
	for i := len(r.s.ledger) - 1; i >= 0; i-- {
		if r.s.ledger[i].ProductID == productID {
			out = append(out, r.s.ledger[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sequence > out[j].Sequence })
	return out, nil
}

// ListRecent returns the latest entries across all products
func (r *LedgerRepository) ListRecent(_ context.Context, limit int) ([]inventory.StockLedgerEntry, error) {
	defer r.s.rlock(r.inTx)()
	out := make([]inventory.StockLedgerEntry, 0, limit)
	for i := len(r.s.ledger) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.s.ledger[i])
	}
	return out, nil
}

var _ inventory.StockLedgerRepository = (*LedgerRepository)(nil)
