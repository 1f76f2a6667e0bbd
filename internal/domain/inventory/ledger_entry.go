package inventory

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stocker/backend/internal/domain/shared"
)

const maxNoteLength = 500

// EntryKind tells why a ledger entry was written
type EntryKind string

const (
	// EntryKindAdjustment is a manual stock adjustment
	EntryKindAdjustment EntryKind = "ADJUSTMENT"
	// EntryKindInitialStock is the opening quantity recorded when a product is created
	EntryKindInitialStock EntryKind = "INITIAL_STOCK"
)

// IsValid returns true if the kind is known
func (k EntryKind) IsValid() bool {
	return k == EntryKindAdjustment || k == EntryKindInitialStock
}

// StockLedgerEntry is an immutable record of one stock quantity change.
// Entries are only ever appended; corrections are new entries.
type StockLedgerEntry struct {
	ID            uuid.UUID
	ProductID     uuid.UUID
	ActingUserID  *uuid.UUID // nil when unknown or when the user was removed
	Kind          EntryKind
	Delta         int
	QuantityAfter int
	Note          string
	Sequence      int64 // per product, assigned at append time
	CreatedAt     time.Time
}

// NewStockLedgerEntry creates a ledger entry for a stock change
func NewStockLedgerEntry(
	productID uuid.UUID,
	actingUserID *uuid.UUID,
	kind EntryKind,
	delta int,
	quantityAfter int,
	note string,
) (*StockLedgerEntry, error) {
	if productID == uuid.Nil {
		return nil, shared.NewInvalidInputError("product ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewInvalidInputError("invalid ledger entry kind")
	}
	if delta == 0 {
		return nil, shared.NewInvalidInputError("quantity change must not be zero")
	}
	if quantityAfter < 0 {
		return nil, shared.NewInvalidStateError("resulting stock can't be negative")
	}
	note = strings.TrimSpace(note)
	if utf8.RuneCountInString(note) > maxNoteLength {
		return nil, shared.NewInvalidInputError("note cannot exceed 500 characters")
	}
	if actingUserID != nil && *actingUserID == uuid.Nil {
		actingUserID = nil
	}

	return &StockLedgerEntry{
		ID:            uuid.New(),
		ProductID:     productID,
		ActingUserID:  actingUserID,
		Kind:          kind,
		Delta:         delta,
		QuantityAfter: quantityAfter,
		Note:          note,
		CreatedAt:     time.Now(),
	}, nil
}

// QuantityBefore returns the stock level before this entry was applied
func (e *StockLedgerEntry) QuantityBefore() int {
	return e.QuantityAfter - e.Delta
}

// IsIncrease reports whether the entry added stock
func (e *StockLedgerEntry) IsIncrease() bool {
	return e.Delta > 0
}
