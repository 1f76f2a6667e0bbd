package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/stocker/backend/internal/domain/inventory"
)

// StockLedgerEntryModel is the persistence model for ledger entries.
// Rows are inserted once and never updated.
type StockLedgerEntryModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key"`
	ProductID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_ledger_product_seq,priority:1"`
	Sequence      int64      `gorm:"not null;uniqueIndex:idx_ledger_product_seq,priority:2"`
	ActingUserID  *uuid.UUID `gorm:"type:uuid;index"`
	Kind          string     `gorm:"type:varchar(20);not null"`
	Delta         int        `gorm:"not null"`
	QuantityAfter int        `gorm:"not null"`
	Note          string     `gorm:"type:varchar(500)"`
	CreatedAt     time.Time  `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockLedgerEntryModel) TableName() string {
	return "stock_ledger_entries"
}

// ToDomain converts the persistence model to a domain entry
func (m *StockLedgerEntryModel) ToDomain() *inventory.StockLedgerEntry {
	return &inventory.StockLedgerEntry{
		ID:            m.ID,
		ProductID:     m.ProductID,
		ActingUserID:  m.ActingUserID,
		Kind:          inventory.EntryKind(m.Kind),
		Delta:         m.Delta,
		QuantityAfter: m.QuantityAfter,
		Note:          m.Note,
		Sequence:      m.Sequence,
		CreatedAt:     m.CreatedAt,
	}
}

// StockLedgerEntryModelFromDomain creates a persistence model from a domain entry
func StockLedgerEntryModelFromDomain(e *inventory.StockLedgerEntry) *StockLedgerEntryModel {
	return &StockLedgerEntryModel{
		ID:            e.ID,
		ProductID:     e.ProductID,
		Sequence:      e.Sequence,
		ActingUserID:  e.ActingUserID,
		Kind:          string(e.Kind),
		Delta:         e.Delta,
		QuantityAfter: e.QuantityAfter,
		Note:          e.Note,
		CreatedAt:     e.CreatedAt,
	}
}
