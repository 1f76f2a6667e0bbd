package inventory

import (
	"github.com/google/uuid"
	"github.com/stocker/backend/internal/domain/shared"
)

// AggregateTypeProductStock identifies stock events raised against a product
const AggregateTypeProductStock = "ProductStock"

// Event type constants
const (
	EventTypeStockAdjusted       = "StockAdjusted"
	EventTypeStockBelowThreshold = "StockBelowThreshold"
)

// StockAdjustedEvent is raised after a stock change has been committed
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	ProductID    uuid.UUID  `json:"product_id"`
	EntryID      uuid.UUID  `json:"entry_id"`
	ActingUserID *uuid.UUID `json:"acting_user_id,omitempty"`
	Delta        int        `json:"delta"`
	OldQuantity  int        `json:"old_quantity"`
	NewQuantity  int        `json:"new_quantity"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent from a ledger entry
func NewStockAdjustedEvent(entry *StockLedgerEntry) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, AggregateTypeProductStock, entry.ProductID),
		ProductID:       entry.ProductID,
		EntryID:         entry.ID,
		ActingUserID:    entry.ActingUserID,
		Delta:           entry.Delta,
		OldQuantity:     entry.QuantityBefore(),
		NewQuantity:     entry.QuantityAfter,
	}
}

// StockBelowThresholdEvent is raised when stock crosses down to the threshold
type StockBelowThresholdEvent struct {
	shared.BaseDomainEvent
	ProductID       uuid.UUID `json:"product_id"`
	ProductName     string    `json:"product_name"`
	CurrentQuantity int       `json:"current_quantity"`
	Threshold       int       `json:"threshold"`
}

// NewStockBelowThresholdEvent creates a new StockBelowThresholdEvent
func NewStockBelowThresholdEvent(productID uuid.UUID, name string, quantity, threshold int) *StockBelowThresholdEvent {
	return &StockBelowThresholdEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowThreshold, AggregateTypeProductStock, productID),
		ProductID:       productID,
		ProductName:     name,
		CurrentQuantity: quantity,
		Threshold:       threshold,
	}
}
