package catalog

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocker/backend/internal/domain/shared"
)

// LowStockThreshold is the quantity at or below which a product needs
// operator attention.
const LowStockThreshold = 5

// MaxStockQuantity is the largest quantity a product can hold. Quantities and
// ledger deltas are stored in 32-bit integer columns.
const MaxStockQuantity = math.MaxInt32

const (
	maxProductNameLength = 100
	maxImageRefLength    = 500
	priceScale           = 2
)

// Product is a stocked item. QuantityInStock is only changed through
// ApplyStockDelta so that every change has a matching ledger entry.
type Product struct {
	shared.BaseAggregateRoot
	Name            string
	Description     string
	Price           decimal.Decimal
	ImageRef        string
	CategoryID      uuid.UUID
	SupplierIDs     []uuid.UUID
	QuantityInStock int
	ExpiryDate      *time.Time
}

// ProductDetails holds the editable descriptive attributes of a product
type ProductDetails struct {
	Name        string
	Description string
	Price       decimal.Decimal
	ImageRef    string
	CategoryID  uuid.UUID
	ExpiryDate  *time.Time
}

// NewProduct creates a product with zero stock
func NewProduct(details ProductDetails) (*Product, error) {
	details.Name = strings.TrimSpace(details.Name)
	if err := details.validate(); err != nil {
		return nil, err
	}

	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierIDs:       make([]uuid.UUID, 0),
	}
	p.apply(details)
	p.AddDomainEvent(NewProductCreatedEvent(p))
	return p, nil
}

// Update replaces the descriptive attributes. Stock is left untouched.
func (p *Product) Update(details ProductDetails) error {
	details.Name = strings.TrimSpace(details.Name)
	if err := details.validate(); err != nil {
		return err
	}

	p.apply(details)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
	return nil
}

// SetSuppliers replaces the supplier links, dropping duplicates
func (p *Product) SetSuppliers(ids []uuid.UUID) {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	p.SupplierIDs = out
}

// ApplyStockDelta adds delta to the quantity in stock and returns the
// quantities before and after. The product is unchanged on error.
func (p *Product) ApplyStockDelta(delta int) (oldQuantity, newQuantity int, err error) {
	oldQuantity = p.QuantityInStock
	// compare before adding so that huge deltas cannot wrap around
	if delta < -oldQuantity {
		return oldQuantity, oldQuantity, shared.NewInvalidStateError("resulting stock can't be negative")
	}
	if delta > MaxStockQuantity-oldQuantity {
		return oldQuantity, oldQuantity, shared.NewInvalidStateError("resulting stock exceeds the maximum quantity")
	}
	newQuantity = oldQuantity + delta

	p.QuantityInStock = newQuantity
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return oldQuantity, newQuantity, nil
}

// MarkDeleted records the deletion event for publication after commit
func (p *Product) MarkDeleted() {
	p.AddDomainEvent(NewProductDeletedEvent(p))
}

// IsLowStock reports whether the product is at or below the threshold
func (p *Product) IsLowStock() bool {
	return p.QuantityInStock <= LowStockThreshold
}

// IsOutOfStock reports whether nothing is left
func (p *Product) IsOutOfStock() bool {
	return p.QuantityInStock == 0
}

// IsExpired reports whether the expiry date lies before the day of now
func (p *Product) IsExpired(now time.Time) bool {
	if p.ExpiryDate == nil {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return p.ExpiryDate.Before(today)
}

// StockValue returns price multiplied by the quantity in stock
func (p *Product) StockValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.QuantityInStock)))
}

func (p *Product) apply(d ProductDetails) {
	p.Name = d.Name
	p.Description = d.Description
	p.Price = d.Price.Round(priceScale)
	p.ImageRef = strings.TrimSpace(d.ImageRef)
	p.CategoryID = d.CategoryID
	p.ExpiryDate = d.ExpiryDate
}

func (d ProductDetails) validate() error {
	if d.Name == "" {
		return shared.NewInvalidInputError("product name cannot be empty")
	}
	if utf8.RuneCountInString(d.Name) > maxProductNameLength {
		return shared.NewInvalidInputError("product name cannot exceed 100 characters")
	}
	if d.Price.IsNegative() {
		return shared.NewInvalidInputError("price cannot be negative")
	}
	if d.CategoryID == uuid.Nil {
		return shared.NewInvalidInputError("category is required")
	}
	if utf8.RuneCountInString(d.ImageRef) > maxImageRefLength {
		return shared.NewInvalidInputError("image reference cannot exceed 500 characters")
	}
	return nil
}
