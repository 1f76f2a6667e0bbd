package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocker/backend/internal/domain/catalog"
	"github.com/stocker/backend/internal/domain/shared"
)

// DateLayout is the wire format of expiry dates
const DateLayout = "2006-01-02"

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// UpdateCategoryRequest represents a request to rename a category
type UpdateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToCategoryResponse converts a domain category to a response
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// CreateProductRequest represents a request to create a product.
// InitialQuantity is recorded as the first ledger entry.
type CreateProductRequest struct {
	Name            string           `json:"name" binding:"required,min=1,max=100"`
	Description     string           `json:"description" binding:"max=2000"`
	Price           *decimal.Decimal `json:"price"`
	ImageRef        string           `json:"image_ref" binding:"max=500"`
	CategoryID      uuid.UUID        `json:"category_id" binding:"required"`
	SupplierIDs     []uuid.UUID      `json:"supplier_ids"`
	InitialQuantity int              `json:"initial_quantity" binding:"gte=0"`
	ExpiryDate      string           `json:"expiry_date" binding:"omitempty,datetime=2006-01-02"`
}

// UpdateProductRequest represents a request to update a product's details.
// Stock is changed only through stock adjustments.
type UpdateProductRequest struct {
	Name        string           `json:"name" binding:"required,min=1,max=100"`
	Description string           `json:"description" binding:"max=2000"`
	Price       *decimal.Decimal `json:"price"`
	ImageRef    string           `json:"image_ref" binding:"max=500"`
	CategoryID  uuid.UUID        `json:"category_id" binding:"required"`
	SupplierIDs []uuid.UUID      `json:"supplier_ids"`
	ExpiryDate  string           `json:"expiry_date" binding:"omitempty,datetime=2006-01-02"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	ImageRef        string          `json:"image_ref,omitempty"`
	CategoryID      uuid.UUID       `json:"category_id"`
	SupplierIDs     []uuid.UUID     `json:"supplier_ids"`
	QuantityInStock int             `json:"quantity_in_stock"`
	IsLowStock      bool            `json:"is_low_stock"`
	ExpiryDate      *string         `json:"expiry_date,omitempty"`
	IsExpired       bool            `json:"is_expired"`
	Version         int             `json:"version"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain product to a response
func ToProductResponse(p *catalog.Product) ProductResponse {
	resp := ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		ImageRef:        p.ImageRef,
		CategoryID:      p.CategoryID,
		SupplierIDs:     p.SupplierIDs,
		QuantityInStock: p.QuantityInStock,
		IsLowStock:      p.IsLowStock(),
		IsExpired:       p.IsExpired(time.Now()),
		Version:         p.GetVersion(),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if resp.SupplierIDs == nil {
		resp.SupplierIDs = []uuid.UUID{}
	}
	if p.ExpiryDate != nil {
		s := p.ExpiryDate.Format(DateLayout)
		resp.ExpiryDate = &s
	}
	return resp
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}

func parseExpiryDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil, shared.NewInvalidInputError("expiry date must use YYYY-MM-DD")
	}
	return &d, nil
}

func priceOrZero(p *decimal.Decimal) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	return *p
}
