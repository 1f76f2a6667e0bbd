package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocker/backend/internal/domain/catalog"
)

// CategoryModel is the persistence model for the Category domain entity.
type CategoryModel struct {
	AggregateModel
	Name string `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category entity.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
	}
}

// CategoryModelFromDomain creates a new persistence model from a domain Category entity.
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{Name: c.Name}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// ProductModel is the persistence model for the Product domain entity.
// Supplier links live in product_suppliers.
type ProductModel struct {
	AggregateModel
	Name            string          `gorm:"type:varchar(100);not null;index"`
	Description     string          `gorm:"type:text"`
	Price           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ImageRef        string          `gorm:"type:varchar(500)"`
	CategoryID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	QuantityInStock int             `gorm:"not null;default:0;index"`
	ExpiryDate      *time.Time      `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
// SupplierIDs are filled in by the repository.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Description:       m.Description,
		Price:             m.Price,
		ImageRef:          m.ImageRef,
		CategoryID:        m.CategoryID,
		SupplierIDs:       []uuid.UUID{},
		QuantityInStock:   m.QuantityInStock,
		ExpiryDate:        m.ExpiryDate,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.Description = p.Description
	m.Price = p.Price
	m.ImageRef = p.ImageRef
	m.CategoryID = p.CategoryID
	m.QuantityInStock = p.QuantityInStock
	m.ExpiryDate = p.ExpiryDate
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// ProductSupplierModel links a product to one of its suppliers
type ProductSupplierModel struct {
	ProductID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	SupplierID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

// TableName returns the table name for GORM
func (ProductSupplierModel) TableName() string {
	return "product_suppliers"
}
