package models

import "github.com/stocker/backend/internal/domain/partner"

// SupplierModel is the persistence model for the Supplier domain entity.
type SupplierModel struct {
	AggregateModel
	Name    string `gorm:"type:varchar(100);not null;index"`
	Email   string `gorm:"type:varchar(254);not null"`
	Phone   string `gorm:"type:varchar(20);not null"`
	LogoRef string `gorm:"type:varchar(500)"`
	Website string `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier entity.
func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Email:             m.Email,
		Phone:             m.Phone,
		LogoRef:           m.LogoRef,
		Website:           m.Website,
	}
}

// SupplierModelFromDomain creates a new persistence model from a domain Supplier entity.
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{
		Name:    s.Name,
		Email:   s.Email,
		Phone:   s.Phone,
		LogoRef: s.LogoRef,
		Website: s.Website,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m
}
