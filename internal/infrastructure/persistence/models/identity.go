package models

import "github.com/stocker/backend/internal/domain/identity"

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	AggregateModel
	Username string `gorm:"type:varchar(150);not null;uniqueIndex"`
	Email    string `gorm:"type:varchar(254)"`
	Role     string `gorm:"type:varchar(20);not null"`
	Active   bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Username:          m.Username,
		Email:             m.Email,
		Role:              identity.Role(m.Role),
		Active:            m.Active,
	}
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Username: u.Username,
		Email:    u.Email,
		Role:     string(u.Role),
		Active:   u.Active,
	}
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	return m
}
