// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel and AggregateModel
//   - catalog.go: categories, products and the product_suppliers join table
//   - partner.go: suppliers
//   - inventory.go: stock_ledger_entries
//   - identity.go: users
//
// The tables themselves are created by the SQL files under migrations/.
// AllModels is used by AutoMigrate for sqlite development databases and tests.
package models

// AllModels lists every model in dependency order
func AllModels() []any {
	return []any{
		&CategoryModel{},
		&SupplierModel{},
		&UserModel{},
		&ProductModel{},
		&ProductSupplierModel{},
		&StockLedgerEntryModel{},
	}
}
