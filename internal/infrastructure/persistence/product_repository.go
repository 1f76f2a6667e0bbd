package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocker/backend/internal/domain/catalog"
	"github.com/stocker/backend/internal/domain/shared"
	"github.com/stocker/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements ProductRepository using GORM.
// Supplier links are stored in product_suppliers and loaded with each product.
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID loads a product with its supplier links
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.findOne(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate loads a product with SELECT ... FOR UPDATE. The lock is
// held until the surrounding transaction commits or rolls back.
func (r *GormProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormProductRepository) findOne(db *gorm.DB, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	products, err := r.withSuppliers(r.db.WithContext(db.Statement.Context), []models.ProductModel{model})
	if err != nil {
		return nil, err
	}
	return &products[0], nil
}

// FindAll returns every product ordered by name
func (r *GormProductRepository) FindAll(ctx context.Context) ([]catalog.Product, error) {
	return r.find(r.db.WithContext(ctx))
}

// FindByCategory returns the products of one category
func (r *GormProductRepository) FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]catalog.Product, error) {
	return r.find(r.db.WithContext(ctx).Where("category_id = ?", categoryID))
}

// FindBySupplier returns the products linked to one supplier
func (r *GormProductRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]catalog.Product, error) {
	linked := r.db.Model(&models.ProductSupplierModel{}).
		Select("product_id").
		Where("supplier_id = ?", supplierID)
	return r.find(r.db.WithContext(ctx).Where("id IN (?)", linked))
}

// FindLowStock returns products with quantity at or below threshold
func (r *GormProductRepository) FindLowStock(ctx context.Context, threshold int) ([]catalog.Product, error) {
	return r.find(r.db.WithContext(ctx).Where("quantity_in_stock <= ?", threshold))
}

func (r *GormProductRepository) find(query *gorm.DB) ([]catalog.Product, error) {
	var rows []models.ProductModel
	if err := query.Order(nameOrder).Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.withSuppliers(r.db.WithContext(query.Statement.Context), rows)
}

// withSuppliers converts rows to domain products and attaches their
// supplier IDs with a single query
func (r *GormProductRepository) withSuppliers(db *gorm.DB, rows []models.ProductModel) ([]catalog.Product, error) {
	products := make([]catalog.Product, len(rows))
	if len(rows) == 0 {
		return products, nil
	}

	ids := make([]uuid.UUID, len(rows))
	index := make(map[uuid.UUID]int, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
		ids[i] = rows[i].ID
		index[rows[i].ID] = i
	}

	var links []models.ProductSupplierModel
	if err := db.Where("product_id IN ?", ids).
		Order("product_id, supplier_id").
		Find(&links).Error; err != nil {
		return nil, err
	}
	for _, l := range links {
		i := index[l.ProductID]
		products[i].SupplierIDs = append(products[i].SupplierIDs, l.SupplierID)
	}
	return products, nil
}

// Save creates a product, or updates the details and supplier links of an
// existing one. The stored quantity is only written on create.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	db := r.db.WithContext(ctx)
	model := models.ProductModelFromDomain(product)

	var existing int64
	if err := db.Model(&models.ProductModel{}).Where("id = ?", product.ID).Count(&existing).Error; err != nil {
		return err
	}

	if existing == 0 {
		if err := db.Create(model).Error; err != nil {
			return err
		}
	} else {
		err := db.Model(&models.ProductModel{}).
			Where("id = ?", product.ID).
			Updates(map[string]any{
				"name":        model.Name,
				"description": model.Description,
				"price":       model.Price,
				"image_ref":   model.ImageRef,
				"category_id": model.CategoryID,
				"expiry_date": model.ExpiryDate,
				"version":     model.Version,
				"updated_at":  model.UpdatedAt,
			}).Error
		if err != nil {
			return err
		}
	}

	return r.replaceSuppliers(db, product.ID, product.SupplierIDs)
}

func (r *GormProductRepository) replaceSuppliers(db *gorm.DB, productID uuid.UUID, supplierIDs []uuid.UUID) error {
	if err := db.Where("product_id = ?", productID).Delete(&models.ProductSupplierModel{}).Error; err != nil {
		return err
	}
	if len(supplierIDs) == 0 {
		return nil
	}
	links := make([]models.ProductSupplierModel, len(supplierIDs))
	for i, sid := range supplierIDs {
		links[i] = models.ProductSupplierModel{ProductID: productID, SupplierID: sid}
	}
	return db.Create(&links).Error
}

// SaveStock writes the quantity of a product read under lock. The update
// only matches when the stored version is the one before ApplyStockDelta.
func (r *GormProductRepository) SaveStock(ctx context.Context, product *catalog.Product) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ? AND version = ?", product.ID, product.GetVersion()-1).
		Updates(map[string]any{
			"quantity_in_stock": product.QuantityInStock,
			"version":           product.GetVersion(),
			"updated_at":        product.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete removes a product together with its ledger entries and supplier links
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.deleteProducts(r.db.WithContext(ctx), []uuid.UUID{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByCategory removes every product of a category
func (r *GormProductRepository) DeleteByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	db := r.db.WithContext(ctx)
	var ids []uuid.UUID
	if err := db.Model(&models.ProductModel{}).Where("category_id = ?", categoryID).Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := r.deleteProducts(db, ids)
	return int(n), err
}

// deleteProducts removes dependents before the product rows so it works
// whether or not the schema declares ON DELETE CASCADE
func (r *GormProductRepository) deleteProducts(db *gorm.DB, ids []uuid.UUID) (int64, error) {
	if err := db.Where("product_id IN ?", ids).Delete(&models.StockLedgerEntryModel{}).Error; err != nil {
		return 0, err
	}
	if err := db.Where("product_id IN ?", ids).Delete(&models.ProductSupplierModel{}).Error; err != nil {
		return 0, err
	}
	result := db.Where("id IN ?", ids).Delete(&models.ProductModel{})
	return result.RowsAffected, result.Error
}

type stockSummaryRow struct {
	TotalProducts   int64
	LowStockCount   int64
	OutOfStockCount int64
	TotalUnits      int64
	TotalValue      decimal.Decimal
}

// Summary aggregates stock figures over all products in one query
func (r *GormProductRepository) Summary(ctx context.Context, threshold int) (*catalog.StockSummary, error) {
	var row stockSummaryRow
	err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Select(`COUNT(*) AS total_products,
			COALESCE(SUM(CASE WHEN quantity_in_stock <= ? THEN 1 ELSE 0 END), 0) AS low_stock_count,
			COALESCE(SUM(CASE WHEN quantity_in_stock = 0 THEN 1 ELSE 0 END), 0) AS out_of_stock_count,
			COALESCE(SUM(quantity_in_stock), 0) AS total_units,
			COALESCE(SUM(price * quantity_in_stock), 0) AS total_value`, threshold).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &catalog.StockSummary{
		TotalProducts:   row.TotalProducts,
		LowStockCount:   row.LowStockCount,
		OutOfStockCount: row.OutOfStockCount,
		TotalUnits:      row.TotalUnits,
		TotalValue:      row.TotalValue.Round(2),
	}, nil
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
