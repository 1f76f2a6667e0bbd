package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stocker/backend/internal/domain/inventory"
	"github.com/stocker/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStockLedgerRepository implements StockLedgerRepository using GORM.
// It only ever inserts; rows are removed by the product repository when
// their product is deleted.
type GormStockLedgerRepository struct {
	db *gorm.DB
}

// NewGormStockLedgerRepository creates a new GormStockLedgerRepository
func NewGormStockLedgerRepository(db *gorm.DB) *GormStockLedgerRepository {
	return &GormStockLedgerRepository{db: db}
}

// Append inserts a new entry
func (r *GormStockLedgerRepository) Append(ctx context.Context, entry *inventory.StockLedgerEntry) (uuid.UUID, error) {
	model := models.StockLedgerEntryModelFromDomain(entry)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return uuid.Nil, err
	}
	return model.ID, nil
}

// NextSequence returns one more than the product's highest sequence
func (r *GormStockLedgerRepository) NextSequence(ctx context.Context, productID uuid.UUID) (int64, error) {
	var last int64
	err := r.db.WithContext(ctx).
		Model(&models.StockLedgerEntryModel{}).
		Select("COALESCE(MAX(sequence), 0)").
		Where("product_id = ?", productID).
		Scan(&last).Error
	if err != nil {
		return 0, err
	}
	return last + 1, nil
}

// ListByProduct returns a product's entries, most recent first
func (r *GormStockLedgerRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.StockLedgerEntry, error) {
	return r.find(r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("sequence DESC"))
}

// ListRecent returns the latest entries across all products
func (r *GormStockLedgerRepository) ListRecent(ctx context.Context, limit int) ([]inventory.StockLedgerEntry, error) {
	return r.find(r.db.WithContext(ctx).
		Order("created_at DESC, sequence DESC").
		Limit(limit))
}

func (r *GormStockLedgerRepository) find(query *gorm.DB) ([]inventory.StockLedgerEntry, error) {
	var rows []models.StockLedgerEntryModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]inventory.StockLedgerEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}

var _ inventory.StockLedgerRepository = (*GormStockLedgerRepository)(nil)
