package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stocker/backend/internal/domain/catalog"
	"github.com/stocker/backend/internal/domain/inventory"
	"github.com/stocker/backend/internal/domain/shared"
)

// StockHistoryService reads the stock ledger
type StockHistoryService struct {
	productRepo catalog.ProductRepository
	ledgerRepo  inventory.StockLedgerRepository
}

// NewStockHistoryService creates a new StockHistoryService
func NewStockHistoryService(productRepo catalog.ProductRepository, ledgerRepo inventory.StockLedgerRepository) *StockHistoryService {
	return &StockHistoryService{
		productRepo: productRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// ListByProduct returns a product's ledger, most recent entry first
func (s *StockHistoryService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.StockLedgerEntry, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("product")
		}
		return nil, shared.NewPersistenceError(err)
	}

	entries, err := s.ledgerRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, shared.NewPersistenceError(err)
	}
	return entries, nil
}

// ListRecent returns the latest entries across all products
func (s *StockHistoryService) ListRecent(ctx context.Context, limit int) ([]inventory.StockLedgerEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	entries, err := s.ledgerRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, shared.NewPersistenceError(err)
	}
	return entries, nil
}
