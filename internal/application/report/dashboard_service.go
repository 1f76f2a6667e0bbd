package report

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocker/backend/internal/domain/catalog"
	"github.com/stocker/backend/internal/domain/inventory"
	"github.com/stocker/backend/internal/domain/partner"
	"github.com/stocker/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	// RecentAdjustmentsLimit is how many ledger entries the dashboard shows
	RecentAdjustmentsLimit = 10
	// DefaultSummaryTTL applies when no TTL is configured
	DefaultSummaryTTL = 30 * time.Second
)

// DashboardSummary is the overview shown on the dashboard
type DashboardSummary struct {
	TotalProducts     int64              `json:"total_products"`
	TotalCategories   int64              `json:"total_categories"`
	TotalSuppliers    int64              `json:"total_suppliers"`
	LowStockCount     int64              `json:"low_stock_count"`
	OutOfStockCount   int64              `json:"out_of_stock_count"`
	TotalUnits        int64              `json:"total_units"`
	TotalStockValue   decimal.Decimal    `json:"total_stock_value"`
	LowStockThreshold int                `json:"low_stock_threshold"`
	RecentAdjustments []RecentAdjustment `json:"recent_adjustments"`
	GeneratedAt       time.Time          `json:"generated_at"`
}

// RecentAdjustment is a ledger entry with the product name resolved
type RecentAdjustment struct {
	EntryID       uuid.UUID  `json:"entry_id"`
	ProductID     uuid.UUID  `json:"product_id"`
	ProductName   string     `json:"product_name"`
	Kind          string     `json:"kind"`
	Delta         int        `json:"delta"`
	QuantityAfter int        `json:"quantity_after"`
	Note          string     `json:"note,omitempty"`
	ActingUserID  *uuid.UUID `json:"acting_user_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// SummaryCache stores the computed dashboard summary.
// Get returns (nil, nil) on a miss.
type SummaryCache interface {
	Get(ctx context.Context) (*DashboardSummary, error)
	Set(ctx context.Context, summary *DashboardSummary, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// DashboardService computes the dashboard summary
type DashboardService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	supplierRepo partner.SupplierRepository
	ledgerRepo   inventory.StockLedgerRepository
	cache        SummaryCache
	ttl          time.Duration
	logger       *zap.Logger
}

// NewDashboardService creates a DashboardService. cache may be nil.
func NewDashboardService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	supplierRepo partner.SupplierRepository,
	ledgerRepo inventory.StockLedgerRepository,
	cache SummaryCache,
	ttl time.Duration,
	logger *zap.Logger,
) *DashboardService {
	if ttl <= 0 {
		ttl = DefaultSummaryTTL
	}
	return &DashboardService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
		ledgerRepo:   ledgerRepo,
		cache:        cache,
		ttl:          ttl,
		logger:       logger,
	}
}

// Summary returns the cached summary or computes a fresh one.
// Cache failures fall through to the repositories.
func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	summary, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, summary, s.ttl); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return summary, nil
}

func (s *DashboardService) compute(ctx context.Context) (*DashboardSummary, error) {
	stock, err := s.productRepo.Summary(ctx, catalog.LowStockThreshold)
	if err != nil {
		return nil, shared.NewPersistenceError(err)
	}
	categories, err := s.categoryRepo.Count(ctx)
	if err != nil {
		return nil, shared.NewPersistenceError(err)
	}
	suppliers, err := s.supplierRepo.Count(ctx)
	if err != nil {
		return nil, shared.NewPersistenceError(err)
	}
	entries, err := s.ledgerRepo.ListRecent(ctx, RecentAdjustmentsLimit)
	if err != nil {
		return nil, shared.NewPersistenceError(err)
	}

	recent, err := s.resolveNames(ctx, entries)
	if err != nil {
		return nil, err
	}

	return &DashboardSummary{
		TotalProducts:     stock.TotalProducts,
		TotalCategories:   categories,
		TotalSuppliers:    suppliers,
		LowStockCount:     stock.LowStockCount,
		OutOfStockCount:   stock.OutOfStockCount,
		TotalUnits:        stock.TotalUnits,
		TotalStockValue:   stock.TotalValue,
		LowStockThreshold: catalog.LowStockThreshold,
		RecentAdjustments: recent,
		GeneratedAt:       time.Now(),
	}, nil
}

func (s *DashboardService) resolveNames(ctx context.Context, entries []inventory.StockLedgerEntry) ([]RecentAdjustment, error) {
	names := make(map[uuid.UUID]string)
	out := make([]RecentAdjustment, 0, len(entries))
	for _, e := range entries {
		name, ok := names[e.ProductID]
		if !ok {
			p, err := s.productRepo.FindByID(ctx, e.ProductID)
			switch {
			case err == nil:
				name = p.Name
			case errors.Is(err, shared.ErrNotFound):
			default:
				return nil, shared.NewPersistenceError(err)
			}
			names[e.ProductID] = name
		}
		out = append(out, RecentAdjustment{
			EntryID:       e.ID,
			ProductID:     e.ProductID,
			ProductName:   name,
			Kind:          string(e.Kind),
			Delta:         e.Delta,
			QuantityAfter: e.QuantityAfter,
			Note:          e.Note,
			ActingUserID:  e.ActingUserID,
			CreatedAt:     e.CreatedAt,
		})
	}
	return out, nil
}
