package partner

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stocker/backend/internal/domain/catalog"
	"github.com/stocker/backend/internal/domain/partner"
	"github.com/stocker/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SupplierService handles supplier-related business operations
type SupplierService struct {
	supplierRepo partner.SupplierRepository
	productRepo  catalog.ProductRepository
	logger       *zap.Logger
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(
	supplierRepo partner.SupplierRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *SupplierService {
	return &SupplierService{
		supplierRepo: supplierRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := partner.NewSupplier(partner.SupplierDetails(req))
	if err != nil {
		return nil, err
	}

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, shared.NewPersistenceError(err)
	}

	s.logger.Info("supplier created", zap.String("supplier_id", supplier.ID.String()))
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// List retrieves all suppliers ordered by name
func (s *SupplierService) List(ctx context.Context) ([]SupplierResponse, error) {
	suppliers, err := s.supplierRepo.FindAll(ctx)
	if err != nil {
		return nil, shared.NewPersistenceError(err)
	}
	return ToSupplierResponses(suppliers), nil
}

// Update replaces a supplier's details
func (s *SupplierService) Update(ctx context.Context, id uuid.UUID, req UpdateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := supplier.Update(partner.SupplierDetails(req)); err != nil {
		return nil, err
	}

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, shared.NewPersistenceError(err)
	}

	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Delete removes a supplier. Linked products stay, only the links go.
func (s *SupplierService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	if err := s.supplierRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewNotFoundError("supplier")
		}
		return shared.NewPersistenceError(err)
	}

	s.logger.Info("supplier deleted", zap.String("supplier_id", id.String()))
	return nil
}

// ListProducts returns the products linked to a supplier
func (s *SupplierService) ListProducts(ctx context.Context, id uuid.UUID) ([]catalog.Product, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}

	products, err := s.productRepo.FindBySupplier(ctx, id)
	if err != nil {
		return nil, shared.NewPersistenceError(err)
	}
	return products, nil
}

func (s *SupplierService) find(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("supplier")
		}
		return nil, shared.NewPersistenceError(err)
	}
	return supplier, nil
}
