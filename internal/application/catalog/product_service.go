package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	appinventory "github.com/stocker/backend/internal/application/inventory"
	"github.com/stocker/backend/internal/domain/catalog"
	"github.com/stocker/backend/internal/domain/inventory"
	"github.com/stocker/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const initialStockNote = "initial stock"

// ProductService handles product-related business operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	txScope        appinventory.TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	txScope appinventory.TransactionScope,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		txScope:     txScope,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a product. A positive initial quantity is written together
// with its ledger entry in the same transaction.
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest, actingUserID *uuid.UUID) (*ProductResponse, error) {
	if req.InitialQuantity < 0 {
		return nil, shared.NewInvalidInputError("initial quantity cannot be negative")
	}
	expiry, err := parseExpiryDate(req.ExpiryDate)
	if err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(catalog.ProductDetails{
		Name:        req.Name,
		Description: req.Description,
		Price:       priceOrZero(req.Price),
		ImageRef:    req.ImageRef,
		CategoryID:  req.CategoryID,
		ExpiryDate:  expiry,
	})
	if err != nil {
		return nil, err
	}
	product.SetSuppliers(req.SupplierIDs)

	var events []shared.DomainEvent
	err = s.txScope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		if err := checkReferences(ctx, repos, product); err != nil {
			return err
		}

		var entry *inventory.StockLedgerEntry
		if req.InitialQuantity > 0 {
			_, newQuantity, err := product.ApplyStockDelta(req.InitialQuantity)
			if err != nil {
				return err
			}
			entry, err = inventory.NewStockLedgerEntry(
				product.ID, actingUserID, inventory.EntryKindInitialStock,
				req.InitialQuantity, newQuantity, initialStockNote,
			)
			if err != nil {
				return err
			}
		}

		if err := repos.ProductRepo().Save(ctx, product); err != nil {
			return shared.NewPersistenceError(err)
		}

		if entry != nil {
			seq, err := repos.LedgerRepo().NextSequence(ctx, product.ID)
			if err != nil {
				return shared.NewPersistenceError(err)
			}
			entry.Sequence = seq
			if _, err := repos.LedgerRepo().Append(ctx, entry); err != nil {
				return shared.NewPersistenceError(err)
			}
			events = append(events, inventory.NewStockAdjustedEvent(entry))
		}
		return nil
	})
	if err != nil {
		return nil, asServiceError(err)
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.Int("initial_quantity", product.QuantityInStock),
	)
	publish(ctx, s.eventPublisher, product)
	if len(events) > 0 && s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, events...)
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.find(ctx, s.productRepo, id)
	if err != nil {
		return nil, err
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// List retrieves all products ordered by name
func (s *ProductService) List(ctx context.Context) ([]ProductResponse, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, shared.NewPersistenceError(err)
	}
	return ToProductResponses(products), nil
}

// ListLowStock retrieves products at or below the low-stock threshold
func (s *ProductService) ListLowStock(ctx context.Context) ([]ProductResponse, error) {
	products, err := s.productRepo.FindLowStock(ctx, catalog.LowStockThreshold)
	if err != nil {
		return nil, shared.NewPersistenceError(err)
	}
	return ToProductResponses(products), nil
}

// ListBySupplier retrieves the products linked to a supplier
func (s *ProductService) ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]ProductResponse, error) {
	products, err := s.productRepo.FindBySupplier(ctx, supplierID)
	if err != nil {
		return nil, shared.NewPersistenceError(err)
	}
	return ToProductResponses(products), nil
}

// Update changes a product's details and supplier links. The quantity in
// stock is not touched.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	expiry, err := parseExpiryDate(req.ExpiryDate)
	if err != nil {
		return nil, err
	}

	var product *catalog.Product
	err = s.txScope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		p, err := s.find(ctx, repos.ProductRepo(), id)
		if err != nil {
			return err
		}

		if err := p.Update(catalog.ProductDetails{
			Name:        req.Name,
			Description: req.Description,
			Price:       priceOrZero(req.Price),
			ImageRef:    req.ImageRef,
			CategoryID:  req.CategoryID,
			ExpiryDate:  expiry,
		}); err != nil {
			return err
		}
		p.SetSuppliers(req.SupplierIDs)

		if err := checkReferences(ctx, repos, p); err != nil {
			return err
		}

		if err := repos.ProductRepo().Save(ctx, p); err != nil {
			return shared.NewPersistenceError(err)
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, asServiceError(err)
	}

	publish(ctx, s.eventPublisher, product)
	resp := ToProductResponse(product)
	return &resp, nil
}

// Delete removes a product with its ledger entries and supplier links
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	var product *catalog.Product
	err := s.txScope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		p, err := s.find(ctx, repos.ProductRepo(), id)
		if err != nil {
			return err
		}
		if err := repos.ProductRepo().Delete(ctx, id); err != nil {
			return shared.NewPersistenceError(err)
		}
		p.MarkDeleted()
		product = p
		return nil
	})
	if err != nil {
		return asServiceError(err)
	}

	s.logger.Info("product deleted", zap.String("product_id", id.String()))
	publish(ctx, s.eventPublisher, product)
	return nil
}

func (s *ProductService) find(ctx context.Context, repo catalog.ProductRepository, id uuid.UUID) (*catalog.Product, error) {
	product, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("product")
		}
		return nil, shared.NewPersistenceError(err)
	}
	return product, nil
}

// checkReferences verifies the category and every linked supplier exist
func checkReferences(ctx context.Context, repos appinventory.TransactionalRepositories, p *catalog.Product) error {
	if _, err := repos.CategoryRepo().FindByID(ctx, p.CategoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewInvalidInputError("category does not exist")
		}
		return shared.NewPersistenceError(err)
	}

	if len(p.SupplierIDs) == 0 {
		return nil
	}
	found, err := repos.SupplierRepo().FindByIDs(ctx, p.SupplierIDs)
	if err != nil {
		return shared.NewPersistenceError(err)
	}
	if len(found) != len(p.SupplierIDs) {
		return shared.NewInvalidInputError("one or more suppliers do not exist")
	}
	return nil
}
