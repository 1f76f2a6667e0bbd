package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	appinventory "github.com/stocker/backend/internal/application/inventory"
	"github.com/stocker/backend/internal/domain/catalog"
	"github.com/stocker/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo   catalog.CategoryRepository
	txScope        appinventory.TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	txScope appinventory.TransactionScope,
	logger *zap.Logger,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		txScope:      txScope,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CategoryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	category, err := catalog.NewCategory(req.Name)
	if err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, shared.NewPersistenceError(err)
	}

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// GetByID retrieves a category by ID
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// List retrieves all categories ordered by name
func (s *CategoryService) List(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, shared.NewPersistenceError(err)
	}

	out := make([]CategoryResponse, len(categories))
	for i := range categories {
		out[i] = ToCategoryResponse(&categories[i])
	}
	return out, nil
}

// Update renames a category
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := category.Rename(req.Name); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, shared.NewPersistenceError(err)
	}

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Delete removes a category together with its products and, through them,
// their ledger entries and supplier links. Everything goes in one transaction.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	var (
		deleted         *catalog.Category
		productsDeleted int
	)

	err := s.txScope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		category, err := repos.CategoryRepo().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewNotFoundError("category")
			}
			return shared.NewPersistenceError(err)
		}

		count, err := repos.ProductRepo().DeleteByCategory(ctx, id)
		if err != nil {
			return shared.NewPersistenceError(err)
		}

		if err := repos.CategoryRepo().Delete(ctx, id); err != nil {
			return shared.NewPersistenceError(err)
		}

		category.MarkDeleted(count)
		deleted = category
		productsDeleted = count
		return nil
	})
	if err != nil {
		return asServiceError(err)
	}

	s.logger.Info("category deleted",
		zap.String("category_id", id.String()),
		zap.Int("products_deleted", productsDeleted),
	)
	publish(ctx, s.eventPublisher, deleted)
	return nil
}

func (s *CategoryService) find(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("category")
		}
		return nil, shared.NewPersistenceError(err)
	}
	return category, nil
}

// publish sends and clears the pending events of each aggregate
func publish(ctx context.Context, publisher shared.EventPublisher, aggregates ...shared.AggregateRoot) {
	if publisher == nil {
		return
	}
	var events []shared.DomainEvent
	for _, a := range aggregates {
		events = append(events, a.GetDomainEvents()...)
		a.ClearDomainEvents()
	}
	if len(events) > 0 {
		// Errors are logged by the event bus, not propagated
		_ = publisher.Publish(ctx, events...)
	}
}

// asServiceError keeps domain errors and wraps anything else, such as a
// failed commit, as a persistence error
func asServiceError(err error) error {
	if _, ok := shared.AsDomainError(err); ok {
		return err
	}
	return shared.NewPersistenceError(err)
}
