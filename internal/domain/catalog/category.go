package catalog

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/stocker/backend/internal/domain/shared"
)

const maxCategoryNameLength = 100

// Category groups products. Every product belongs to exactly one category,
// and removing a category removes its products.
type Category struct {
	shared.BaseAggregateRoot
	Name string
}

// NewCategory creates a new category
func NewCategory(name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	return &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
	}, nil
}

// Rename changes the category name
func (c *Category) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return err
	}

	c.Name = name
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// MarkDeleted records the deletion event for publication after commit
func (c *Category) MarkDeleted(productCount int) {
	c.AddDomainEvent(NewCategoryDeletedEvent(c, productCount))
}

func validateCategoryName(name string) error {
	if name == "" {
		return shared.NewInvalidInputError("category name cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLength {
		return shared.NewInvalidInputError("category name cannot exceed 100 characters")
	}
	return nil
}
