package main

import (
	"context"
	"testing"

	"github.com/google/uuid"
	catalogapp "github.com/stocker/backend/internal/application/catalog"
	inventoryapp "github.com/stocker/backend/internal/application/inventory"
	partnerapp "github.com/stocker/backend/internal/application/partner"
	"github.com/stocker/backend/internal/domain/inventory"
	"github.com/stocker/backend/internal/infrastructure/persistence/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSeedCatalog(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	log := zaptest.NewLogger(t)
	admin := uuid.New()

	err := seedCatalog(ctx,
		catalogapp.NewCategoryService(store.Categories(), store, log),
		catalogapp.NewProductService(store.Products(), store, log),
		partnerapp.NewSupplierService(store.Suppliers(), store.Products(), log),
		inventoryapp.NewStockAdjustmentService(store, nil, log),
		&admin,
	)
	require.NoError(t, err)

	products, err := store.Products().FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)

	var espresso *uuid.UUID
	for i := range products {
		if products[i].Name == "Espresso Beans 1kg" {
			espresso = &products[i].ID
			assert.Equal(t, 21, products[i].QuantityInStock)
		}
	}
	require.NotNil(t, espresso)

	entries, err := store.Ledger().ListByProduct(ctx, *espresso)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, inventory.EntryKindAdjustment, entries[0].Kind)
	assert.Equal(t, -3, entries[0].Delta)
	assert.Equal(t, &admin, entries[0].ActingUserID)
	assert.Equal(t, inventory.EntryKindInitialStock, entries[1].Kind)
}
