package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	appinventory "github.com/stocker/backend/internal/application/inventory"
	"github.com/stocker/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockHistoryService_ListByProduct(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, 10)
	ctx := context.Background()

	for _, d := range []int{5, -3, 1} {
		_, err := f.service.AdjustStockBy(ctx, p.ID, d, nil, "")
		require.NoError(t, err)
	}

	history := appinventory.NewStockHistoryService(f.store.Products(), f.store.Ledger())

	entries, err := history.ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, 1, entries[0].Delta)
	assert.Equal(t, -3, entries[1].Delta)
	assert.Equal(t, 5, entries[2].Delta)

	recent, err := history.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 1, recent[0].Delta)

	_, err = history.ListByProduct(ctx, uuid.New())
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}
