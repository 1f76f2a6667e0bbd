package inventory

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stocker/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStockLedgerEntry(t *testing.T) {
	productID := uuid.New()
	userID := uuid.New()

	t.Run("creates entry", func(t *testing.T) {
		e, err := NewStockLedgerEntry(productID, &userID, EntryKindAdjustment, -2, 4, "  sold two  ")
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, e.ID)
		assert.Equal(t, productID, e.ProductID)
		assert.Equal(t, &userID, e.ActingUserID)
		assert.Equal(t, "sold two", e.Note)
		assert.Equal(t, 6, e.QuantityBefore())
		assert.False(t, e.IsIncrease())
		assert.False(t, e.CreatedAt.IsZero())
	})

	t.Run("allows missing actor and empty note", func(t *testing.T) {
		nilID := uuid.Nil
		e, err := NewStockLedgerEntry(productID, &nilID, EntryKindInitialStock, 3, 3, "")
		require.NoError(t, err)
		assert.Nil(t, e.ActingUserID)
		assert.Empty(t, e.Note)
	})

	t.Run("rejects zero delta", func(t *testing.T) {
		_, err := NewStockLedgerEntry(productID, nil, EntryKindAdjustment, 0, 3, "")
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("rejects negative result", func(t *testing.T) {
		_, err := NewStockLedgerEntry(productID, nil, EntryKindAdjustment, -5, -1, "")
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})

	t.Run("note length counts characters", func(t *testing.T) {
		e, err := NewStockLedgerEntry(productID, nil, EntryKindAdjustment, 1, 1, strings.Repeat("é", 300))
		require.NoError(t, err)
		assert.Len(t, []rune(e.Note), 300)

		_, err = NewStockLedgerEntry(productID, nil, EntryKindAdjustment, 1, 1, strings.Repeat("é", 501))
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		_, err := NewStockLedgerEntry(productID, nil, EntryKind("TRANSFER"), 1, 1, "")
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func TestCrossedBelowThreshold(t *testing.T) {
	tests := []struct {
		name     string
		old, new int
		want     bool
	}{
		{"6 to 4 crosses", 6, 4, true},
		{"6 to 5 crosses", 6, 5, true},
		{"10 to 0 crosses", 10, 0, true},
		{"3 to 2 stays below", 3, 2, false},
		{"5 to 5 stays at threshold", 5, 5, false},
		{"4 to 7 recovers upward", 4, 7, false},
		{"9 to 6 stays above", 9, 6, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CrossedBelowThreshold(tt.old, tt.new))
		})
	}
}

func TestRegionOf(t *testing.T) {
	assert.Equal(t, RegionAboveThreshold, RegionOf(6))
	assert.Equal(t, RegionAtOrBelowThreshold, RegionOf(5))
	assert.Equal(t, RegionAtOrBelowThreshold, RegionOf(0))
}
