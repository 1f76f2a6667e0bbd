package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_Is(t *testing.T) {
	t.Run("matches sentinel by code", func(t *testing.T) {
		err := NewNotFoundError("product")
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.False(t, errors.Is(err, ErrInvalidInput))
	})

	t.Run("matches through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("load: %w", NewInvalidStateError("resulting stock can't be negative"))
		assert.True(t, errors.Is(err, ErrInvalidState))
	})
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewPersistenceError(cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, "storage operation failed: connection reset", err.Error())
}

func TestAsDomainError(t *testing.T) {
	de, ok := AsDomainError(fmt.Errorf("wrapped: %w", NewInvalidInputError("invalid quantity")))
	require.True(t, ok)
	assert.Equal(t, CodeInvalidInput, de.Code)
	assert.Equal(t, "invalid quantity", de.Message)

	_, ok = AsDomainError(errors.New("plain"))
	assert.False(t, ok)
}
