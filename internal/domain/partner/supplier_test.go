package partner

import (
	"errors"
	"strings"
	"testing"

	"github.com/stocker/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSupplier(t *testing.T) {
	t.Run("normalizes and stores details", func(t *testing.T) {
		s, err := NewSupplier(SupplierDetails{
			Name:    " Acme ",
			Email:   "Sales@Acme.COM",
			Phone:   "555-0100",
			Website: "https://acme.example",
		})
		require.NoError(t, err)
		assert.Equal(t, "Acme", s.Name)
		assert.Equal(t, "sales@acme.com", s.Email)
		assert.Equal(t, 1, s.GetVersion())
	})

	t.Run("name length counts characters", func(t *testing.T) {
		s, err := NewSupplier(SupplierDetails{Name: strings.Repeat("ö", 100), Email: "a@b.co", Phone: "1"})
		require.NoError(t, err)
		assert.Len(t, []rune(s.Name), 100)
	})

	tests := []struct {
		name    string
		details SupplierDetails
		msg     string
	}{
		{"empty name", SupplierDetails{Email: "a@b.co", Phone: "1"}, "name cannot be empty"},
		{"bad email", SupplierDetails{Name: "X", Email: "nope", Phone: "1"}, "invalid email format"},
		{"empty phone", SupplierDetails{Name: "X", Email: "a@b.co"}, "phone cannot be empty"},
		{"long phone", SupplierDetails{Name: "X", Email: "a@b.co", Phone: "123456789012345678901"}, "phone cannot exceed"},
		{"bad website", SupplierDetails{Name: "X", Email: "a@b.co", Phone: "1", Website: "ftp://x"}, "website must be"},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			_, err := NewSupplier(tt.details)
			require.Error(t, err)
			assert.True(t, errors.Is(err, shared.ErrInvalidInput))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestSupplier_Update(t *testing.T) {
	s, err := NewSupplier(SupplierDetails{Name: "Acme", Email: "a@acme.io", Phone: "1"})
	require.NoError(t, err)

	err = s.Update(SupplierDetails{Name: "Acme Ltd", Email: "b@acme.io", Phone: "2", LogoRef: "logos/acme.png"})
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", s.Name)
	assert.Equal(t, "logos/acme.png", s.LogoRef)
	assert.Equal(t, 2, s.GetVersion())

	err = s.Update(SupplierDetails{Name: "", Email: "b@acme.io", Phone: "2"})
	require.Error(t, err)
	assert.Equal(t, "Acme Ltd", s.Name)
}
