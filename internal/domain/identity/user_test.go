package identity

import (
	"errors"
	"testing"

	"github.com/stocker/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser(" clerk ", "Clerk@Example.com", RoleEmployee)
	require.NoError(t, err)
	assert.Equal(t, "clerk", u.Username)
	assert.Equal(t, "clerk@example.com", u.Email)
	assert.True(t, u.Active)

	_, err = NewUser("ab", "", RoleEmployee)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	_, err = NewUser("valid", "", Role("owner"))
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestCapabilities(t *testing.T) {
	admin, _ := NewUser("admin", "", RoleAdmin)
	employee, _ := NewUser("employee", "", RoleEmployee)
	viewer, _ := NewUser("viewer", "", RoleViewer)
	inactive, _ := NewUser("former", "", RoleAdmin)
	inactive.Active = false

	tests := []struct {
		name            string
		user            *User
		adjust, catalog bool
	}{
		{"admin", admin, true, true},
		{"employee", employee, true, false},
		{"viewer", viewer, false, false},
		{"inactive", inactive, false, false},
		{"anonymous", nil, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.adjust, CanAdjustStock(tt.user))
			assert.Equal(t, tt.catalog, CanManageCatalog(tt.user))
			assert.Equal(t, tt.catalog, CanViewReports(tt.user))
		})
	}
}
