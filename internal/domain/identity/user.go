package identity

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stocker/backend/internal/domain/shared"
)

// Role is the access group a user belongs to
type Role string

const (
	RoleAdmin    Role = "admin"    // full catalog management and reports
	RoleEmployee Role = "employee" // stock adjustments
	RoleViewer   Role = "viewer"   // read-only
)

// IsValid returns true if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleEmployee, RoleViewer:
		return true
	}
	return false
}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.@+]+$`)

// User is the acting identity attributed to stock changes. Credentials are
// handled outside this service.
type User struct {
	shared.BaseAggregateRoot
	Username string
	Email    string
	Role     Role
	Active   bool
}

// NewUser creates an active user
func NewUser(username, email string, role Role) (*User, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewInvalidInputError("invalid role")
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          username,
		Email:             strings.ToLower(strings.TrimSpace(email)),
		Role:              role,
		Active:            true,
	}, nil
}

// CanAdjustStock reports whether the user may change stock levels
func CanAdjustStock(u *User) bool {
	return u != nil && u.Active && (u.Role == RoleAdmin || u.Role == RoleEmployee)
}

// CanManageCatalog reports whether the user may create, change or delete
// categories, products and suppliers
func CanManageCatalog(u *User) bool {
	return u != nil && u.Active && u.Role == RoleAdmin
}

// CanViewReports reports whether the user may see dashboards and exports
func CanViewReports(u *User) bool {
	return u != nil && u.Active && u.Role == RoleAdmin
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindAll(ctx context.Context) ([]User, error)
	Save(ctx context.Context, user *User) error
	// Delete removes the user. Ledger entries keep their rows with the
	// acting user cleared.
	Delete(ctx context.Context, id uuid.UUID) error
}

func validateUsername(username string) error {
	if username == "" {
		return shared.NewInvalidInputError("username cannot be empty")
	}
	if utf8.RuneCountInString(username) < 3 {
		return shared.NewInvalidInputError("username must be at least 3 characters")
	}
	if utf8.RuneCountInString(username) > 150 {
		return shared.NewInvalidInputError("username cannot exceed 150 characters")
	}
	if !usernameRegex.MatchString(username) {
		return shared.NewInvalidInputError("username can only contain letters, numbers and @.+-_")
	}
	return nil
}
