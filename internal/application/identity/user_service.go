package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stocker/backend/internal/domain/identity"
	"github.com/stocker/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UserService handles user management operations
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// CreateUserInput contains input for creating a user
type CreateUserInput struct {
	Username string `json:"username" binding:"required,min=3,max=150"`
	Email    string `json:"email" binding:"omitempty,email"`
	Role     string `json:"role" binding:"required,oneof=admin employee viewer"`
}

// UserDTO represents user data transfer object
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// ToUserDTO converts a domain user to its DTO
func ToUserDTO(u *identity.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}

// Create creates a user. Usernames are unique.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	user, err := identity.NewUser(input.Username, input.Email, identity.Role(input.Role))
	if err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByUsername(ctx, user.Username); err == nil {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "username already taken")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewPersistenceError(err)
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, err
		}
		return nil, shared.NewPersistenceError(err)
	}

	s.logger.Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	dto := ToUserDTO(user)
	return &dto, nil
}

// GetByID returns a user by ID
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ToUserDTO(user)
	return &dto, nil
}

// Find returns the domain user, for callers that need its capabilities
func (s *UserService) Find(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("user")
		}
		return nil, shared.NewPersistenceError(err)
	}
	return user, nil
}

// List returns every user ordered by username
func (s *UserService) List(ctx context.Context) ([]UserDTO, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, shared.NewPersistenceError(err)
	}

	out := make([]UserDTO, len(users))
	for i := range users {
		out[i] = ToUserDTO(&users[i])
	}
	return out, nil
}

// Delete removes a user. Ledger entries it wrote remain with no actor.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewNotFoundError("user")
		}
		return shared.NewPersistenceError(err)
	}

	s.logger.Info("user deleted", zap.String("user_id", id.String()))
	return nil
}
