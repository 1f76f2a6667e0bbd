package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stocker/backend/internal/domain/identity"
	"github.com/stocker/backend/internal/domain/shared"
	"github.com/stocker/backend/internal/infrastructure/auth"
	"github.com/stocker/backend/internal/infrastructure/logger"
	"github.com/stocker/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Identity context keys and headers
const (
	CurrentUserKey  = "current_user"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
	DevUserIDHeader = "X-User-ID"
)

// TokenValidator verifies bearer tokens
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// UserLoader resolves the user a token or header refers to
type UserLoader interface {
	Find(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

// IdentityConfig holds configuration for the identity middleware
type IdentityConfig struct {
	Tokens TokenValidator
	Users  UserLoader
	// AllowDevHeader accepts X-User-ID without a token. Development only.
	AllowDevHeader bool
	// SkipPaths are served without an identity
	SkipPaths []string
	Logger    *zap.Logger
}

// Identity resolves the acting user of each request. The user is reloaded
// on every request so that deleted or deactivated users lose access
// immediately, without token revocation.
func Identity(cfg IdentityConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		userID, code, err := resolveUserID(c, cfg)
		if err != nil {
			log.Debug("authentication failed",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			abortUnauthorized(c, code, err.Error())
			return
		}

		user, err := cfg.Users.Find(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				abortUnauthorized(c, dto.ErrCodeUnauthorized, "user no longer exists")
				return
			}
			log.Error("failed to load acting user", zap.String("user_id", userID.String()), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
				dto.ErrCodePersistence, "could not load user", GetRequestID(c),
			))
			return
		}
		if !user.Active {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "user is inactive")
			return
		}

		c.Set(CurrentUserKey, user)
		c.Set(string(logger.UserIDKey), user.ID.String())
		ctx, _ := logger.WithUserID(c.Request.Context(), logger.FromContext(c.Request.Context()), user.ID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func resolveUserID(c *gin.Context, cfg IdentityConfig) (uuid.UUID, string, error) {
	header := c.GetHeader(AuthHeaderKey)
	if header == "" {
		if cfg.AllowDevHeader {
			if raw := c.GetHeader(DevUserIDHeader); raw != "" {
				id, err := uuid.Parse(raw)
				if err != nil {
					return uuid.Nil, dto.ErrCodeUnauthorized, errors.New("invalid " + DevUserIDHeader + " header")
				}
				return id, "", nil
			}
		}
		return uuid.Nil, dto.ErrCodeUnauthorized, errors.New("missing authorization header")
	}

	if !strings.HasPrefix(header, BearerPrefix) {
		return uuid.Nil, dto.ErrCodeUnauthorized, errors.New("invalid authorization header format")
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	if token == "" || cfg.Tokens == nil {
		return uuid.Nil, dto.ErrCodeTokenInvalid, auth.ErrInvalidToken
	}

	claims, err := cfg.Tokens.ValidateToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return uuid.Nil, dto.ErrCodeTokenExpired, err
		}
		return uuid.Nil, dto.ErrCodeTokenInvalid, err
	}
	id, err := claims.UserUUID()
	if err != nil {
		return uuid.Nil, dto.ErrCodeTokenInvalid, err
	}
	return id, "", nil
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// CurrentUser returns the user resolved by Identity, or nil
func CurrentUser(c *gin.Context) *identity.User {
	if v, ok := c.Get(CurrentUserKey); ok {
		if u, ok := v.(*identity.User); ok {
			return u
		}
	}
	return nil
}

// CurrentUserID returns the acting user's ID, or nil when anonymous
func CurrentUserID(c *gin.Context) *uuid.UUID {
	u := CurrentUser(c)
	if u == nil {
		return nil
	}
	id := u.ID
	return &id
}
