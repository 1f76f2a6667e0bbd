package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stocker/backend/internal/domain/identity"
	"github.com/stocker/backend/internal/domain/shared"
	"github.com/stocker/backend/internal/infrastructure/auth"
	"github.com/stocker/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapUsers map[uuid.UUID]*identity.User

func (m mapUsers) Find(_ context.Context, id uuid.UUID) (*identity.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, shared.NewNotFoundError("user")
}

type failingUsers struct{}

func (failingUsers) Find(context.Context, uuid.UUID) (*identity.User, error) {
	return nil, shared.NewPersistenceError(errors.New("db down"))
}

func newUser(t *testing.T, name string, role identity.Role) *identity.User {
	t.Helper()
	u, err := identity.NewUser(name, name+"@example.com", role)
	require.NoError(t, err)
	return u
}

func identityRouter(cfg IdentityConfig, guard ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), Identity(cfg))
	handlers := append(guard, func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Username)
	})
	router.GET("/test", handlers...)
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestIdentity(t *testing.T) {
	tokens := auth.NewJWTService(config.JWTConfig{Secret: "identity-test-secret", Issuer: "stocker"})
	admin := newUser(t, "admin", identity.RoleAdmin)
	inactive := newUser(t, "gone", identity.RoleEmployee)
	inactive.Active = false
	users := mapUsers{admin.ID: admin, inactive.ID: inactive}

	cfg := IdentityConfig{Tokens: tokens, Users: users, SkipPaths: []string{"/health"}}

	bearer := func(u *identity.User) string {
		tok, err := tokens.GenerateToken(u)
		require.NoError(t, err)
		return BearerPrefix + tok.AccessToken
	}

	tests := []struct {
		name     string
		cfg      IdentityConfig
		path     string
		headers  map[string]string
		wantCode int
		wantBody string
	}{
		{"valid token", cfg, "/test", map[string]string{AuthHeaderKey: bearer(admin)}, http.StatusOK, "admin"},
		{"skip path", cfg, "/health", nil, http.StatusOK, ""},
		{"missing header", cfg, "/test", nil, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"not bearer", cfg, "/test", map[string]string{AuthHeaderKey: "Basic abc"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"garbage token", cfg, "/test", map[string]string{AuthHeaderKey: "Bearer nope"}, http.StatusUnauthorized, "TOKEN_INVALID"},
		{"inactive user", cfg, "/test", map[string]string{AuthHeaderKey: bearer(inactive)}, http.StatusUnauthorized, "inactive"},
		{
			"deleted user", cfg, "/test",
			map[string]string{AuthHeaderKey: bearer(newUser(t, "ghost", identity.RoleAdmin))},
			http.StatusUnauthorized, "no longer exists",
		},
		{"dev header ignored by default", cfg, "/test", map[string]string{DevUserIDHeader: admin.ID.String()}, http.StatusUnauthorized, ""},
		{
			"dev header when allowed",
			IdentityConfig{Tokens: tokens, Users: users, AllowDevHeader: true}, "/test",
			map[string]string{DevUserIDHeader: admin.ID.String()}, http.StatusOK, "admin",
		},
		{
			"malformed dev header",
			IdentityConfig{Tokens: tokens, Users: users, AllowDevHeader: true}, "/test",
			map[string]string{DevUserIDHeader: "nope"}, http.StatusUnauthorized, DevUserIDHeader,
		},
		{
			"storage failure",
			IdentityConfig{Tokens: tokens, Users: failingUsers{}}, "/test",
			map[string]string{AuthHeaderKey: bearer(admin)}, http.StatusInternalServerError, "PERSISTENCE_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			identityRouter(tt.cfg).ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestIdentity_ExpiredToken(t *testing.T) {
	tokens := auth.NewJWTService(config.JWTConfig{Secret: "identity-test-secret", Expiration: time.Nanosecond})
	admin := newUser(t, "admin", identity.RoleAdmin)
	tok, err := tokens.GenerateToken(admin)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+tok.AccessToken)
	w := httptest.NewRecorder()
	identityRouter(IdentityConfig{Tokens: tokens, Users: mapUsers{admin.ID: admin}}).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
}

func TestRequire(t *testing.T) {
	admin := newUser(t, "admin", identity.RoleAdmin)
	clerk := newUser(t, "clerk", identity.RoleEmployee)
	viewer := newUser(t, "viewer", identity.RoleViewer)
	users := mapUsers{admin.ID: admin, clerk.ID: clerk, viewer.ID: viewer}
	cfg := IdentityConfig{Users: users, AllowDevHeader: true}

	tests := []struct {
		capability Capability
		user       *identity.User
		want       int
	}{
		{ManageCatalog, admin, http.StatusOK},
		{ManageCatalog, clerk, http.StatusForbidden},
		{AdjustStock, clerk, http.StatusOK},
		{AdjustStock, viewer, http.StatusForbidden},
		{ViewReports, admin, http.StatusOK},
		{ViewReports, clerk, http.StatusForbidden},
		{AdminOnly, viewer, http.StatusForbidden},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(DevUserIDHeader, tt.user.ID.String())
		w := httptest.NewRecorder()
		identityRouter(cfg, Require(tt.capability)).ServeHTTP(w, req)
		assert.Equal(t, tt.want, w.Code, tt.user.Username)
		if tt.want == http.StatusForbidden {
			assert.Contains(t, w.Body.String(), "FORBIDDEN")
		}
	}
}

func TestRequire_WithoutIdentity(t *testing.T) {
	router := gin.New()
	router.GET("/test", Require(AdjustStock), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCurrentUserID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, CurrentUserID(c))

	u := newUser(t, "clerk", identity.RoleEmployee)
	c.Set(CurrentUserKey, u)
	require.NotNil(t, CurrentUserID(c))
	assert.Equal(t, u.ID, *CurrentUserID(c))
}
