package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stocker/backend/internal/domain/identity"
	"github.com/stocker/backend/internal/interfaces/http/dto"
)

// Capability decides whether a user may perform a class of operations
type Capability func(*identity.User) bool

// Named capabilities used by the router
var (
	AdjustStock   Capability = identity.CanAdjustStock
	ManageCatalog Capability = identity.CanManageCatalog
	ViewReports   Capability = identity.CanViewReports
	AdminOnly     Capability = func(u *identity.User) bool {
		return u != nil && u.Active && u.Role == identity.RoleAdmin
	}
)

// Require aborts with 401 when no user was resolved and 403 when the user
// lacks the capability
func Require(capability Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized, "authentication required", GetRequestID(c),
			))
			return
		}
		if !capability(user) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "you are not allowed to perform this action", GetRequestID(c),
			))
			return
		}
		c.Next()
	}
}
