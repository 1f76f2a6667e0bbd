package handler

import (
	"github.com/gin-gonic/gin"
	identityapp "github.com/stocker/backend/internal/application/identity"
	"github.com/stocker/backend/internal/domain/identity"
	"github.com/stocker/backend/internal/interfaces/http/dto"
	"github.com/stocker/backend/internal/interfaces/http/middleware"
)

// UserHandler handles user administration and the current-user endpoint
type UserHandler struct {
	BaseHandler
	userService *identityapp.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *identityapp.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// MeResponse describes the acting user and what they may do
// @Description Current user with capabilities
type MeResponse struct {
	identityapp.UserDTO
	CanAdjustStock   bool `json:"can_adjust_stock"`
	CanManageCatalog bool `json:"can_manage_catalog"`
	CanViewReports   bool `json:"can_view_reports"`
}

// Me godoc
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Success      200 {object} dto.Response{data=MeResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /me [get]
func (h *UserHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeUnauthorized), dto.ErrCodeUnauthorized, "authentication required")
		return
	}
	h.Success(c, MeResponse{
		UserDTO:          identityapp.ToUserDTO(user),
		CanAdjustStock:   identity.CanAdjustStock(user),
		CanManageCatalog: identity.CanManageCatalog(user),
		CanViewReports:   identity.CanViewReports(user),
	})
}

// List godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200 {object} dto.Response{data=[]identityapp.UserDTO}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, users)
}

// Delete godoc
// @Summary      Delete a user
// @Description  Stock history written by the user is kept with no acting user
// @Tags         users
// @Param        id path string true "User ID" format(uuid)
// @Success      204
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if current := middleware.CurrentUserID(c); current != nil && *current == id {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeInvalidState), dto.ErrCodeInvalidState, "you cannot delete yourself")
		return
	}

	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
