package router

import (
	"github.com/stocker/backend/internal/interfaces/http/handler"
	"github.com/stocker/backend/internal/interfaces/http/middleware"
)

// APIHandlers holds the handlers mounted under the versioned API
type APIHandlers struct {
	Categories *handler.CategoryHandler
	Products   *handler.ProductHandler
	Suppliers  *handler.SupplierHandler
	Inventory  *handler.InventoryHandler
	Reports    *handler.ReportHandler
	Users      *handler.UserHandler
}

// RegisterAPI registers every domain group. Reads are open to any
// identified user; writes are guarded by capability.
func (r *Router) RegisterAPI(h APIHandlers) *Router {
	return r.
		Register(categoryRoutes(h.Categories)).
		Register(productRoutes(h.Products, h.Inventory)).
		Register(supplierRoutes(h.Suppliers)).
		Register(reportRoutes(h.Reports)).
		Register(userRoutes(h.Users))
}

func categoryRoutes(h *handler.CategoryHandler) *DomainGroup {
	manage := middleware.Require(middleware.ManageCatalog)
	return NewDomainGroup("catalog", "/categories").
		GET("", h.List).
		GET("/:id", h.GetByID).
		POST("", manage, h.Create).
		PUT("/:id", manage, h.Update).
		DELETE("/:id", manage, h.Delete)
}

func productRoutes(h *handler.ProductHandler, inv *handler.InventoryHandler) *DomainGroup {
	manage := middleware.Require(middleware.ManageCatalog)
	return NewDomainGroup("catalog", "/products").
		GET("", h.List).
		GET("/low-stock", h.ListLowStock).
		GET("/:id", h.GetByID).
		POST("", manage, h.Create).
		PUT("/:id", manage, h.Update).
		DELETE("/:id", manage, h.Delete).
		POST("/:id/stock-adjustments", middleware.Require(middleware.AdjustStock), inv.AdjustStock).
		GET("/:id/stock-history", inv.History)
}

func supplierRoutes(h *handler.SupplierHandler) *DomainGroup {
	manage := middleware.Require(middleware.ManageCatalog)
	return NewDomainGroup("partner", "/suppliers").
		GET("", h.List).
		GET("/:id", h.GetByID).
		GET("/:id/products", h.ListProducts).
		POST("", manage, h.Create).
		PUT("/:id", manage, h.Update).
		DELETE("/:id", manage, h.Delete)
}

func reportRoutes(h *handler.ReportHandler) *DomainGroup {
	return NewDomainGroup("report", "/reports").
		Use(middleware.Require(middleware.ViewReports)).
		GET("/dashboard", h.Dashboard).
		GET("/inventory.csv", h.InventoryCSV).
		GET("/suppliers.csv", h.SuppliersCSV)
}

// userRoutes mounts /me and the admin-only /users group at the API root
func userRoutes(h *handler.UserHandler) *DomainGroup {
	root := NewDomainGroup("identity", "").
		GET("/me", h.Me)
	root.Group("users", "/users").
		Use(middleware.Require(middleware.AdminOnly)).
		GET("", h.List).
		DELETE("/:id", h.Delete)
	return root
}
