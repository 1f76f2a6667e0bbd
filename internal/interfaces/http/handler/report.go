package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	reportapp "github.com/stocker/backend/internal/application/report"
)

// ReportHandler serves the dashboard and CSV exports
type ReportHandler struct {
	BaseHandler
	dashboard *reportapp.DashboardService
	exports   *reportapp.ExportService
	now       func() time.Time
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(dashboard *reportapp.DashboardService, exports *reportapp.ExportService) *ReportHandler {
	return &ReportHandler{dashboard: dashboard, exports: exports, now: time.Now}
}

// Dashboard godoc
// @Summary      Dashboard summary
// @Description  Catalog totals, low/out-of-stock counts, stock value and the most recent stock changes
// @Tags         reports
// @Produce      json
// @Success      200 {object} dto.Response{data=report.DashboardSummary}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// InventoryCSV godoc
// @Summary      Export inventory
// @Description  One row per product: name, category, quantity, price, low-stock flag
// @Tags         reports
// @Produce      text/csv
// @Success      200 {file} file
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports/inventory.csv [get]
func (h *ReportHandler) InventoryCSV(c *gin.Context) {
	h.csv(c, reportapp.ExportInventory, h.exports.InventoryCSV)
}

// SuppliersCSV godoc
// @Summary      Export suppliers
// @Description  One row per supplier with the names of the products it supplies
// @Tags         reports
// @Produce      text/csv
// @Success      200 {file} file
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports/suppliers.csv [get]
func (h *ReportHandler) SuppliersCSV(c *gin.Context) {
	h.csv(c, reportapp.ExportSuppliers, h.exports.SuppliersCSV)
}

// csv renders into a buffer first so a failed export still gets a JSON
// error instead of a truncated file
func (h *ReportHandler) csv(c *gin.Context, kind string, render func(context.Context, io.Writer) error) {
	var buf bytes.Buffer
	if err := render(c.Request.Context(), &buf); err != nil {
		h.HandleError(c, err)
		return
	}

	filename := kind + "-" + h.now().UTC().Format("20060102") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
