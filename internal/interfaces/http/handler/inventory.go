package handler

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/stocker/backend/internal/application/catalog"
	inventoryapp "github.com/stocker/backend/internal/application/inventory"
	"github.com/stocker/backend/internal/domain/inventory"
	"github.com/stocker/backend/internal/interfaces/http/middleware"
)

// InventoryHandler handles stock adjustments and stock history
type InventoryHandler struct {
	BaseHandler
	adjustments *inventoryapp.StockAdjustmentService
	history     *inventoryapp.StockHistoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(
	adjustments *inventoryapp.StockAdjustmentService,
	history *inventoryapp.StockHistoryService,
) *InventoryHandler {
	return &InventoryHandler{adjustments: adjustments, history: history}
}

// AdjustStockRequest is the body of a stock adjustment. QuantityChange may
// be a JSON number or string; it is validated by the service so that
// non-numeric input is reported as invalid input.
// @Description Stock adjustment request
type AdjustStockRequest struct {
	QuantityChange json.RawMessage `json:"quantity_change" swaggertype:"string" example:"-3"`
	Note           string          `json:"note" binding:"max=500" example:"damaged in transit"`
}

// LedgerEntryResponse is a stock history entry in API responses
// @Description Stock history entry
type LedgerEntryResponse struct {
	ID            uuid.UUID  `json:"id"`
	ProductID     uuid.UUID  `json:"product_id"`
	ActingUserID  *uuid.UUID `json:"acting_user_id"`
	Kind          string     `json:"kind" example:"ADJUSTMENT"`
	Delta         int        `json:"delta" example:"-3"`
	QuantityAfter int        `json:"quantity_after" example:"7"`
	Note          string     `json:"note"`
	Sequence      int64      `json:"sequence"`
	CreatedAt     time.Time  `json:"created_at"`
}

// AdjustStockResponse describes a committed stock adjustment. Warning is set
// when the low-stock notification could not be delivered; the adjustment
// stands regardless.
// @Description Stock adjustment result
type AdjustStockResponse struct {
	Product          catalogapp.ProductResponse `json:"product"`
	Entry            LedgerEntryResponse        `json:"entry"`
	OldQuantity      int                        `json:"old_quantity"`
	NewQuantity      int                        `json:"new_quantity"`
	LowStockNotified bool                       `json:"low_stock_notified"`
	Warning          string                     `json:"warning,omitempty"`
}

// ToLedgerEntryResponse converts a ledger entry
func ToLedgerEntryResponse(e *inventory.StockLedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:            e.ID,
		ProductID:     e.ProductID,
		ActingUserID:  e.ActingUserID,
		Kind:          string(e.Kind),
		Delta:         e.Delta,
		QuantityAfter: e.QuantityAfter,
		Note:          e.Note,
		Sequence:      e.Sequence,
		CreatedAt:     e.CreatedAt,
	}
}

// AdjustStock godoc
// @Summary      Adjust stock
// @Description  Applies a signed quantity change and records it in the stock history.
// @Description  Crossing into low stock notifies the operator; a failed notification is returned as a warning.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body AdjustStockRequest true "Adjustment"
// @Success      201 {object} dto.Response{data=AdjustStockResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id}/stock-adjustments [post]
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.adjustments.AdjustStock(c.Request.Context(), inventoryapp.AdjustStockInput{
		ProductID:    id,
		Delta:        rawQuantity(req.QuantityChange),
		ActingUserID: middleware.CurrentUserID(c),
		Note:         req.Note,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := AdjustStockResponse{
		Product:          catalogapp.ToProductResponse(result.Product),
		Entry:            ToLedgerEntryResponse(result.Entry),
		OldQuantity:      result.OldQuantity,
		NewQuantity:      result.NewQuantity,
		LowStockNotified: result.Notified,
	}
	if result.NotificationErr != nil {
		resp.Warning = "stock updated, but the low-stock notification could not be sent"
	}
	h.Created(c, resp)
}

// rawQuantity returns the quantity as text: JSON strings are unquoted and
// any other literal (number, null, object) is passed through verbatim
func rawQuantity(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	var s string
	if len(raw) > 0 && raw[0] == '"' && json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}

// History godoc
// @Summary      Stock history
// @Description  Stock history of a product, most recent first
// @Tags         inventory
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]LedgerEntryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id}/stock-history [get]
func (h *InventoryHandler) History(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	entries, err := h.history.ListByProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]LedgerEntryResponse, len(entries))
	for i := range entries {
		out[i] = ToLedgerEntryResponse(&entries[i])
	}
	h.Success(c, out)
}
