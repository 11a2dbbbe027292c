package handler

import (
	"time"

	inventoryapp "github.com/gestock/backend/internal/application/inventory"
	"github.com/gestock/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// StockHandler handles stock and movement API endpoints
type StockHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *inventoryapp.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// List returns a paginated list of stock rows
func (h *StockHandler) List(c *gin.Context) {
	var filter inventoryapp.StockListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	items, total, err := h.stockService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// GetByID returns one stock row
func (h *StockHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.stockService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByProductAndWarehouse returns the stock row of a product/warehouse pair
func (h *StockHandler) GetByProductAndWarehouse(c *gin.Context) {
	productID, ok := h.parseUUIDParam(c, "productId")
	if !ok {
		return
	}
	warehouseID, ok := h.parseUUIDParam(c, "warehouseId")
	if !ok {
		return
	}

	resp, err := h.stockService.GetByProductAndWarehouse(c.Request.Context(), productID, warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ApplyMovement applies a manual stock movement
func (h *StockHandler) ApplyMovement(c *gin.Context) {
	var req inventoryapp.ApplyMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.stockService.ApplyMovement(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Movements returns the movement history, newest first
func (h *StockHandler) Movements(c *gin.Context) {
	var filter inventoryapp.MovementListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	items, total, err := h.stockService.Movements(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// MovementsByStock returns the movement history of one stock row
func (h *StockHandler) MovementsByStock(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var filter inventoryapp.MovementListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	items, err := h.stockService.MovementsByStock(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// WeightedAverageCost returns the derived purchase cost of a pair. The
// optional as_of query parameter (RFC 3339) bounds the movements considered.
func (h *StockHandler) WeightedAverageCost(c *gin.Context) {
	productID, ok := h.parseUUIDParam(c, "productId")
	if !ok {
		return
	}
	warehouseID, ok := h.parseUUIDParam(c, "warehouseId")
	if !ok {
		return
	}

	asOf := time.Now().UTC()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.BadRequest(c, "Invalid as_of format, expected RFC 3339")
			return
		}
		asOf = parsed
	}

	resp, err := h.stockService.WeightedAverageCost(c.Request.Context(), productID, warehouseID, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
