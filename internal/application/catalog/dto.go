package catalog

import (
	"time"

	"github.com/gestock/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID              uuid.UUID       `json:"id"`
	Reference       string          `json:"reference"`
	Name            string          `json:"name"`
	ProductType     string          `json:"product_type"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	LimitStockAlert decimal.Decimal `json:"limit_stock_alert"`
	OptimalStock    decimal.Decimal `json:"optimal_stock"`
	WarehouseID     *uuid.UUID      `json:"warehouse_id,omitempty"`
	ExpiredAt       *time.Time      `json:"expired_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// ToProductResponse converts a product aggregate to a response
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:              p.ID,
		Reference:       p.Reference,
		Name:            p.Name,
		ProductType:     p.ProductType.String(),
		SellingPrice:    p.SellingPrice,
		LimitStockAlert: p.LimitStockAlert,
		OptimalStock:    p.OptimalStock,
		WarehouseID:     p.WarehouseID,
		ExpiredAt:       p.ExpiredAt,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
		Version:         p.Version,
	}
}

// ToProductResponses converts a slice of products to responses
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Name            string          `json:"name" binding:"required,min=1,max=255"`
	ProductType     string          `json:"product_type" binding:"required,oneof=PRODUCT SERVICE"`
	SellingPrice    decimal.Decimal `json:"selling_price" binding:"required"`
	LimitStockAlert decimal.Decimal `json:"limit_stock_alert"`
	OptimalStock    decimal.Decimal `json:"optimal_stock"`
	WarehouseID     *uuid.UUID      `json:"warehouse_id"`
	ExpiredAt       *time.Time      `json:"expired_at"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name            *string          `json:"name" binding:"omitempty,min=1,max=255"`
	SellingPrice    *decimal.Decimal `json:"selling_price"`
	LimitStockAlert *decimal.Decimal `json:"limit_stock_alert"`
	OptimalStock    *decimal.Decimal `json:"optimal_stock"`
	WarehouseID     *uuid.UUID       `json:"warehouse_id"`
	ExpiredAt       *time.Time       `json:"expired_at"`
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	Search      string `form:"search"`
	ProductType string `form:"product_type" binding:"omitempty,oneof=PRODUCT SERVICE"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string `form:"order_by"`
	OrderDir    string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}
