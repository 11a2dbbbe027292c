package inventory

import (
	"time"

	"github.com/gestock/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockResponse represents a stock row in API responses
type StockResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	WarehouseID       uuid.UUID       `json:"warehouse_id"`
	PhysicalQuantity  decimal.Decimal `json:"physical_quantity"`
	VirtualQuantity   decimal.Decimal `json:"virtual_quantity"`
	UnitPurchasePrice decimal.Decimal `json:"unit_purchase_price"`
	ValuationAmount   decimal.Decimal `json:"valuation_amount"`
	ValuationCurrency string          `json:"valuation_currency"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// ToStockResponse converts a stock aggregate to a response
func ToStockResponse(s *inventory.Stock) StockResponse {
	valuation := s.Valuation()
	return StockResponse{
		ID:                s.ID,
		ProductID:         s.ProductID,
		WarehouseID:       s.WarehouseID,
		PhysicalQuantity:  s.PhysicalQuantity,
		VirtualQuantity:   s.VirtualQuantity,
		UnitPurchasePrice: s.UnitPurchasePrice,
		ValuationAmount:   valuation.Amount(),
		ValuationCurrency: string(valuation.Currency()),
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
		Version:           s.Version,
	}
}

// ToStockResponses converts a slice of stocks to responses
func ToStockResponses(stocks []inventory.Stock) []StockResponse {
	out := make([]StockResponse, len(stocks))
	for i := range stocks {
		out[i] = ToStockResponse(&stocks[i])
	}
	return out
}

// MovementResponse represents a movement record in API responses
type MovementResponse struct {
	ID             uuid.UUID       `json:"id"`
	StockID        uuid.UUID       `json:"stock_id"`
	ProductID      uuid.UUID       `json:"product_id"`
	WarehouseID    uuid.UUID       `json:"warehouse_id"`
	Code           string          `json:"code"`
	MovementType   string          `json:"movement_type"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Amount         decimal.Decimal `json:"amount"`
	PhysicalBefore decimal.Decimal `json:"physical_before"`
	PhysicalAfter  decimal.Decimal `json:"physical_after"`
	VirtualBefore  decimal.Decimal `json:"virtual_before"`
	VirtualAfter   decimal.Decimal `json:"virtual_after"`
	OccurredAt     time.Time       `json:"occurred_at"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ToMovementResponse converts a movement record to a response
func ToMovementResponse(m *inventory.Movement) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		StockID:        m.StockID,
		ProductID:      m.ProductID,
		WarehouseID:    m.WarehouseID,
		Code:           m.Code,
		MovementType:   m.MovementType.String(),
		Quantity:       m.Quantity,
		UnitPrice:      m.UnitPrice,
		Amount:         m.Amount,
		PhysicalBefore: m.PhysicalBefore,
		PhysicalAfter:  m.PhysicalAfter,
		VirtualBefore:  m.VirtualBefore,
		VirtualAfter:   m.VirtualAfter,
		OccurredAt:     m.OccurredAt,
		CreatedAt:      m.CreatedAt,
	}
}

// ToMovementResponses converts a slice of movements to responses
func ToMovementResponses(movements []inventory.Movement) []MovementResponse {
	out := make([]MovementResponse, len(movements))
	for i := range movements {
		out[i] = ToMovementResponse(&movements[i])
	}
	return out
}

// ApplyMovementRequest represents a request to apply a stock movement
type ApplyMovementRequest struct {
	ProductID    uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID  uuid.UUID       `json:"warehouse_id" binding:"required"`
	MovementType string          `json:"movement_type" binding:"required,oneof=ENTER OUT RECEPTION SHIPPING CORRECTION"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	OccurredAt   *time.Time      `json:"occurred_at"`
}

// StockListFilter represents filter options for the stock list
type StockListFilter struct {
	WarehouseID *uuid.UUID `form:"warehouse_id"`
	ProductID   *uuid.UUID `form:"product_id"`
	BelowAlert  *bool      `form:"below_alert"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// MovementListFilter represents filter options for the movement list
type MovementListFilter struct {
	ProductID    *uuid.UUID `form:"product_id"`
	WarehouseID  *uuid.UUID `form:"warehouse_id"`
	MovementType string     `form:"movement_type" binding:"omitempty,oneof=ENTER OUT RECEPTION SHIPPING CORRECTION"`
	Page         int        `form:"page" binding:"omitempty,min=1"`
	PageSize     int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy      string     `form:"order_by"`
	OrderDir     string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// WeightedAverageCostResponse represents the derived purchase cost of a pair
type WeightedAverageCostResponse struct {
	ProductID           uuid.UUID       `json:"product_id"`
	WarehouseID         uuid.UUID       `json:"warehouse_id"`
	AsOf                time.Time       `json:"as_of"`
	WeightedAverageCost decimal.Decimal `json:"weighted_average_cost"`
}
