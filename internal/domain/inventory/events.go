package inventory

import (
	"github.com/gestock/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for the inventory domain
const (
	EventTypeStockMovementRecorded = "inventory.stock_movement_recorded"
)

// StockMovementRecordedEvent is raised whenever a movement is applied to a stock row
type StockMovementRecordedEvent struct {
	shared.BaseDomainEvent
	MovementCode   string          `json:"movement_code"`
	MovementType   MovementType    `json:"movement_type"`
	Quantity       decimal.Decimal `json:"quantity"`
	PhysicalBefore decimal.Decimal `json:"physical_before"`
	PhysicalAfter  decimal.Decimal `json:"physical_after"`
}

// NewStockMovementRecordedEvent creates a movement-recorded event
func NewStockMovementRecordedEvent(stock *Stock, movement *Movement) *StockMovementRecordedEvent {
	return &StockMovementRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockMovementRecorded, "Stock", stock.ID),
		MovementCode:    movement.Code,
		MovementType:    movement.MovementType,
		Quantity:        movement.Quantity,
		PhysicalBefore:  movement.PhysicalBefore,
		PhysicalAfter:   movement.PhysicalAfter,
	}
}
