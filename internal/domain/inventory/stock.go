package inventory

import (
	"fmt"
	"time"

	"github.com/gestock/backend/internal/domain/shared"
	"github.com/gestock/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stock is the per-(product, warehouse) ledger aggregate.
// PhysicalQuantity is what is on the shelf; VirtualQuantity additionally
// reflects planned receptions and shipments not yet executed.
type Stock struct {
	shared.BaseAggregateRoot
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stocks_product_warehouse"`
	WarehouseID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stocks_product_warehouse"`
	PhysicalQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	VirtualQuantity   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPurchasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the database table name
func (Stock) TableName() string {
	return "stocks"
}

// NewStock creates an empty stock row for a product in a warehouse
func NewStock(productID, warehouseID uuid.UUID) (*Stock, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product ID is required")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Warehouse ID is required")
	}
	return &Stock{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		WarehouseID:       warehouseID,
		PhysicalQuantity:  decimal.Zero,
		VirtualQuantity:   decimal.Zero,
		UnitPurchasePrice: decimal.Zero,
	}, nil
}

// HasAvailable returns true when the physical quantity covers the requested amount
func (s *Stock) HasAvailable(quantity decimal.Decimal) bool {
	return s.PhysicalQuantity.GreaterThanOrEqual(quantity)
}

// Valuation returns physical quantity priced at the row's latest purchase cost
func (s *Stock) Valuation() valueobject.Money {
	return valueobject.NewMoneyEUR(s.PhysicalQuantity.Mul(s.UnitPurchasePrice).Round(2))
}

// Apply mutates the stock according to the movement type and returns the
// immutable Movement record capturing before/after balances. The stock and
// the returned movement must be persisted in the same transaction.
func (s *Stock) Apply(code string, movementType MovementType, quantity, unitPrice decimal.Decimal, occurredAt time.Time) (*Movement, error) {
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid movement type: "+string(movementType))
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Movement quantity cannot be negative")
	}
	if !movementType.IsInbound() && !unitPrice.IsZero() && unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unit price cannot be negative")
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	physicalBefore := s.PhysicalQuantity
	virtualBefore := s.VirtualQuantity

	switch {
	case movementType.IsInbound():
		if quantity.IsZero() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Inbound quantity must be positive")
		}
		s.PhysicalQuantity = s.PhysicalQuantity.Add(quantity)
		s.VirtualQuantity = s.VirtualQuantity.Add(quantity)
		if unitPrice.IsPositive() {
			s.UnitPurchasePrice = unitPrice
		}

	case movementType.IsOutbound():
		if quantity.IsZero() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Outbound quantity must be positive")
		}
		if s.PhysicalQuantity.LessThan(quantity) {
			return nil, shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("Insufficient stock: %s available, %s requested",
					s.PhysicalQuantity.String(), quantity.String()))
		}
		s.PhysicalQuantity = s.PhysicalQuantity.Sub(quantity)
		s.VirtualQuantity = s.VirtualQuantity.Sub(quantity)

	case movementType == MovementTypeCorrection:
		// Corrections set the physical quantity absolutely and leave the
		// virtual quantity untouched.
		s.PhysicalQuantity = quantity
	}

	s.UpdatedAt = time.Now()

	movement := &Movement{
		BaseEntity:     shared.NewBaseEntity(),
		StockID:        s.ID,
		ProductID:      s.ProductID,
		WarehouseID:    s.WarehouseID,
		Code:           code,
		MovementType:   movementType,
		Quantity:       quantity,
		UnitPrice:      unitPrice,
		Amount:         quantity.Mul(unitPrice).Round(2),
		PhysicalBefore: physicalBefore,
		PhysicalAfter:  s.PhysicalQuantity,
		VirtualBefore:  virtualBefore,
		VirtualAfter:   s.VirtualQuantity,
		OccurredAt:     occurredAt,
	}

	s.AddDomainEvent(NewStockMovementRecordedEvent(s, movement))

	return movement, nil
}
