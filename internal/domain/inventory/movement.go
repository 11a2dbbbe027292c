package inventory

import (
	"time"

	"github.com/gestock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType represents the type of stock movement
type MovementType string

const (
	MovementTypeEnter      MovementType = "ENTER"      // manual stock entry
	MovementTypeOut        MovementType = "OUT"        // manual stock exit (billing validation)
	MovementTypeReception  MovementType = "RECEPTION"  // inbound from a supplier order
	MovementTypeShipping   MovementType = "SHIPPING"   // outbound to a customer delivery
	MovementTypeCorrection MovementType = "CORRECTION" // absolute physical adjustment
)

// IsValid checks if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeEnter, MovementTypeOut, MovementTypeReception, MovementTypeShipping, MovementTypeCorrection:
		return true
	}
	return false
}

// String returns the string representation
func (t MovementType) String() string {
	return string(t)
}

// IsInbound returns true for movements that increase stock
func (t MovementType) IsInbound() bool {
	return t == MovementTypeEnter || t == MovementTypeReception
}

// IsOutbound returns true for movements that decrease stock
func (t MovementType) IsOutbound() bool {
	return t == MovementTypeOut || t == MovementTypeShipping
}

// SignedQuantity returns the quantity with the sign implied by the movement type.
// Corrections are absolute targets, not deltas, and keep their raw value.
func (t MovementType) SignedQuantity(quantity decimal.Decimal) decimal.Decimal {
	if t.IsOutbound() {
		return quantity.Neg()
	}
	return quantity
}

// Movement is an immutable audit record of a stock mutation.
// Rows are append-only: they are never updated or deleted once written.
type Movement struct {
	shared.BaseEntity
	StockID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_movements_product_warehouse"`
	WarehouseID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_movements_product_warehouse"`
	Code           string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	MovementType   MovementType    `gorm:"type:varchar(20);not null;index"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PhysicalBefore decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PhysicalAfter  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	VirtualBefore  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	VirtualAfter   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	OccurredAt     time.Time       `gorm:"not null;index"`
}

// TableName returns the database table name
func (Movement) TableName() string {
	return "movements"
}
