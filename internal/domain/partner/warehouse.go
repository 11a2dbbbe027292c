package partner

import (
	"strings"
	"time"

	"github.com/gestock/backend/internal/domain/shared"
)

// Warehouse is a physical storage location for stock
type Warehouse struct {
	shared.BaseAggregateRoot
	Code    string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name    string `gorm:"type:varchar(200);not null"`
	Address string `gorm:"type:varchar(500)"`
}

// TableName returns the database table name
func (Warehouse) TableName() string {
	return "warehouses"
}

// NewWarehouse creates a new warehouse with validation
func NewWarehouse(code, name string) (*Warehouse, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)

	if code == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Warehouse code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Warehouse name cannot be empty")
	}

	return &Warehouse{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
	}, nil
}

// Rename changes the warehouse name
func (w *Warehouse) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "Warehouse name cannot be empty")
	}
	w.Name = name
	w.UpdatedAt = time.Now()
	return nil
}

// UpdateAddress changes the warehouse address
func (w *Warehouse) UpdateAddress(address string) {
	w.Address = strings.TrimSpace(address)
	w.UpdatedAt = time.Now()
}
