package catalog

import (
	"strings"
	"time"

	"github.com/gestock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductType distinguishes stock-tracked products from services
type ProductType string

const (
	ProductTypeProduct ProductType = "PRODUCT"
	ProductTypeService ProductType = "SERVICE"
)

// IsValid checks if the product type is valid
func (t ProductType) IsValid() bool {
	return t == ProductTypeProduct || t == ProductTypeService
}

// String returns the string representation
func (t ProductType) String() string {
	return string(t)
}

// Product is the catalog aggregate root.
// Only PRODUCT-typed entries participate in the stock ledger; services never do.
type Product struct {
	shared.BaseAggregateRoot
	Reference       string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name            string          `gorm:"type:varchar(200);not null"`
	ProductType     ProductType     `gorm:"type:varchar(20);not null;default:'PRODUCT'"`
	SellingPrice    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	LimitStockAlert decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OptimalStock    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	WarehouseID     *uuid.UUID      `gorm:"type:uuid;index"`
	ExpiredAt       *time.Time
}

// TableName returns the database table name
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product with validation
func NewProduct(reference, name string, productType ProductType, sellingPrice decimal.Decimal) (*Product, error) {
	reference = strings.TrimSpace(reference)
	name = strings.TrimSpace(name)

	if reference == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product reference cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product name cannot be empty")
	}
	if !productType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid product type: "+string(productType))
	}
	if sellingPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Selling price cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Reference:         reference,
		Name:              name,
		ProductType:       productType,
		SellingPrice:      sellingPrice,
	}, nil
}

// IsService returns true when the product is a service and carries no stock
func (p *Product) IsService() bool {
	return p.ProductType == ProductTypeService
}

// UpdateName changes the product name
func (p *Product) UpdateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "Product name cannot be empty")
	}
	p.Name = name
	p.UpdatedAt = time.Now()
	return nil
}

// UpdateSellingPrice changes the selling price
func (p *Product) UpdateSellingPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Selling price cannot be negative")
	}
	p.SellingPrice = price
	p.UpdatedAt = time.Now()
	return nil
}

// UpdateStockThresholds sets the alert and optimal stock levels
func (p *Product) UpdateStockThresholds(limitAlert, optimal decimal.Decimal) error {
	if limitAlert.IsNegative() || optimal.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Stock thresholds cannot be negative")
	}
	p.LimitStockAlert = limitAlert
	p.OptimalStock = optimal
	p.UpdatedAt = time.Now()
	return nil
}

// AssignWarehouse sets the default warehouse for the product
func (p *Product) AssignWarehouse(warehouseID uuid.UUID) {
	p.WarehouseID = &warehouseID
	p.UpdatedAt = time.Now()
}

// SetExpiration sets the product expiration date
func (p *Product) SetExpiration(expiredAt *time.Time) {
	p.ExpiredAt = expiredAt
	p.UpdatedAt = time.Now()
}
