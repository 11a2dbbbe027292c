package billing

import (
	"time"

	"github.com/gestock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillingType represents the kind of billing document
type BillingType string

const (
	BillingTypeSaleInvoice   BillingType = "SI" // customer sale invoice
	BillingTypeDeliveryNote  BillingType = "DI" // delivery-backed invoice
	BillingTypeCreditInvoice BillingType = "CI" // credit note (avoir)
)

// IsValid checks if the billing type is valid
func (t BillingType) IsValid() bool {
	switch t {
	case BillingTypeSaleInvoice, BillingTypeDeliveryNote, BillingTypeCreditInvoice:
		return true
	}
	return false
}

// String returns the string representation
func (t BillingType) String() string {
	return string(t)
}

// BillingStatus represents the lifecycle state of a billing document
type BillingStatus string

const (
	BillingStatusDraft         BillingStatus = "DRAFT"
	BillingStatusValidate      BillingStatus = "VALIDATE"
	BillingStatusBegin         BillingStatus = "BEGIN"
	BillingStatusPaidPartially BillingStatus = "PAID_PARTIALLY"
	BillingStatusPaid          BillingStatus = "PAID"
	BillingStatusAbandoned     BillingStatus = "ABANDONED"
	BillingStatusCreditNote    BillingStatus = "CREDIT_NOTE"
	BillingStatusCreditBack    BillingStatus = "CREDIT_BACK"
)

// IsValid checks if the status is valid
func (s BillingStatus) IsValid() bool {
	switch s {
	case BillingStatusDraft, BillingStatusValidate, BillingStatusBegin,
		BillingStatusPaidPartially, BillingStatusPaid, BillingStatusAbandoned,
		BillingStatusCreditNote, BillingStatusCreditBack:
		return true
	}
	return false
}

// String returns the string representation
func (s BillingStatus) String() string {
	return string(s)
}

// billingTransitions is the complete state machine. A status missing from the
// map is terminal.
var billingTransitions = map[BillingStatus][]BillingStatus{
	BillingStatusDraft:         {BillingStatusValidate, BillingStatusCreditBack},
	BillingStatusValidate:      {BillingStatusBegin, BillingStatusPaid, BillingStatusAbandoned, BillingStatusPaidPartially, BillingStatusCreditNote},
	BillingStatusBegin:         {BillingStatusPaidPartially, BillingStatusPaid, BillingStatusValidate, BillingStatusCreditNote},
	BillingStatusPaidPartially: {BillingStatusBegin, BillingStatusPaid, BillingStatusValidate, BillingStatusCreditNote},
	BillingStatusAbandoned:     {BillingStatusValidate},
	BillingStatusCreditNote:    {BillingStatusPaid},
	BillingStatusPaid:          {BillingStatusCreditNote},
}

// CanTransitionTo checks if a transition to the target status is allowed
func (s BillingStatus) CanTransitionTo(target BillingStatus) bool {
	for _, allowed := range billingTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsPayable returns true when payments may be attached in this status
func (s BillingStatus) IsPayable() bool {
	return s == BillingStatusValidate || s == BillingStatusBegin || s == BillingStatusPaidPartially
}

// IsEditable returns true when line items may still be changed
func (s BillingStatus) IsEditable() bool {
	return s == BillingStatusDraft || s == BillingStatusValidate ||
		s == BillingStatusBegin || s == BillingStatusPaidPartially
}

// Item types carried on billing lines. Service lines never touch stock.
const (
	ItemTypeProduct = "PRODUCT"
	ItemTypeService = "SERVICE"
)

// BillingItem is a line on a billing document. The unit price, discount and
// VAT rate are frozen at the time the line is written; amounts are derived.
type BillingItem struct {
	shared.BaseEntity
	BillingID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID          uuid.UUID       `gorm:"type:uuid;not null"`
	WarehouseID        *uuid.UUID      `gorm:"type:uuid"`
	ItemType           string          `gorm:"type:varchar(20);not null;default:'PRODUCT'"`
	Label              string          `gorm:"type:varchar(255);not null"`
	UnitPrice          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Quantity           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountPercent    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	VatRate            decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	AmountExcludingVat decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	VatAmount          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	AmountIncludingVat decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the database table name
func (BillingItem) TableName() string {
	return "billing_items"
}

// IsProduct returns true for lines that move stock on validation
func (i *BillingItem) IsProduct() bool {
	return i.ItemType == ItemTypeProduct
}

// Billing is the billing document aggregate root. Items and payments are
// owned children and only ever change through the aggregate's methods, which
// keep the totals and the settlement status consistent.
type Billing struct {
	shared.BaseAggregateRoot
	Code            string        `gorm:"type:varchar(50);not null;uniqueIndex"`
	BillingType     BillingType   `gorm:"type:varchar(10);not null"`
	Status          BillingStatus `gorm:"type:varchar(20);not null;index"`
	ThirdPartyID    uuid.UUID     `gorm:"type:uuid;not null;index"`
	BillingDate     time.Time     `gorm:"not null"`
	Description     string        `gorm:"type:text"`
	ParentBillingID *uuid.UUID    `gorm:"type:uuid;index"`
	IsFullRefund    *bool         `gorm:""`

	AmountExcludingVat decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	VatAmount          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AmountIncludingVat decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AllocatedPrice     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	RemainingPrice     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	Items    []BillingItem    `gorm:"foreignKey:BillingID;constraint:OnDelete:CASCADE"`
	Payments []BillingPayment `gorm:"foreignKey:BillingID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name
func (Billing) TableName() string {
	return "billings"
}

// NewBilling creates a new billing document in DRAFT status
func NewBilling(code string, billingType BillingType, thirdPartyID uuid.UUID, billingDate time.Time, description string) (*Billing, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Billing code is required")
	}
	if !billingType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid billing type: "+string(billingType))
	}
	if thirdPartyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Third party ID is required")
	}
	if billingDate.IsZero() {
		billingDate = time.Now()
	}

	b := &Billing{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		Code:               code,
		BillingType:        billingType,
		Status:             BillingStatusDraft,
		ThirdPartyID:       thirdPartyID,
		BillingDate:        billingDate,
		Description:        description,
		AmountExcludingVat: decimal.Zero,
		VatAmount:          decimal.Zero,
		AmountIncludingVat: decimal.Zero,
		AllocatedPrice:     decimal.Zero,
		RemainingPrice:     decimal.Zero,
		Items:              make([]BillingItem, 0),
		Payments:           make([]BillingPayment, 0),
	}

	b.AddDomainEvent(NewBillingCreatedEvent(b))
	return b, nil
}

// IsCreditNote returns true for credit note documents
func (b *Billing) IsCreditNote() bool {
	return b.BillingType == BillingTypeCreditInvoice
}

// AddItem appends a line and recomputes the totals
func (b *Billing) AddItem(productID uuid.UUID, warehouseID *uuid.UUID, itemType, label string, unitPrice, quantity, discountPercent, vatRate decimal.Decimal) (*BillingItem, error) {
	if !b.Status.IsEditable() {
		return nil, shared.NewDomainError("ILLEGAL_STATE_TRANSITION",
			"Cannot modify items of a billing in status "+string(b.Status))
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product ID is required")
	}
	if itemType != ItemTypeProduct && itemType != ItemTypeService {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid item type: "+itemType)
	}
	if itemType == ItemTypeProduct && (warehouseID == nil || *warehouseID == uuid.Nil) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Warehouse is required for product lines")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
	}

	amounts, err := ComputeLineTotal(unitPrice, quantity, discountPercent, vatRate)
	if err != nil {
		return nil, err
	}

	item := BillingItem{
		BaseEntity:         shared.NewBaseEntity(),
		BillingID:          b.ID,
		ProductID:          productID,
		WarehouseID:        warehouseID,
		ItemType:           itemType,
		Label:              label,
		UnitPrice:          unitPrice,
		Quantity:           quantity,
		DiscountPercent:    discountPercent,
		VatRate:            vatRate,
		AmountExcludingVat: amounts.ExcludingVat.Round(2),
		VatAmount:          amounts.VatAmount.Round(2),
		AmountIncludingVat: amounts.IncludingVat.Round(2),
	}
	b.Items = append(b.Items, item)
	b.recalculateTotals()

	return &b.Items[len(b.Items)-1], nil
}

// UpdateItem changes the mutable fields of a line and recomputes the totals
func (b *Billing) UpdateItem(itemID uuid.UUID, label string, unitPrice, quantity, discountPercent, vatRate decimal.Decimal) error {
	if !b.Status.IsEditable() {
		return shared.NewDomainError("ILLEGAL_STATE_TRANSITION",
			"Cannot modify items of a billing in status "+string(b.Status))
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
	}

	for i := range b.Items {
		if b.Items[i].ID != itemID {
			continue
		}
		amounts, err := ComputeLineTotal(unitPrice, quantity, discountPercent, vatRate)
		if err != nil {
			return err
		}
		b.Items[i].Label = label
		b.Items[i].UnitPrice = unitPrice
		b.Items[i].Quantity = quantity
		b.Items[i].DiscountPercent = discountPercent
		b.Items[i].VatRate = vatRate
		b.Items[i].AmountExcludingVat = amounts.ExcludingVat.Round(2)
		b.Items[i].VatAmount = amounts.VatAmount.Round(2)
		b.Items[i].AmountIncludingVat = amounts.IncludingVat.Round(2)
		b.Items[i].UpdatedAt = time.Now()
		b.recalculateTotals()
		return nil
	}
	return shared.NewDomainError("NOT_FOUND", "Billing item not found")
}

// RemoveItem deletes a line and recomputes the totals
func (b *Billing) RemoveItem(itemID uuid.UUID) error {
	if !b.Status.IsEditable() {
		return shared.NewDomainError("ILLEGAL_STATE_TRANSITION",
			"Cannot modify items of a billing in status "+string(b.Status))
	}
	for i := range b.Items {
		if b.Items[i].ID == itemID {
			b.Items = append(b.Items[:i], b.Items[i+1:]...)
			b.recalculateTotals()
			return nil
		}
	}
	return shared.NewDomainError("NOT_FOUND", "Billing item not found")
}

// FindItem returns the line with the given ID, or nil
func (b *Billing) FindItem(itemID uuid.UUID) *BillingItem {
	for i := range b.Items {
		if b.Items[i].ID == itemID {
			return &b.Items[i]
		}
	}
	return nil
}

// Validate moves a draft document to VALIDATE. Product lines are checked by
// the application layer against stock before this is called.
func (b *Billing) Validate() error {
	if b.Status != BillingStatusDraft {
		return shared.NewDomainError("ILLEGAL_STATE_TRANSITION",
			"Only draft billings can be validated, current status is "+string(b.Status))
	}
	if len(b.Items) == 0 {
		return shared.NewDomainError("INVALID_STATE", "Cannot validate a billing without items")
	}
	b.Status = BillingStatusValidate
	b.UpdatedAt = time.Now()
	b.AddDomainEvent(NewBillingValidatedEvent(b))
	return nil
}

// manualTransitions lists the status changes that may be requested directly
// over the API. Everything else happens as a side effect of payments,
// credits or validation.
var manualTransitions = map[BillingStatus][]BillingStatus{
	BillingStatusValidate:      {BillingStatusAbandoned},
	BillingStatusAbandoned:     {BillingStatusValidate},
	BillingStatusBegin:         {BillingStatusPaidPartially},
	BillingStatusPaidPartially: {BillingStatusBegin},
}

// SetStatus applies a manually requested status change
func (b *Billing) SetStatus(target BillingStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "Invalid billing status: "+string(target))
	}
	allowed := false
	for _, t := range manualTransitions[b.Status] {
		if t == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return shared.NewDomainError("ILLEGAL_STATE_TRANSITION",
			"Transition from "+string(b.Status)+" to "+string(target)+" is not allowed")
	}
	b.Status = target
	b.UpdatedAt = time.Now()
	return nil
}

// transitionTo applies an internally driven status change, still enforcing
// the full transition table.
func (b *Billing) transitionTo(target BillingStatus) error {
	if b.Status == target {
		return nil
	}
	if !b.Status.CanTransitionTo(target) {
		return shared.NewDomainError("ILLEGAL_STATE_TRANSITION",
			"Transition from "+string(b.Status)+" to "+string(target)+" is not allowed")
	}
	b.Status = target
	return nil
}

// recalculateTotals rebuilds all derived amounts from the current lines and
// payments. Totals are never adjusted incrementally.
func (b *Billing) recalculateTotals() {
	excl := decimal.Zero
	vat := decimal.Zero
	ttc := decimal.Zero
	for i := range b.Items {
		excl = excl.Add(b.Items[i].AmountExcludingVat)
		vat = vat.Add(b.Items[i].VatAmount)
		ttc = ttc.Add(b.Items[i].AmountIncludingVat)
	}
	b.AmountExcludingVat = excl
	b.VatAmount = vat
	b.AmountIncludingVat = ttc

	allocated := decimal.Zero
	for i := range b.Payments {
		allocated = allocated.Add(b.Payments[i].Amount)
	}
	b.AllocatedPrice = allocated

	remaining := ttc.Sub(allocated)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	b.RemainingPrice = remaining
	b.UpdatedAt = time.Now()

	b.refreshSettlementStatus()
}

// refreshSettlementStatus realigns the status with the payment coverage.
// Draft documents and terminal credit states are left alone.
func (b *Billing) refreshSettlementStatus() {
	switch b.Status {
	case BillingStatusDraft, BillingStatusAbandoned, BillingStatusCreditNote, BillingStatusCreditBack:
		return
	}

	switch {
	case b.AllocatedPrice.IsZero():
		b.Status = BillingStatusValidate
	case b.AllocatedPrice.GreaterThanOrEqual(b.AmountIncludingVat) && b.AmountIncludingVat.IsPositive():
		b.Status = BillingStatusPaid
	default:
		if b.Status != BillingStatusPaidPartially {
			b.Status = BillingStatusBegin
		}
	}
}
