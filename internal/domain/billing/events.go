package billing

import (
	"github.com/gestock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types for the billing domain
const (
	EventTypeBillingCreated       = "billing.created"
	EventTypeBillingValidated     = "billing.validated"
	EventTypePaymentRecorded      = "billing.payment_recorded"
	EventTypePaymentReversed      = "billing.payment_reversed"
	EventTypeCreditNoteCreated    = "billing.credit_note_created"
	EventTypeCreditNoteReconciled = "billing.credit_note_reconciled"
)

// BillingCreatedEvent is raised when a billing document is created
type BillingCreatedEvent struct {
	shared.BaseDomainEvent
	Code        string      `json:"code"`
	BillingType BillingType `json:"billing_type"`
}

// NewBillingCreatedEvent creates a billing-created event
func NewBillingCreatedEvent(b *Billing) *BillingCreatedEvent {
	return &BillingCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillingCreated, "Billing", b.ID),
		Code:            b.Code,
		BillingType:     b.BillingType,
	}
}

// BillingValidatedEvent is raised when a draft billing is validated
type BillingValidatedEvent struct {
	shared.BaseDomainEvent
	Code               string          `json:"code"`
	AmountIncludingVat decimal.Decimal `json:"amount_including_vat"`
}

// NewBillingValidatedEvent creates a billing-validated event
func NewBillingValidatedEvent(b *Billing) *BillingValidatedEvent {
	return &BillingValidatedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeBillingValidated, "Billing", b.ID),
		Code:               b.Code,
		AmountIncludingVat: b.AmountIncludingVat,
	}
}

// PaymentRecordedEvent is raised when a payment is added to a billing
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentCode string          `json:"payment_code"`
	Amount      decimal.Decimal `json:"amount"`
	Remaining   decimal.Decimal `json:"remaining"`
	Status      BillingStatus   `json:"status"`
}

// NewPaymentRecordedEvent creates a payment-recorded event
func NewPaymentRecordedEvent(b *Billing, p *BillingPayment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, "Billing", b.ID),
		PaymentCode:     p.Code,
		Amount:          p.Amount,
		Remaining:       b.RemainingPrice,
		Status:          b.Status,
	}
}

// PaymentReversedEvent is raised when a payment is removed from a billing
type PaymentReversedEvent struct {
	shared.BaseDomainEvent
	PaymentCode string          `json:"payment_code"`
	Amount      decimal.Decimal `json:"amount"`
	Remaining   decimal.Decimal `json:"remaining"`
	Status      BillingStatus   `json:"status"`
}

// NewPaymentReversedEvent creates a payment-reversed event
func NewPaymentReversedEvent(b *Billing, p *BillingPayment) *PaymentReversedEvent {
	return &PaymentReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentReversed, "Billing", b.ID),
		PaymentCode:     p.Code,
		Amount:          p.Amount,
		Remaining:       b.RemainingPrice,
		Status:          b.Status,
	}
}

// CreditNoteCreatedEvent is raised when a credit note is created
type CreditNoteCreatedEvent struct {
	shared.BaseDomainEvent
	Code       string    `json:"code"`
	ParentID   uuid.UUID `json:"parent_id"`
	ParentCode string    `json:"parent_code"`
	FullRefund bool      `json:"full_refund"`
}

// NewCreditNoteCreatedEvent creates a credit-note-created event
func NewCreditNoteCreatedEvent(credit, parent *Billing) *CreditNoteCreatedEvent {
	full := credit.IsFullRefund != nil && *credit.IsFullRefund
	return &CreditNoteCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditNoteCreated, "Billing", credit.ID),
		Code:            credit.Code,
		ParentID:        parent.ID,
		ParentCode:      parent.Code,
		FullRefund:      full,
	}
}

// CreditNoteReconciledEvent is raised when a credit note is applied to its parent
type CreditNoteReconciledEvent struct {
	shared.BaseDomainEvent
	Code         string        `json:"code"`
	ParentID     uuid.UUID     `json:"parent_id"`
	ParentStatus BillingStatus `json:"parent_status"`
}

// NewCreditNoteReconciledEvent creates a credit-note-reconciled event
func NewCreditNoteReconciledEvent(credit, parent *Billing) *CreditNoteReconciledEvent {
	return &CreditNoteReconciledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditNoteReconciled, "Billing", credit.ID),
		Code:            credit.Code,
		ParentID:        parent.ID,
		ParentStatus:    parent.Status,
	}
}
