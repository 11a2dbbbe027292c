package billing

import (
	"fmt"
	"time"

	"github.com/gestock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillingPayment is a payment recorded against a billing document.
// OldAmount snapshots the remaining balance just before this payment was
// taken, so removing the payment can restore the exact prior state.
type BillingPayment struct {
	shared.BaseEntity
	BillingID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Code        string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	OldAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaymentDate time.Time       `gorm:"not null"`
	Comment     string          `gorm:"type:text"`
}

// TableName returns the database table name
func (BillingPayment) TableName() string {
	return "billing_payments"
}

// AddPayment records a payment against the document. The amount must be
// positive and must not exceed the remaining balance.
func (b *Billing) AddPayment(code string, amount decimal.Decimal, paymentDate time.Time, comment string) (*BillingPayment, error) {
	if !b.Status.IsPayable() {
		return nil, shared.NewDomainError("ILLEGAL_STATE_TRANSITION",
			"Cannot record a payment on a billing in status "+string(b.Status))
	}
	if code == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment code is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_AMOUNT", "Payment amount must be positive")
	}
	if amount.GreaterThan(b.RemainingPrice) {
		return nil, shared.NewDomainError("INVALID_PAYMENT_AMOUNT",
			fmt.Sprintf("Payment of %s exceeds remaining balance of %s",
				amount.StringFixed(2), b.RemainingPrice.StringFixed(2)))
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	payment := BillingPayment{
		BaseEntity:  shared.NewBaseEntity(),
		BillingID:   b.ID,
		Code:        code,
		Amount:      amount,
		OldAmount:   b.RemainingPrice,
		PaymentDate: paymentDate,
		Comment:     comment,
	}
	b.Payments = append(b.Payments, payment)
	b.recalculateTotals()

	recorded := &b.Payments[len(b.Payments)-1]
	b.AddDomainEvent(NewPaymentRecordedEvent(b, recorded))
	return recorded, nil
}

// RemovePayment reverses a recorded payment. The balance returns to exactly
// what it was before the payment and the status follows the new coverage.
func (b *Billing) RemovePayment(paymentID uuid.UUID) error {
	switch b.Status {
	case BillingStatusBegin, BillingStatusPaidPartially, BillingStatusPaid:
	default:
		return shared.NewDomainError("ILLEGAL_STATE_TRANSITION",
			"Cannot remove a payment from a billing in status "+string(b.Status))
	}

	for i := range b.Payments {
		if b.Payments[i].ID == paymentID {
			removed := b.Payments[i]
			b.Payments = append(b.Payments[:i], b.Payments[i+1:]...)
			b.recalculateTotals()
			b.AddDomainEvent(NewPaymentReversedEvent(b, &removed))
			return nil
		}
	}
	return shared.NewDomainError("NOT_FOUND", "Payment not found")
}

// FindPayment returns the payment with the given ID, or nil
func (b *Billing) FindPayment(paymentID uuid.UUID) *BillingPayment {
	for i := range b.Payments {
		if b.Payments[i].ID == paymentID {
			return &b.Payments[i]
		}
	}
	return nil
}
