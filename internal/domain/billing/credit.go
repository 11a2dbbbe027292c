package billing

import (
	"fmt"
	"time"

	"github.com/gestock/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CreditCode derives the code of a credit note from its parent's code and
// the creation time, e.g. "AVOIR-SI-202608-00042-1756500000".
func CreditCode(parentCode string, at time.Time) string {
	return fmt.Sprintf("AVOIR-%s-%d", parentCode, at.Unix())
}

// NewCreditNote creates a credit note (avoir) against a parent billing.
//
// A full refund copies the parent's totals onto the child and immediately
// moves the parent to CREDIT_NOTE. A partial refund carries either the given
// lines or, when no lines are provided, a single refund amount with no VAT
// breakdown. The child starts in DRAFT and only affects the parent's balance
// once reconciled.
func NewCreditNote(parent *Billing, code string, fullRefund bool, refundAmount decimal.Decimal, items []BillingItem) (*Billing, error) {
	if parent == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Parent billing is required")
	}
	if parent.IsCreditNote() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot create a credit note on a credit note")
	}
	if !parent.AmountIncludingVat.IsPositive() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot create a credit note on a billing with no amount")
	}
	if !parent.Status.CanTransitionTo(BillingStatusCreditNote) {
		return nil, shared.NewDomainError("ILLEGAL_STATE_TRANSITION",
			"Cannot create a credit note on a billing in status "+string(parent.Status))
	}
	if !fullRefund {
		if len(items) == 0 {
			if !refundAmount.IsPositive() || refundAmount.GreaterThan(parent.AmountIncludingVat) {
				return nil, shared.NewDomainError("INVALID_REFUND_AMOUNT",
					fmt.Sprintf("Refund of %s is outside the allowed range, maximum is %s",
						refundAmount.StringFixed(2), parent.AmountIncludingVat.StringFixed(2)))
			}
		}
	}

	credit, err := NewBilling(code, BillingTypeCreditInvoice, parent.ThirdPartyID, time.Now(), "Credit note for "+parent.Code)
	if err != nil {
		return nil, err
	}
	parentID := parent.ID
	credit.ParentBillingID = &parentID
	credit.IsFullRefund = &fullRefund

	switch {
	case fullRefund:
		credit.AmountExcludingVat = parent.AmountExcludingVat
		credit.VatAmount = parent.VatAmount
		credit.AmountIncludingVat = parent.AmountIncludingVat
		credit.RemainingPrice = parent.AmountIncludingVat
		if err := parent.transitionTo(BillingStatusCreditNote); err != nil {
			return nil, err
		}
		parent.UpdatedAt = time.Now()

	case len(items) > 0:
		for i := range items {
			it := items[i]
			_, err := credit.AddItem(it.ProductID, it.WarehouseID, it.ItemType, it.Label,
				it.UnitPrice, it.Quantity, it.DiscountPercent, it.VatRate)
			if err != nil {
				return nil, err
			}
		}
		if credit.AmountIncludingVat.GreaterThan(parent.AmountIncludingVat) {
			return nil, shared.NewDomainError("INVALID_REFUND_AMOUNT",
				fmt.Sprintf("Refund of %s is outside the allowed range, maximum is %s",
					credit.AmountIncludingVat.StringFixed(2), parent.AmountIncludingVat.StringFixed(2)))
		}

	default:
		credit.AmountExcludingVat = refundAmount
		credit.VatAmount = decimal.Zero
		credit.AmountIncludingVat = refundAmount
		credit.RemainingPrice = refundAmount
	}

	credit.AddDomainEvent(NewCreditNoteCreatedEvent(credit, parent))
	return credit, nil
}

// ReconcileCredit validates a draft credit note and applies it to the parent.
//
// Full refund: the parent is considered settled, the child becomes
// CREDIT_BACK and both end with a zero remaining balance. Partial refund:
// the credit amount is first consumed by the parent's remaining balance and
// any excess is given back out of the allocated amount.
func ReconcileCredit(parent, credit *Billing) error {
	if parent == nil || credit == nil {
		return shared.NewDomainError("INVALID_INPUT", "Parent and credit billing are required")
	}
	if !credit.IsCreditNote() {
		return shared.NewDomainError("INVALID_STATE", "Billing is not a credit note")
	}
	if credit.ParentBillingID == nil || *credit.ParentBillingID != parent.ID {
		return shared.NewDomainError("INVALID_INPUT", "Credit note does not belong to this billing")
	}
	if credit.Status != BillingStatusDraft {
		return shared.NewDomainError("ILLEGAL_STATE_TRANSITION",
			"Only draft credit notes can be validated, current status is "+string(credit.Status))
	}

	fullRefund := credit.IsFullRefund != nil && *credit.IsFullRefund
	now := time.Now()

	if fullRefund {
		if parent.Status != BillingStatusCreditNote {
			return shared.NewDomainError("INVALID_STATE",
				"Parent of a full refund must be in CREDIT_NOTE status, got "+string(parent.Status))
		}
		parent.AllocatedPrice = parent.AmountIncludingVat
		parent.RemainingPrice = decimal.Zero
		if err := parent.transitionTo(BillingStatusPaid); err != nil {
			return err
		}

		credit.Status = BillingStatusCreditBack
		credit.AllocatedPrice = credit.AmountIncludingVat
		credit.RemainingPrice = decimal.Zero
	} else {
		creditAmount := credit.AmountIncludingVat
		if creditAmount.GreaterThan(parent.AmountIncludingVat) {
			return shared.NewDomainError("INVALID_REFUND_AMOUNT",
				fmt.Sprintf("Refund of %s is outside the allowed range, maximum is %s",
					creditAmount.StringFixed(2), parent.AmountIncludingVat.StringFixed(2)))
		}

		applied := creditAmount
		if applied.GreaterThan(parent.RemainingPrice) {
			applied = parent.RemainingPrice
		}
		excess := creditAmount.Sub(applied)

		parent.RemainingPrice = parent.RemainingPrice.Sub(applied)
		allocated := parent.AllocatedPrice.Add(applied).Sub(excess)
		if allocated.IsNegative() {
			allocated = decimal.Zero
		}
		parent.AllocatedPrice = allocated

		var target BillingStatus
		switch {
		case !parent.RemainingPrice.IsPositive():
			target = BillingStatusPaid
		case parent.AllocatedPrice.IsPositive():
			target = BillingStatusPaidPartially
		default:
			target = BillingStatusValidate
		}
		if err := parent.transitionTo(target); err != nil {
			return err
		}

		credit.Status = BillingStatusCreditBack
		credit.AllocatedPrice = credit.AmountIncludingVat
		credit.RemainingPrice = decimal.Zero
	}

	parent.UpdatedAt = now
	credit.UpdatedAt = now
	credit.AddDomainEvent(NewCreditNoteReconciledEvent(credit, parent))
	return nil
}
