package billing

import (
	"github.com/gestock/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LineAmounts holds the computed amounts of a single billing line.
// All values are kept at full precision; rounding to two decimals happens
// once, when totals are persisted.
type LineAmounts struct {
	ExcludingVat   decimal.Decimal
	DiscountAmount decimal.Decimal
	VatAmount      decimal.Decimal
	IncludingVat   decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

// ComputeLineTotal derives the amounts of a billing line from its unit price,
// quantity, discount percentage and VAT rate. The discount applies to the
// pre-tax amount and VAT is computed on the discounted base.
func ComputeLineTotal(unitPrice, quantity, discountPercent, vatRate decimal.Decimal) (LineAmounts, error) {
	if unitPrice.IsNegative() {
		return LineAmounts{}, shared.NewDomainError("INVALID_INPUT", "Unit price cannot be negative")
	}
	if quantity.IsNegative() {
		return LineAmounts{}, shared.NewDomainError("INVALID_INPUT", "Quantity cannot be negative")
	}
	if discountPercent.IsNegative() || discountPercent.GreaterThan(oneHundred) {
		return LineAmounts{}, shared.NewDomainError("INVALID_INPUT", "Discount must be between 0 and 100")
	}
	if vatRate.IsNegative() {
		return LineAmounts{}, shared.NewDomainError("INVALID_INPUT", "VAT rate cannot be negative")
	}

	gross := unitPrice.Mul(quantity)
	discount := gross.Mul(discountPercent).Div(oneHundred)
	base := gross.Sub(discount)
	vat := base.Mul(vatRate).Div(oneHundred)

	return LineAmounts{
		ExcludingVat:   base,
		DiscountAmount: discount,
		VatAmount:      vat,
		IncludingVat:   base.Add(vat),
	}, nil
}
