package billing

import (
	"time"

	"github.com/gestock/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillingItemResponse represents a billing line in API responses
type BillingItemResponse struct {
	ID                 uuid.UUID       `json:"id"`
	ProductID          uuid.UUID       `json:"product_id"`
	WarehouseID        *uuid.UUID      `json:"warehouse_id,omitempty"`
	ItemType           string          `json:"item_type"`
	Label              string          `json:"label"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	Quantity           decimal.Decimal `json:"quantity"`
	DiscountPercent    decimal.Decimal `json:"discount_percent"`
	VatRate            decimal.Decimal `json:"vat_rate"`
	AmountExcludingVat decimal.Decimal `json:"amount_excluding_vat"`
	VatAmount          decimal.Decimal `json:"vat_amount"`
	AmountIncludingVat decimal.Decimal `json:"amount_including_vat"`
}

// BillingPaymentResponse represents a payment in API responses
type BillingPaymentResponse struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	Amount      decimal.Decimal `json:"amount"`
	OldAmount   decimal.Decimal `json:"old_amount"`
	PaymentDate time.Time       `json:"payment_date"`
	Comment     string          `json:"comment,omitempty"`
}

// BillingResponse represents a billing document in API responses
type BillingResponse struct {
	ID                 uuid.UUID                `json:"id"`
	Code               string                   `json:"code"`
	BillingType        string                   `json:"billing_type"`
	Status             string                   `json:"status"`
	ThirdPartyID       uuid.UUID                `json:"third_party_id"`
	BillingDate        time.Time                `json:"billing_date"`
	Description        string                   `json:"description,omitempty"`
	ParentBillingID    *uuid.UUID               `json:"parent_billing_id,omitempty"`
	IsFullRefund       *bool                    `json:"is_full_refund,omitempty"`
	AmountExcludingVat decimal.Decimal          `json:"amount_excluding_vat"`
	VatAmount          decimal.Decimal          `json:"vat_amount"`
	AmountIncludingVat decimal.Decimal          `json:"amount_including_vat"`
	AllocatedPrice     decimal.Decimal          `json:"allocated_price"`
	RemainingPrice     decimal.Decimal          `json:"remaining_price"`
	Items              []BillingItemResponse    `json:"items"`
	Payments           []BillingPaymentResponse `json:"payments"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
	Version            int                      `json:"version"`
}

// BillingListItemResponse represents a billing document in list responses
type BillingListItemResponse struct {
	ID                 uuid.UUID       `json:"id"`
	Code               string          `json:"code"`
	BillingType        string          `json:"billing_type"`
	Status             string          `json:"status"`
	ThirdPartyID       uuid.UUID       `json:"third_party_id"`
	BillingDate        time.Time       `json:"billing_date"`
	AmountIncludingVat decimal.Decimal `json:"amount_including_vat"`
	RemainingPrice     decimal.Decimal `json:"remaining_price"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ToBillingItemResponse converts a billing item to a response
func ToBillingItemResponse(i *billing.BillingItem) BillingItemResponse {
	return BillingItemResponse{
		ID:                 i.ID,
		ProductID:          i.ProductID,
		WarehouseID:        i.WarehouseID,
		ItemType:           i.ItemType,
		Label:              i.Label,
		UnitPrice:          i.UnitPrice,
		Quantity:           i.Quantity,
		DiscountPercent:    i.DiscountPercent,
		VatRate:            i.VatRate,
		AmountExcludingVat: i.AmountExcludingVat,
		VatAmount:          i.VatAmount,
		AmountIncludingVat: i.AmountIncludingVat,
	}
}

// ToBillingPaymentResponse converts a payment to a response
func ToBillingPaymentResponse(p *billing.BillingPayment) BillingPaymentResponse {
	return BillingPaymentResponse{
		ID:          p.ID,
		Code:        p.Code,
		Amount:      p.Amount,
		OldAmount:   p.OldAmount,
		PaymentDate: p.PaymentDate,
		Comment:     p.Comment,
	}
}

// ToBillingResponse converts a billing aggregate to a full response
func ToBillingResponse(b *billing.Billing) BillingResponse {
	items := make([]BillingItemResponse, len(b.Items))
	for i := range b.Items {
		items[i] = ToBillingItemResponse(&b.Items[i])
	}
	payments := make([]BillingPaymentResponse, len(b.Payments))
	for i := range b.Payments {
		payments[i] = ToBillingPaymentResponse(&b.Payments[i])
	}
	return BillingResponse{
		ID:                 b.ID,
		Code:               b.Code,
		BillingType:        b.BillingType.String(),
		Status:             b.Status.String(),
		ThirdPartyID:       b.ThirdPartyID,
		BillingDate:        b.BillingDate,
		Description:        b.Description,
		ParentBillingID:    b.ParentBillingID,
		IsFullRefund:       b.IsFullRefund,
		AmountExcludingVat: b.AmountExcludingVat,
		VatAmount:          b.VatAmount,
		AmountIncludingVat: b.AmountIncludingVat,
		AllocatedPrice:     b.AllocatedPrice,
		RemainingPrice:     b.RemainingPrice,
		Items:              items,
		Payments:           payments,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
		Version:            b.Version,
	}
}

// ToBillingListItemResponses converts billing aggregates to list responses
func ToBillingListItemResponses(billings []billing.Billing) []BillingListItemResponse {
	out := make([]BillingListItemResponse, len(billings))
	for i := range billings {
		b := &billings[i]
		out[i] = BillingListItemResponse{
			ID:                 b.ID,
			Code:               b.Code,
			BillingType:        b.BillingType.String(),
			Status:             b.Status.String(),
			ThirdPartyID:       b.ThirdPartyID,
			BillingDate:        b.BillingDate,
			AmountIncludingVat: b.AmountIncludingVat,
			RemainingPrice:     b.RemainingPrice,
			UpdatedAt:          b.UpdatedAt,
		}
	}
	return out
}

// BillingItemRequest represents a line in create/update requests
type BillingItemRequest struct {
	ProductID       uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID     *uuid.UUID      `json:"warehouse_id"`
	Label           string          `json:"label" binding:"required,min=1,max=255"`
	UnitPrice       decimal.Decimal `json:"unit_price" binding:"required"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	VatRate         decimal.Decimal `json:"vat_rate"`
}

// CreateBillingRequest represents a request to create a billing document
type CreateBillingRequest struct {
	BillingType  string               `json:"billing_type" binding:"required,oneof=SI DI"`
	ThirdPartyID uuid.UUID            `json:"third_party_id" binding:"required"`
	BillingDate  *time.Time           `json:"billing_date"`
	Description  string               `json:"description"`
	Items        []BillingItemRequest `json:"items"`
}

// UpdateBillingRequest represents a request to update the header fields
type UpdateBillingRequest struct {
	BillingDate *time.Time `json:"billing_date"`
	Description *string    `json:"description"`
}

// SetStatusRequest represents a manual status change request
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AddPaymentRequest represents a request to record a payment
type AddPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate *time.Time      `json:"payment_date"`
	Comment     string          `json:"comment"`
}

// CreateCreditRequest represents a request to create a credit note
type CreateCreditRequest struct {
	FullRefund   bool                 `json:"full_refund"`
	RefundAmount decimal.Decimal      `json:"refund_amount"`
	Items        []BillingItemRequest `json:"items"`
}

// BillingListFilter represents filter options for the billing list
type BillingListFilter struct {
	Search       string     `form:"search"`
	BillingType  string     `form:"billing_type" binding:"omitempty,oneof=SI DI CI"`
	Status       string     `form:"status"`
	ThirdPartyID *uuid.UUID `form:"third_party_id"`
	Page         int        `form:"page" binding:"omitempty,min=1"`
	PageSize     int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy      string     `form:"order_by"`
	OrderDir     string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// StatusSummaryResponse counts billing documents per lifecycle status
type StatusSummaryResponse struct {
	Draft         int64 `json:"draft"`
	Validate      int64 `json:"validate"`
	Begin         int64 `json:"begin"`
	PaidPartially int64 `json:"paid_partially"`
	Paid          int64 `json:"paid"`
	Abandoned     int64 `json:"abandoned"`
	CreditNote    int64 `json:"credit_note"`
	CreditBack    int64 `json:"credit_back"`
}
