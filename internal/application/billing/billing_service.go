package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	appinventory "github.com/gestock/backend/internal/application/inventory"
	"github.com/gestock/backend/internal/domain/billing"
	"github.com/gestock/backend/internal/domain/catalog"
	"github.com/gestock/backend/internal/domain/inventory"
	"github.com/gestock/backend/internal/domain/partner"
	"github.com/gestock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillingService handles the billing document lifecycle: drafting, line
// management, validation with stock decrement, payments and credit notes.
type BillingService struct {
	billingRepo    billing.Repository
	productRepo    catalog.ProductRepository
	thirdPartyRepo partner.ThirdPartyRepository
	stockRepo      inventory.StockRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
}

// NewBillingService creates a new BillingService
func NewBillingService(
	billingRepo billing.Repository,
	productRepo catalog.ProductRepository,
	thirdPartyRepo partner.ThirdPartyRepository,
	stockRepo inventory.StockRepository,
	txScope TransactionScope,
) *BillingService {
	return &BillingService{
		billingRepo:    billingRepo,
		productRepo:    productRepo,
		thirdPartyRepo: thirdPartyRepo,
		stockRepo:      stockRepo,
		txScope:        txScope,
	}
}

// ensureStockFor rejects a product line whose quantity exceeds the physical
// stock of the target warehouse. Validation re-checks transactionally; this
// keeps unservable lines out of the draft in the first place.
func (s *BillingService) ensureStockFor(ctx context.Context, productID uuid.UUID, warehouseID *uuid.UUID, quantity decimal.Decimal) error {
	if warehouseID == nil {
		return shared.NewDomainError("INVALID_INPUT", "Warehouse is required for product lines")
	}

	available := decimal.Zero
	stock, err := s.stockRepo.FindByProductAndWarehouse(ctx, productID, *warehouseID)
	switch {
	case err == nil:
		available = stock.PhysicalQuantity
	case errors.Is(err, shared.ErrNotFound):
		// no stock row yet means nothing on the shelf
	default:
		return err
	}

	if available.LessThan(quantity) {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock for product %s: %s available, %s requested",
				productID, available.String(), quantity.String()))
	}
	return nil
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *BillingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publishDomainEvents publishes all pending domain events of the aggregate
func (s *BillingService) publishDomainEvents(ctx context.Context, b *billing.Billing) {
	if s.eventPublisher == nil {
		b.ClearDomainEvents()
		return
	}
	events := b.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	b.ClearDomainEvents()
}

// itemTypeFor maps a product to the billing line type it produces
func itemTypeFor(p *catalog.Product) string {
	if p.IsService() {
		return billing.ItemTypeService
	}
	return billing.ItemTypeProduct
}

// Create creates a new draft billing document with the given lines
func (s *BillingService) Create(ctx context.Context, req CreateBillingRequest) (*BillingResponse, error) {
	if _, err := s.thirdPartyRepo.FindByID(ctx, req.ThirdPartyID); err != nil {
		return nil, err
	}

	billingDate := time.Now()
	if req.BillingDate != nil {
		billingDate = *req.BillingDate
	}

	code, err := s.billingRepo.GenerateCode(ctx, billing.BillingType(req.BillingType), billingDate)
	if err != nil {
		return nil, err
	}

	doc, err := billing.NewBilling(code, billing.BillingType(req.BillingType), req.ThirdPartyID, billingDate, req.Description)
	if err != nil {
		return nil, err
	}

	for _, item := range req.Items {
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		warehouseID := item.WarehouseID
		if warehouseID == nil {
			warehouseID = product.WarehouseID
		}
		if !product.IsService() {
			if err := s.ensureStockFor(ctx, product.ID, warehouseID, item.Quantity); err != nil {
				return nil, err
			}
		}
		if _, err := doc.AddItem(product.ID, warehouseID, itemTypeFor(product), item.Label,
			item.UnitPrice, item.Quantity, item.DiscountPercent, item.VatRate); err != nil {
			return nil, err
		}
	}

	if err := s.billingRepo.Save(ctx, doc); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, doc)

	response := ToBillingResponse(doc)
	return &response, nil
}

// GetByID retrieves a billing document with its items and payments
func (s *BillingService) GetByID(ctx context.Context, id uuid.UUID) (*BillingResponse, error) {
	doc, err := s.billingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToBillingResponse(doc)
	return &response, nil
}

// GetByCode retrieves a billing document by its unique code
func (s *BillingService) GetByCode(ctx context.Context, code string) (*BillingResponse, error) {
	doc, err := s.billingRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	response := ToBillingResponse(doc)
	return &response, nil
}

// List retrieves billing documents with filtering and pagination
func (s *BillingService) List(ctx context.Context, filter BillingListFilter) ([]BillingListItemResponse, int64, error) {
	domainFilter := buildBillingFilter(filter)

	docs, err := s.billingRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.billingRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToBillingListItemResponses(docs), total, nil
}

// ListChildren retrieves the credit notes created against a billing
func (s *BillingService) ListChildren(ctx context.Context, parentID uuid.UUID) ([]BillingListItemResponse, error) {
	if _, err := s.billingRepo.FindByID(ctx, parentID); err != nil {
		return nil, err
	}
	children, err := s.billingRepo.FindChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}
	return ToBillingListItemResponses(children), nil
}

// Update changes the header fields of a billing document
func (s *BillingService) Update(ctx context.Context, id uuid.UUID, req UpdateBillingRequest) (*BillingResponse, error) {
	doc, err := s.billingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.Status.IsEditable() {
		return nil, shared.NewDomainError("ILLEGAL_STATE_TRANSITION",
			"Cannot update a billing in status "+doc.Status.String())
	}

	if req.BillingDate != nil {
		doc.BillingDate = *req.BillingDate
	}
	if req.Description != nil {
		doc.Description = *req.Description
	}
	doc.UpdatedAt = time.Now()

	doc.IncrementVersion()
	if err := s.billingRepo.SaveWithLock(ctx, doc); err != nil {
		return nil, err
	}

	response := ToBillingResponse(doc)
	return &response, nil
}

// Delete removes a billing document. Only drafts can be deleted; everything
// past DRAFT stays as part of the audit trail.
func (s *BillingService) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.billingRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if doc.Status != billing.BillingStatusDraft {
		return shared.NewDomainError("ILLEGAL_STATE_TRANSITION",
			"Only draft billings can be deleted, current status is "+doc.Status.String())
	}
	return s.billingRepo.Delete(ctx, id)
}

// AddItem appends a line to a billing document
func (s *BillingService) AddItem(ctx context.Context, billingID uuid.UUID, req BillingItemRequest) (*BillingResponse, error) {
	doc, err := s.billingRepo.FindByID(ctx, billingID)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	warehouseID := req.WarehouseID
	if warehouseID == nil {
		warehouseID = product.WarehouseID
	}
	if !product.IsService() {
		if err := s.ensureStockFor(ctx, product.ID, warehouseID, req.Quantity); err != nil {
			return nil, err
		}
	}

	if _, err := doc.AddItem(product.ID, warehouseID, itemTypeFor(product), req.Label,
		req.UnitPrice, req.Quantity, req.DiscountPercent, req.VatRate); err != nil {
		return nil, err
	}

	doc.IncrementVersion()
	if err := s.billingRepo.SaveWithLock(ctx, doc); err != nil {
		return nil, err
	}

	response := ToBillingResponse(doc)
	return &response, nil
}

// UpdateItem changes a line of a billing document
func (s *BillingService) UpdateItem(ctx context.Context, billingID, itemID uuid.UUID, req BillingItemRequest) (*BillingResponse, error) {
	doc, err := s.billingRepo.FindByID(ctx, billingID)
	if err != nil {
		return nil, err
	}
	for i := range doc.Items {
		item := &doc.Items[i]
		if item.ID != itemID || !item.IsProduct() {
			continue
		}
		if err := s.ensureStockFor(ctx, item.ProductID, item.WarehouseID, req.Quantity); err != nil {
			return nil, err
		}
	}
	if err := doc.UpdateItem(itemID, req.Label, req.UnitPrice, req.Quantity, req.DiscountPercent, req.VatRate); err != nil {
		return nil, err
	}

	doc.IncrementVersion()
	if err := s.billingRepo.SaveWithLock(ctx, doc); err != nil {
		return nil, err
	}

	response := ToBillingResponse(doc)
	return &response, nil
}

// RemoveItem deletes a line from a billing document
func (s *BillingService) RemoveItem(ctx context.Context, billingID, itemID uuid.UUID) (*BillingResponse, error) {
	doc, err := s.billingRepo.FindByID(ctx, billingID)
	if err != nil {
		return nil, err
	}
	if err := doc.RemoveItem(itemID); err != nil {
		return nil, err
	}

	doc.IncrementVersion()
	if err := s.billingRepo.SaveWithLock(ctx, doc); err != nil {
		return nil, err
	}

	response := ToBillingResponse(doc)
	return &response, nil
}

// Validate moves a draft billing to VALIDATE and decrements stock for every
// product line. The document update, all stock updates and all movement
// records commit atomically; any insufficient balance aborts the whole
// validation and leaves the document in DRAFT.
func (s *BillingService) Validate(ctx context.Context, id uuid.UUID) (*BillingResponse, error) {
	var response BillingResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		doc, err := repos.BillingRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := doc.Validate(); err != nil {
			return err
		}

		now := time.Now()
		for i := range doc.Items {
			item := &doc.Items[i]
			if !item.IsProduct() {
				continue
			}
			if item.WarehouseID == nil {
				return shared.NewDomainError("INVALID_STATE",
					"Product line "+item.Label+" has no warehouse")
			}
			if _, err := appinventory.Decrement(ctx, repos, item.ProductID, *item.WarehouseID,
				item.Quantity, item.UnitPrice, now); err != nil {
				return err
			}
		}

		doc.IncrementVersion()
		if err := repos.BillingRepo().SaveWithLock(ctx, doc); err != nil {
			return err
		}

		s.publishDomainEvents(ctx, doc)
		response = ToBillingResponse(doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// SetStatus applies a manually requested status change
func (s *BillingService) SetStatus(ctx context.Context, id uuid.UUID, req SetStatusRequest) (*BillingResponse, error) {
	doc, err := s.billingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := doc.SetStatus(billing.BillingStatus(req.Status)); err != nil {
		return nil, err
	}

	doc.IncrementVersion()
	if err := s.billingRepo.SaveWithLock(ctx, doc); err != nil {
		return nil, err
	}

	response := ToBillingResponse(doc)
	return &response, nil
}

// AddPayment records a payment against a billing document
func (s *BillingService) AddPayment(ctx context.Context, id uuid.UUID, req AddPaymentRequest) (*BillingResponse, error) {
	doc, err := s.billingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	paymentDate := time.Now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}
	code, err := s.billingRepo.GeneratePaymentCode(ctx, paymentDate)
	if err != nil {
		return nil, err
	}

	if _, err := doc.AddPayment(code, req.Amount, paymentDate, req.Comment); err != nil {
		return nil, err
	}

	doc.IncrementVersion()
	if err := s.billingRepo.SaveWithLock(ctx, doc); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, doc)

	response := ToBillingResponse(doc)
	return &response, nil
}

// RemovePayment reverses a recorded payment
func (s *BillingService) RemovePayment(ctx context.Context, id, paymentID uuid.UUID) (*BillingResponse, error) {
	doc, err := s.billingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := doc.RemovePayment(paymentID); err != nil {
		return nil, err
	}

	doc.IncrementVersion()
	if err := s.billingRepo.SaveWithLock(ctx, doc); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, doc)

	response := ToBillingResponse(doc)
	return &response, nil
}

// CreateCredit creates a credit note against a billing document. The credit
// note starts in DRAFT; a full refund also freezes the parent in CREDIT_NOTE,
// so both documents are saved in the same transaction.
func (s *BillingService) CreateCredit(ctx context.Context, parentID uuid.UUID, req CreateCreditRequest) (*BillingResponse, error) {
	var response BillingResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		parent, err := repos.BillingRepo().FindByID(ctx, parentID)
		if err != nil {
			return err
		}

		var items []billing.BillingItem
		for _, item := range req.Items {
			product, err := repos.ProductRepo().FindByID(ctx, item.ProductID)
			if err != nil {
				return err
			}
			warehouseID := item.WarehouseID
			if warehouseID == nil {
				warehouseID = product.WarehouseID
			}
			items = append(items, billing.BillingItem{
				ProductID:       product.ID,
				WarehouseID:     warehouseID,
				ItemType:        itemTypeFor(product),
				Label:           item.Label,
				UnitPrice:       item.UnitPrice,
				Quantity:        item.Quantity,
				DiscountPercent: item.DiscountPercent,
				VatRate:         item.VatRate,
			})
		}

		code := billing.CreditCode(parent.Code, time.Now())
		credit, err := billing.NewCreditNote(parent, code, req.FullRefund, req.RefundAmount, items)
		if err != nil {
			return err
		}

		if err := repos.BillingRepo().Save(ctx, credit); err != nil {
			return err
		}
		parent.IncrementVersion()
		if err := repos.BillingRepo().SaveWithLock(ctx, parent); err != nil {
			return err
		}

		s.publishDomainEvents(ctx, credit)
		response = ToBillingResponse(credit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ValidateCredit reconciles a draft credit note with its parent. Both
// documents are updated in the same transaction.
func (s *BillingService) ValidateCredit(ctx context.Context, creditID uuid.UUID) (*BillingResponse, error) {
	var response BillingResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		credit, err := repos.BillingRepo().FindByID(ctx, creditID)
		if err != nil {
			return err
		}
		if credit.ParentBillingID == nil {
			return shared.NewDomainError("INVALID_STATE", "Billing is not a credit note")
		}
		parent, err := repos.BillingRepo().FindByID(ctx, *credit.ParentBillingID)
		if err != nil {
			return err
		}

		if err := billing.ReconcileCredit(parent, credit); err != nil {
			return err
		}

		parent.IncrementVersion()
		if err := repos.BillingRepo().SaveWithLock(ctx, parent); err != nil {
			return err
		}
		credit.IncrementVersion()
		if err := repos.BillingRepo().SaveWithLock(ctx, credit); err != nil {
			return err
		}

		s.publishDomainEvents(ctx, credit)
		response = ToBillingResponse(credit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// StatusSummary counts billing documents per lifecycle status
func (s *BillingService) StatusSummary(ctx context.Context) (*StatusSummaryResponse, error) {
	summary := &StatusSummaryResponse{}
	counts := []struct {
		status billing.BillingStatus
		target *int64
	}{
		{billing.BillingStatusDraft, &summary.Draft},
		{billing.BillingStatusValidate, &summary.Validate},
		{billing.BillingStatusBegin, &summary.Begin},
		{billing.BillingStatusPaidPartially, &summary.PaidPartially},
		{billing.BillingStatusPaid, &summary.Paid},
		{billing.BillingStatusAbandoned, &summary.Abandoned},
		{billing.BillingStatusCreditNote, &summary.CreditNote},
		{billing.BillingStatusCreditBack, &summary.CreditBack},
	}
	for _, c := range counts {
		n, err := s.billingRepo.CountByStatus(ctx, c.status)
		if err != nil {
			return nil, err
		}
		*c.target = n
	}
	return summary, nil
}

func buildBillingFilter(filter BillingListFilter) shared.Filter {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	f.Search = filter.Search
	if filter.BillingType != "" {
		f.Filters["billing_type"] = filter.BillingType
	}
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}
	if filter.ThirdPartyID != nil {
		f.Filters["third_party_id"] = *filter.ThirdPartyID
	}
	return f
}
