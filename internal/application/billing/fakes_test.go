package billing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gestock/backend/internal/domain/billing"
	"github.com/gestock/backend/internal/domain/catalog"
	"github.com/gestock/backend/internal/domain/inventory"
	"github.com/gestock/backend/internal/domain/partner"
	"github.com/gestock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// In-memory repositories backing the service tests. They deep-copy on every
// read and write so aggregate mutations only become visible through Save,
// mirroring how a real database behaves.

func copyBilling(b *billing.Billing) *billing.Billing {
	clone := *b
	clone.Items = append([]billing.BillingItem(nil), b.Items...)
	clone.Payments = append([]billing.BillingPayment(nil), b.Payments...)
	clone.ClearDomainEvents()
	return &clone
}

type fakeBillingRepo struct {
	mu      sync.Mutex
	docs    map[uuid.UUID]*billing.Billing
	codeSeq int
	paySeq  int
}

func newFakeBillingRepo() *fakeBillingRepo {
	return &fakeBillingRepo{docs: make(map[uuid.UUID]*billing.Billing)}
}

func (r *fakeBillingRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.Billing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return copyBilling(doc), nil
}

func (r *fakeBillingRepo) FindByCode(ctx context.Context, code string) (*billing.Billing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.docs {
		if doc.Code == code {
			return copyBilling(doc), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeBillingRepo) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Billing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []billing.Billing
	for _, doc := range r.docs {
		out = append(out, *copyBilling(doc))
	}
	return out, nil
}

func (r *fakeBillingRepo) FindChildren(ctx context.Context, parentID uuid.UUID) ([]billing.Billing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []billing.Billing
	for _, doc := range r.docs {
		if doc.ParentBillingID != nil && *doc.ParentBillingID == parentID {
			out = append(out, *copyBilling(doc))
		}
	}
	return out, nil
}

func (r *fakeBillingRepo) Save(ctx context.Context, doc *billing.Billing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = copyBilling(doc)
	return nil
}

func (r *fakeBillingRepo) SaveWithLock(ctx context.Context, doc *billing.Billing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.docs[doc.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if existing.Version != doc.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	r.docs[doc.ID] = copyBilling(doc)
	return nil
}

func (r *fakeBillingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.docs, id)
	return nil
}

func (r *fakeBillingRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.docs)), nil
}

func (r *fakeBillingRepo) CountByStatus(ctx context.Context, status billing.BillingStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, doc := range r.docs {
		if doc.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeBillingRepo) GenerateCode(ctx context.Context, billingType billing.BillingType, at time.Time) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codeSeq++
	return fmt.Sprintf("%s-%s-%05d", billingType, at.Format("200601"), r.codeSeq), nil
}

func (r *fakeBillingRepo) GeneratePaymentCode(ctx context.Context, at time.Time) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paySeq++
	return fmt.Sprintf("PAY-%s-%05d", at.Format("200601"), r.paySeq), nil
}

type fakeProductRepo struct {
	products map[uuid.UUID]*catalog.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*catalog.Product)}
}

func (r *fakeProductRepo) add(p *catalog.Product) { r.products[p.ID] = p }

func (r *fakeProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *fakeProductRepo) FindByReference(ctx context.Context, reference string) (*catalog.Product, error) {
	for _, p := range r.products {
		if p.Reference == reference {
			clone := *p
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepo) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeProductRepo) Save(ctx context.Context, p *catalog.Product) error {
	clone := *p
	r.products[p.ID] = &clone
	return nil
}

func (r *fakeProductRepo) SaveWithLock(ctx context.Context, p *catalog.Product) error {
	return r.Save(ctx, p)
}

func (r *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return int64(len(r.products)), nil
}

func (r *fakeProductRepo) GenerateReference(ctx context.Context) (string, error) {
	return fmt.Sprintf("PRD-%05d", len(r.products)+1), nil
}

type fakeThirdPartyRepo struct {
	parties map[uuid.UUID]*partner.ThirdParty
}

func newFakeThirdPartyRepo() *fakeThirdPartyRepo {
	return &fakeThirdPartyRepo{parties: make(map[uuid.UUID]*partner.ThirdParty)}
}

func (r *fakeThirdPartyRepo) add(t *partner.ThirdParty) { r.parties[t.ID] = t }

func (r *fakeThirdPartyRepo) FindByID(ctx context.Context, id uuid.UUID) (*partner.ThirdParty, error) {
	t, ok := r.parties[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *fakeThirdPartyRepo) FindByCode(ctx context.Context, code string) (*partner.ThirdParty, error) {
	for _, t := range r.parties {
		if t.Code == code {
			clone := *t
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeThirdPartyRepo) FindAll(ctx context.Context, filter shared.Filter) ([]partner.ThirdParty, error) {
	var out []partner.ThirdParty
	for _, t := range r.parties {
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeThirdPartyRepo) Save(ctx context.Context, t *partner.ThirdParty) error {
	clone := *t
	r.parties[t.ID] = &clone
	return nil
}

func (r *fakeThirdPartyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.parties, id)
	return nil
}

func (r *fakeThirdPartyRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return int64(len(r.parties)), nil
}

func stockKey(productID, warehouseID uuid.UUID) string {
	return productID.String() + "/" + warehouseID.String()
}

type fakeStockRepo struct {
	stocks map[string]*inventory.Stock
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{stocks: make(map[string]*inventory.Stock)}
}

func copyStock(s *inventory.Stock) *inventory.Stock {
	clone := *s
	clone.ClearDomainEvents()
	return &clone
}

func (r *fakeStockRepo) seed(productID, warehouseID uuid.UUID, physical string) *inventory.Stock {
	s, _ := inventory.NewStock(productID, warehouseID)
	if physical != "" {
		if _, err := s.Apply("SEED-"+uuid.NewString()[:8], inventory.MovementTypeEnter, mustDecimal(physical), mustDecimal("1"), time.Now()); err != nil {
			panic(err)
		}
		s.ClearDomainEvents()
	}
	r.stocks[stockKey(productID, warehouseID)] = s
	return s
}

func (r *fakeStockRepo) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Stock, error) {
	for _, s := range r.stocks {
		if s.ID == id {
			return copyStock(s), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeStockRepo) FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.Stock, error) {
	s, ok := r.stocks[stockKey(productID, warehouseID)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return copyStock(s), nil
}

func (r *fakeStockRepo) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]inventory.Stock, error) {
	var out []inventory.Stock
	for _, s := range r.stocks {
		if s.WarehouseID == warehouseID {
			out = append(out, *copyStock(s))
		}
	}
	return out, nil
}

func (r *fakeStockRepo) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.Stock, error) {
	var out []inventory.Stock
	for _, s := range r.stocks {
		out = append(out, *copyStock(s))
	}
	return out, nil
}

func (r *fakeStockRepo) FindBelowAlert(ctx context.Context, filter shared.Filter) ([]inventory.Stock, error) {
	return nil, nil
}

func (r *fakeStockRepo) GetOrCreate(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.Stock, error) {
	if s, ok := r.stocks[stockKey(productID, warehouseID)]; ok {
		return copyStock(s), nil
	}
	s, err := inventory.NewStock(productID, warehouseID)
	if err != nil {
		return nil, err
	}
	r.stocks[stockKey(productID, warehouseID)] = copyStock(s)
	return s, nil
}

func (r *fakeStockRepo) Save(ctx context.Context, s *inventory.Stock) error {
	r.stocks[stockKey(s.ProductID, s.WarehouseID)] = copyStock(s)
	return nil
}

func (r *fakeStockRepo) SaveWithLock(ctx context.Context, s *inventory.Stock) error {
	existing, ok := r.stocks[stockKey(s.ProductID, s.WarehouseID)]
	if !ok {
		return shared.ErrNotFound
	}
	if existing.Version != s.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	r.stocks[stockKey(s.ProductID, s.WarehouseID)] = copyStock(s)
	return nil
}

func (r *fakeStockRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return int64(len(r.stocks)), nil
}

type fakeMovementRepo struct {
	movements []inventory.Movement
	codeSeq   int
}

func newFakeMovementRepo() *fakeMovementRepo {
	return &fakeMovementRepo{}
}

func (r *fakeMovementRepo) Create(ctx context.Context, m *inventory.Movement) error {
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeMovementRepo) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Movement, error) {
	for i := range r.movements {
		if r.movements[i].ID == id {
			clone := r.movements[i]
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeMovementRepo) FindByStock(ctx context.Context, stockID uuid.UUID, filter shared.Filter) ([]inventory.Movement, error) {
	var out []inventory.Movement
	for _, m := range r.movements {
		if m.StockID == stockID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID, filter shared.Filter) ([]inventory.Movement, error) {
	var out []inventory.Movement
	for _, m := range r.movements {
		if m.ProductID == productID && m.WarehouseID == warehouseID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.Movement, error) {
	return append([]inventory.Movement(nil), r.movements...), nil
}

func (r *fakeMovementRepo) FindInboundBefore(ctx context.Context, productID, warehouseID uuid.UUID, asOf time.Time) ([]inventory.Movement, error) {
	var out []inventory.Movement
	for _, m := range r.movements {
		if m.ProductID == productID && m.WarehouseID == warehouseID &&
			m.MovementType.IsInbound() && !m.OccurredAt.After(asOf) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return int64(len(r.movements)), nil
}

func (r *fakeMovementRepo) GenerateCode(ctx context.Context, at time.Time) (string, error) {
	r.codeSeq++
	return fmt.Sprintf("MV-%s-%05d", at.Format("200601"), r.codeSeq), nil
}

func (r *fakeMovementRepo) outboundCodes() []string {
	var out []string
	for _, m := range r.movements {
		if m.MovementType.IsOutbound() {
			out = append(out, m.Code)
		}
	}
	return out
}

// snapshotScope emulates transactional rollback for the fakes: on error the
// stores are restored to their pre-transaction content.
type snapshotScope struct {
	billings  *fakeBillingRepo
	stocks    *fakeStockRepo
	movements *fakeMovementRepo
	products  *fakeProductRepo
}

func (s *snapshotScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	billingSnap := make(map[uuid.UUID]*billing.Billing, len(s.billings.docs))
	for id, doc := range s.billings.docs {
		billingSnap[id] = copyBilling(doc)
	}
	stockSnap := make(map[string]*inventory.Stock, len(s.stocks.stocks))
	for k, st := range s.stocks.stocks {
		stockSnap[k] = copyStock(st)
	}
	movementSnap := append([]inventory.Movement(nil), s.movements.movements...)

	if err := fn(s); err != nil {
		s.billings.docs = billingSnap
		s.stocks.stocks = stockSnap
		s.movements.movements = movementSnap
		return err
	}
	return nil
}

func (s *snapshotScope) BillingRepo() billing.Repository            { return s.billings }
func (s *snapshotScope) StockRepo() inventory.StockRepository       { return s.stocks }
func (s *snapshotScope) MovementRepo() inventory.MovementRepository { return s.movements }
func (s *snapshotScope) ProductRepo() catalog.ProductRepository     { return s.products }

var _ TransactionScope = (*snapshotScope)(nil)
var _ TransactionalRepositories = (*snapshotScope)(nil)

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
