package inventory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gestock/backend/internal/domain/inventory"
	"github.com/gestock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type memStockRepo struct {
	stocks map[string]*inventory.Stock
}

func newMemStockRepo() *memStockRepo {
	return &memStockRepo{stocks: make(map[string]*inventory.Stock)}
}

func pairKey(productID, warehouseID uuid.UUID) string {
	return productID.String() + "/" + warehouseID.String()
}

func cloneStock(s *inventory.Stock) *inventory.Stock {
	clone := *s
	clone.ClearDomainEvents()
	return &clone
}

func (r *memStockRepo) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Stock, error) {
	for _, s := range r.stocks {
		if s.ID == id {
			return cloneStock(s), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memStockRepo) FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.Stock, error) {
	s, ok := r.stocks[pairKey(productID, warehouseID)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneStock(s), nil
}

func (r *memStockRepo) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]inventory.Stock, error) {
	var out []inventory.Stock
	for _, s := range r.stocks {
		if s.WarehouseID == warehouseID {
			out = append(out, *cloneStock(s))
		}
	}
	return out, nil
}

func (r *memStockRepo) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.Stock, error) {
	var out []inventory.Stock
	for _, s := range r.stocks {
		out = append(out, *cloneStock(s))
	}
	return out, nil
}

func (r *memStockRepo) FindBelowAlert(ctx context.Context, filter shared.Filter) ([]inventory.Stock, error) {
	return nil, nil
}

func (r *memStockRepo) GetOrCreate(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.Stock, error) {
	if s, ok := r.stocks[pairKey(productID, warehouseID)]; ok {
		return cloneStock(s), nil
	}
	s, err := inventory.NewStock(productID, warehouseID)
	if err != nil {
		return nil, err
	}
	r.stocks[pairKey(productID, warehouseID)] = cloneStock(s)
	return s, nil
}

func (r *memStockRepo) Save(ctx context.Context, s *inventory.Stock) error {
	r.stocks[pairKey(s.ProductID, s.WarehouseID)] = cloneStock(s)
	return nil
}

func (r *memStockRepo) SaveWithLock(ctx context.Context, s *inventory.Stock) error {
	existing, ok := r.stocks[pairKey(s.ProductID, s.WarehouseID)]
	if !ok {
		return shared.ErrNotFound
	}
	if existing.Version != s.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	r.stocks[pairKey(s.ProductID, s.WarehouseID)] = cloneStock(s)
	return nil
}

func (r *memStockRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return int64(len(r.stocks)), nil
}

type memMovementRepo struct {
	movements []inventory.Movement
	codeSeq   int
}

func (r *memMovementRepo) Create(ctx context.Context, m *inventory.Movement) error {
	r.movements = append(r.movements, *m)
	return nil
}

func (r *memMovementRepo) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Movement, error) {
	for i := range r.movements {
		if r.movements[i].ID == id {
			clone := r.movements[i]
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memMovementRepo) FindByStock(ctx context.Context, stockID uuid.UUID, filter shared.Filter) ([]inventory.Movement, error) {
	var out []inventory.Movement
	for _, m := range r.movements {
		if m.StockID == stockID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMovementRepo) FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID, filter shared.Filter) ([]inventory.Movement, error) {
	var out []inventory.Movement
	for _, m := range r.movements {
		if m.ProductID == productID && m.WarehouseID == warehouseID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMovementRepo) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.Movement, error) {
	return append([]inventory.Movement(nil), r.movements...), nil
}

func (r *memMovementRepo) FindInboundBefore(ctx context.Context, productID, warehouseID uuid.UUID, asOf time.Time) ([]inventory.Movement, error) {
	var out []inventory.Movement
	for _, m := range r.movements {
		if m.ProductID == productID && m.WarehouseID == warehouseID &&
			m.MovementType.IsInbound() && !m.OccurredAt.After(asOf) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMovementRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return int64(len(r.movements)), nil
}

func (r *memMovementRepo) GenerateCode(ctx context.Context, at time.Time) (string, error) {
	r.codeSeq++
	return fmt.Sprintf("MV-%s-%05d", at.Format("200601"), r.codeSeq), nil
}

func newTestStockService() (*StockService, *memStockRepo, *memMovementRepo) {
	stocks := newMemStockRepo()
	movements := &memMovementRepo{}
	scope := NewNoOpTransactionScope(stocks, movements)
	return NewStockService(stocks, movements, scope), stocks, movements
}

func enter(t *testing.T, svc *StockService, productID, warehouseID uuid.UUID, qty, price string) *MovementResponse {
	t.Helper()
	resp, err := svc.ApplyMovement(context.Background(), ApplyMovementRequest{
		ProductID:    productID,
		WarehouseID:  warehouseID,
		MovementType: "ENTER",
		Quantity:     d(qty),
		UnitPrice:    d(price),
	})
	require.NoError(t, err)
	return resp
}

func TestStockServiceApplyMovement(t *testing.T) {
	t.Run("inbound creates the stock row", func(t *testing.T) {
		svc, stocks, _ := newTestStockService()
		productID, warehouseID := uuid.New(), uuid.New()

		resp := enter(t, svc, productID, warehouseID, "5", "10")
		assert.True(t, resp.PhysicalAfter.Equal(d("5")))
		assert.Contains(t, resp.Code, "MV-")

		stock, err := stocks.FindByProductAndWarehouse(context.Background(), productID, warehouseID)
		require.NoError(t, err)
		assert.True(t, stock.PhysicalQuantity.Equal(d("5")))
		assert.True(t, stock.UnitPurchasePrice.Equal(d("10")))
	})

	t.Run("outbound without a stock row fails", func(t *testing.T) {
		svc, _, _ := newTestStockService()

		_, err := svc.ApplyMovement(context.Background(), ApplyMovementRequest{
			ProductID:    uuid.New(),
			WarehouseID:  uuid.New(),
			MovementType: "OUT",
			Quantity:     d("1"),
		})
		require.Error(t, err)
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "INSUFFICIENT_STOCK", de.Code)
	})

	t.Run("outbound beyond balance fails and writes nothing", func(t *testing.T) {
		svc, stocks, movements := newTestStockService()
		productID, warehouseID := uuid.New(), uuid.New()
		enter(t, svc, productID, warehouseID, "2", "10")

		_, err := svc.ApplyMovement(context.Background(), ApplyMovementRequest{
			ProductID:    productID,
			WarehouseID:  warehouseID,
			MovementType: "OUT",
			Quantity:     d("3"),
		})
		require.Error(t, err)

		stock, err := stocks.FindByProductAndWarehouse(context.Background(), productID, warehouseID)
		require.NoError(t, err)
		assert.True(t, stock.PhysicalQuantity.Equal(d("2")))
		assert.Len(t, movements.movements, 1, "only the seed movement exists")
	})

	t.Run("correction sets the physical count", func(t *testing.T) {
		svc, stocks, _ := newTestStockService()
		productID, warehouseID := uuid.New(), uuid.New()
		enter(t, svc, productID, warehouseID, "10", "5")

		_, err := svc.ApplyMovement(context.Background(), ApplyMovementRequest{
			ProductID:    productID,
			WarehouseID:  warehouseID,
			MovementType: "CORRECTION",
			Quantity:     d("7"),
		})
		require.NoError(t, err)

		stock, err := stocks.FindByProductAndWarehouse(context.Background(), productID, warehouseID)
		require.NoError(t, err)
		assert.True(t, stock.PhysicalQuantity.Equal(d("7")))
		assert.True(t, stock.VirtualQuantity.Equal(d("10")))
	})

	t.Run("invalid movement type rejected", func(t *testing.T) {
		svc, _, _ := newTestStockService()
		_, err := svc.ApplyMovement(context.Background(), ApplyMovementRequest{
			ProductID:    uuid.New(),
			WarehouseID:  uuid.New(),
			MovementType: "TELEPORT",
			Quantity:     d("1"),
		})
		assert.Error(t, err)
	})
}

func TestStockServiceMovementHistory(t *testing.T) {
	svc, _, _ := newTestStockService()
	productID, warehouseID := uuid.New(), uuid.New()
	enter(t, svc, productID, warehouseID, "5", "10")
	enter(t, svc, productID, warehouseID, "5", "12")

	movements, total, err := svc.Movements(context.Background(), MovementListFilter{
		ProductID:   &productID,
		WarehouseID: &warehouseID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, movements, 2)
}

func TestStockServiceWeightedAverageCost(t *testing.T) {
	svc, _, _ := newTestStockService()
	productID, warehouseID := uuid.New(), uuid.New()
	enter(t, svc, productID, warehouseID, "10", "5")
	enter(t, svc, productID, warehouseID, "10", "7")

	resp, err := svc.WeightedAverageCost(context.Background(), productID, warehouseID, time.Now())
	require.NoError(t, err)
	assert.True(t, resp.WeightedAverageCost.Equal(d("6")), "got %s", resp.WeightedAverageCost)
}

func TestStockServiceWeightedAverageCostIgnoresOutbound(t *testing.T) {
	svc, _, _ := newTestStockService()
	productID, warehouseID := uuid.New(), uuid.New()
	enter(t, svc, productID, warehouseID, "10", "5")

	_, err := svc.ApplyMovement(context.Background(), ApplyMovementRequest{
		ProductID:    productID,
		WarehouseID:  warehouseID,
		MovementType: "OUT",
		Quantity:     d("4"),
	})
	require.NoError(t, err)

	resp, err := svc.WeightedAverageCost(context.Background(), productID, warehouseID, time.Now())
	require.NoError(t, err)
	assert.True(t, resp.WeightedAverageCost.Equal(d("5")), "outbound movements never shift the average")
}

func TestStockServiceList(t *testing.T) {
	svc, _, _ := newTestStockService()
	warehouseID := uuid.New()
	enter(t, svc, uuid.New(), warehouseID, "5", "10")
	enter(t, svc, uuid.New(), warehouseID, "3", "20")
	enter(t, svc, uuid.New(), uuid.New(), "1", "30")

	byWarehouse, _, err := svc.List(context.Background(), StockListFilter{WarehouseID: &warehouseID})
	require.NoError(t, err)
	assert.Len(t, byWarehouse, 2)

	all, total, err := svc.List(context.Background(), StockListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, int64(3), total)
}
