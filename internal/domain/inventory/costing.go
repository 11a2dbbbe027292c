package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostingService derives the weighted average purchase cost (PMP) of a
// (product, warehouse) pair from its inbound movement history. The value is
// always computed on demand, never cached on the stock row.
type CostingService struct {
	movements MovementRepository
}

// NewCostingService creates a new costing service
func NewCostingService(movements MovementRepository) *CostingService {
	return &CostingService{movements: movements}
}

// WeightedAverageCost computes the quantity-weighted average of the unit
// prices of all inbound movements up to asOf. Returns zero when no inbound
// quantity exists.
func (s *CostingService) WeightedAverageCost(ctx context.Context, productID, warehouseID uuid.UUID, asOf time.Time) (decimal.Decimal, error) {
	if asOf.IsZero() {
		asOf = time.Now()
	}

	inbound, err := s.movements.FindInboundBefore(ctx, productID, warehouseID, asOf)
	if err != nil {
		return decimal.Zero, err
	}

	totalQuantity := decimal.Zero
	totalValue := decimal.Zero
	for _, m := range inbound {
		totalQuantity = totalQuantity.Add(m.Quantity)
		totalValue = totalValue.Add(m.Quantity.Mul(m.UnitPrice))
	}

	if totalQuantity.IsZero() {
		return decimal.Zero, nil
	}

	return totalValue.Div(totalQuantity).Round(4), nil
}
