package inventory

import (
	"errors"
	"testing"
	"time"

	"github.com/gestock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func newTestStock(t *testing.T) *Stock {
	t.Helper()
	s, err := NewStock(uuid.New(), uuid.New())
	require.NoError(t, err)
	return s
}

func TestNewStock(t *testing.T) {
	s := newTestStock(t)
	assert.True(t, s.PhysicalQuantity.IsZero())
	assert.True(t, s.VirtualQuantity.IsZero())
	assert.True(t, s.UnitPurchasePrice.IsZero())

	_, err := NewStock(uuid.Nil, uuid.New())
	assert.Error(t, err)
	_, err = NewStock(uuid.New(), uuid.Nil)
	assert.Error(t, err)
}

func TestStockApplyInbound(t *testing.T) {
	s := newTestStock(t)

	m, err := s.Apply("MV-202608-00001", MovementTypeEnter, d("5"), d("10.50"), time.Now())
	require.NoError(t, err)

	assert.True(t, s.PhysicalQuantity.Equal(d("5")))
	assert.True(t, s.VirtualQuantity.Equal(d("5")))
	assert.True(t, s.UnitPurchasePrice.Equal(d("10.50")))

	assert.True(t, m.PhysicalBefore.IsZero())
	assert.True(t, m.PhysicalAfter.Equal(d("5")))
	assert.True(t, m.VirtualBefore.IsZero())
	assert.True(t, m.VirtualAfter.Equal(d("5")))
	assert.True(t, m.Amount.Equal(d("52.5")))
}

func TestStockApplyOutbound(t *testing.T) {
	t.Run("decrements both balances", func(t *testing.T) {
		s := newTestStock(t)
		_, err := s.Apply("MV-1", MovementTypeEnter, d("5"), d("10"), time.Now())
		require.NoError(t, err)

		m, err := s.Apply("MV-2", MovementTypeOut, d("2"), decimal.Zero, time.Now())
		require.NoError(t, err)

		assert.True(t, s.PhysicalQuantity.Equal(d("3")))
		assert.True(t, s.VirtualQuantity.Equal(d("3")))
		assert.True(t, m.PhysicalBefore.Equal(d("5")))
		assert.True(t, m.PhysicalAfter.Equal(d("3")))
	})

	t.Run("insufficient stock is a hard failure", func(t *testing.T) {
		s := newTestStock(t)
		_, err := s.Apply("MV-1", MovementTypeEnter, d("2"), d("10"), time.Now())
		require.NoError(t, err)

		before := s.PhysicalQuantity
		_, err = s.Apply("MV-2", MovementTypeOut, d("3"), decimal.Zero, time.Now())
		require.Error(t, err)

		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "INSUFFICIENT_STOCK", de.Code)
		assert.True(t, s.PhysicalQuantity.Equal(before), "failed movement must not touch balances")
	})

	t.Run("exact drain to zero allowed", func(t *testing.T) {
		s := newTestStock(t)
		_, err := s.Apply("MV-1", MovementTypeReception, d("4"), d("7"), time.Now())
		require.NoError(t, err)
		_, err = s.Apply("MV-2", MovementTypeShipping, d("4"), decimal.Zero, time.Now())
		require.NoError(t, err)
		assert.True(t, s.PhysicalQuantity.IsZero())
	})
}

func TestStockApplyCorrection(t *testing.T) {
	s := newTestStock(t)
	_, err := s.Apply("MV-1", MovementTypeEnter, d("10"), d("5"), time.Now())
	require.NoError(t, err)

	m, err := s.Apply("MV-2", MovementTypeCorrection, d("7"), decimal.Zero, time.Now())
	require.NoError(t, err)

	// corrections set the physical count absolutely
	assert.True(t, s.PhysicalQuantity.Equal(d("7")))
	// the virtual balance is untouched
	assert.True(t, s.VirtualQuantity.Equal(d("10")))
	assert.True(t, m.PhysicalBefore.Equal(d("10")))
	assert.True(t, m.PhysicalAfter.Equal(d("7")))

	// a correction may also set the count to zero
	_, err = s.Apply("MV-3", MovementTypeCorrection, decimal.Zero, decimal.Zero, time.Now())
	require.NoError(t, err)
	assert.True(t, s.PhysicalQuantity.IsZero())
}

func TestStockApplyValidation(t *testing.T) {
	s := newTestStock(t)

	_, err := s.Apply("MV-1", MovementType("BAD"), d("1"), decimal.Zero, time.Now())
	assert.Error(t, err)

	_, err = s.Apply("MV-2", MovementTypeEnter, d("-1"), decimal.Zero, time.Now())
	assert.Error(t, err)

	_, err = s.Apply("MV-3", MovementTypeEnter, decimal.Zero, decimal.Zero, time.Now())
	assert.Error(t, err, "inbound quantity must be positive")

	_, err = s.Apply("MV-4", MovementTypeOut, decimal.Zero, decimal.Zero, time.Now())
	assert.Error(t, err, "outbound quantity must be positive")
}

func TestStockPurchasePriceTracking(t *testing.T) {
	s := newTestStock(t)
	_, err := s.Apply("MV-1", MovementTypeEnter, d("5"), d("10"), time.Now())
	require.NoError(t, err)
	_, err = s.Apply("MV-2", MovementTypeReception, d("5"), d("12"), time.Now())
	require.NoError(t, err)
	assert.True(t, s.UnitPurchasePrice.Equal(d("12")), "latest positive price wins")

	// an inbound without a price keeps the last known one
	_, err = s.Apply("MV-3", MovementTypeEnter, d("1"), decimal.Zero, time.Now())
	require.NoError(t, err)
	assert.True(t, s.UnitPurchasePrice.Equal(d("12")))
}

func TestStockValuation(t *testing.T) {
	s := newTestStock(t)
	_, err := s.Apply("MV-1", MovementTypeEnter, d("3"), d("10.555"), time.Now())
	require.NoError(t, err)

	v := s.Valuation()
	assert.Equal(t, "31.67", v.StringFixed(2))
}

func TestMovementTypeHelpers(t *testing.T) {
	assert.True(t, MovementTypeEnter.IsInbound())
	assert.True(t, MovementTypeReception.IsInbound())
	assert.True(t, MovementTypeOut.IsOutbound())
	assert.True(t, MovementTypeShipping.IsOutbound())
	assert.False(t, MovementTypeCorrection.IsInbound())
	assert.False(t, MovementTypeCorrection.IsOutbound())

	assert.True(t, MovementTypeOut.SignedQuantity(d("3")).Equal(d("-3")))
	assert.True(t, MovementTypeEnter.SignedQuantity(d("3")).Equal(d("3")))
	assert.True(t, MovementTypeCorrection.SignedQuantity(d("3")).Equal(d("3")))
}
