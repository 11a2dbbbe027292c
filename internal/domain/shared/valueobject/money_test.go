package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyArithmetic(t *testing.T) {
	a := NewMoneyEURFromFloat(10.50)
	b := NewMoneyEURFromFloat(4.25)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "14.75", sum.StringFixed(2))

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, "6.25", diff.StringFixed(2))

	product := a.Multiply(decimal.NewFromInt(3))
	assert.Equal(t, "31.50", product.StringFixed(2))

	quotient, err := a.Divide(decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.Equal(t, "5.25", quotient.StringFixed(2))

	_, err = a.Divide(decimal.Zero)
	assert.Error(t, err)
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	eur := NewMoneyEURFromFloat(10)
	usd, err := NewMoney(decimal.NewFromInt(10), USD)
	require.NoError(t, err)

	_, err = eur.Add(usd)
	assert.Error(t, err)
	_, err = eur.Subtract(usd)
	assert.Error(t, err)
	_, err = eur.LessThan(usd)
	assert.Error(t, err)
}

func TestMoneyComparison(t *testing.T) {
	small := NewMoneyEURFromFloat(5)
	big := NewMoneyEURFromFloat(10)

	less, err := small.LessThan(big)
	require.NoError(t, err)
	assert.True(t, less)

	gte, err := big.GreaterThanOrEqual(small)
	require.NoError(t, err)
	assert.True(t, gte)

	assert.True(t, small.Equals(NewMoneyEURFromFloat(5)))
	assert.False(t, small.Equals(big))
}

func TestMoneyRounding(t *testing.T) {
	m := NewMoneyEUR(decimal.RequireFromString("10.555"))
	assert.Equal(t, "10.56", m.Round(2).StringFixed(2))

	m = NewMoneyEUR(decimal.RequireFromString("10.554"))
	assert.Equal(t, "10.55", m.Round(2).StringFixed(2))
}

func TestMoneyPercentage(t *testing.T) {
	m := NewMoneyEURFromFloat(200)
	assert.Equal(t, "36.00", m.CalculatePercentage(decimal.NewFromInt(18)).StringFixed(2))
	assert.Equal(t, "180.00", m.ApplyDiscount(decimal.NewFromInt(10)).StringFixed(2))
}

func TestMoneyJSON(t *testing.T) {
	m := NewMoneyEURFromFloat(12.34)
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"12.34","currency":"EUR"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoneyScan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("42.50"))
	assert.Equal(t, "42.50", m.StringFixed(2))
	assert.Equal(t, DefaultCurrency, m.Currency())

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())

	assert.Error(t, m.Scan(3.14))
}
