package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBilling(t *testing.T) *Billing {
	t.Helper()
	b, err := NewBilling("SI-202608-00001", BillingTypeSaleInvoice, uuid.New(), time.Now(), "test invoice")
	require.NoError(t, err)
	return b
}

func addTestItem(t *testing.T, b *Billing, unitPrice, quantity, discount, vat string) *BillingItem {
	t.Helper()
	wh := uuid.New()
	item, err := b.AddItem(uuid.New(), &wh, ItemTypeProduct, "widget", d(unitPrice), d(quantity), d(discount), d(vat))
	require.NoError(t, err)
	return item
}

func TestNewBilling(t *testing.T) {
	t.Run("creates draft with zero totals", func(t *testing.T) {
		b := newTestBilling(t)
		assert.Equal(t, BillingStatusDraft, b.Status)
		assert.True(t, b.AmountIncludingVat.IsZero())
		assert.True(t, b.AllocatedPrice.IsZero())
		assert.True(t, b.RemainingPrice.IsZero())
		assert.Equal(t, 1, b.Version)
		assert.Len(t, b.GetDomainEvents(), 1)
	})

	t.Run("rejects missing code", func(t *testing.T) {
		_, err := NewBilling("", BillingTypeSaleInvoice, uuid.New(), time.Now(), "")
		assert.Error(t, err)
	})

	t.Run("rejects invalid type", func(t *testing.T) {
		_, err := NewBilling("X-1", BillingType("BAD"), uuid.New(), time.Now(), "")
		assert.Error(t, err)
	})

	t.Run("rejects nil third party", func(t *testing.T) {
		_, err := NewBilling("X-1", BillingTypeSaleInvoice, uuid.Nil, time.Now(), "")
		assert.Error(t, err)
	})
}

func TestBillingStatusTransitions(t *testing.T) {
	tests := []struct {
		from    BillingStatus
		to      BillingStatus
		allowed bool
	}{
		{BillingStatusDraft, BillingStatusValidate, true},
		{BillingStatusDraft, BillingStatusCreditBack, true},
		{BillingStatusDraft, BillingStatusPaid, false},
		{BillingStatusDraft, BillingStatusBegin, false},
		{BillingStatusValidate, BillingStatusBegin, true},
		{BillingStatusValidate, BillingStatusPaid, true},
		{BillingStatusValidate, BillingStatusAbandoned, true},
		{BillingStatusValidate, BillingStatusPaidPartially, true},
		{BillingStatusValidate, BillingStatusCreditNote, true},
		{BillingStatusValidate, BillingStatusDraft, false},
		{BillingStatusBegin, BillingStatusPaidPartially, true},
		{BillingStatusBegin, BillingStatusPaid, true},
		{BillingStatusBegin, BillingStatusValidate, true},
		{BillingStatusBegin, BillingStatusAbandoned, false},
		{BillingStatusPaidPartially, BillingStatusBegin, true},
		{BillingStatusPaidPartially, BillingStatusPaid, true},
		{BillingStatusPaidPartially, BillingStatusValidate, true},
		{BillingStatusAbandoned, BillingStatusValidate, true},
		{BillingStatusAbandoned, BillingStatusPaid, false},
		{BillingStatusCreditNote, BillingStatusPaid, true},
		{BillingStatusCreditNote, BillingStatusValidate, false},
		{BillingStatusPaid, BillingStatusCreditNote, true},
		{BillingStatusPaid, BillingStatusValidate, false},
		{BillingStatusCreditBack, BillingStatusDraft, false},
		{BillingStatusCreditBack, BillingStatusPaid, false},
	}

	for _, tt := range tests {
		name := string(tt.from) + "_to_" + string(tt.to)
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestBillingAddItem(t *testing.T) {
	t.Run("recomputes totals from items", func(t *testing.T) {
		b := newTestBilling(t)
		addTestItem(t, b, "1000", "2", "0", "18")

		assert.True(t, b.AmountExcludingVat.Equal(d("2000")), "excl: %s", b.AmountExcludingVat)
		assert.True(t, b.VatAmount.Equal(d("360")), "vat: %s", b.VatAmount)
		assert.True(t, b.AmountIncludingVat.Equal(d("2360")), "ttc: %s", b.AmountIncludingVat)
		assert.True(t, b.RemainingPrice.Equal(d("2360")))
	})

	t.Run("service line without warehouse", func(t *testing.T) {
		b := newTestBilling(t)
		_, err := b.AddItem(uuid.New(), nil, ItemTypeService, "consulting", d("500"), d("1"), d("0"), d("0"))
		require.NoError(t, err)
		assert.True(t, b.AmountIncludingVat.Equal(d("500")))
	})

	t.Run("product line requires warehouse", func(t *testing.T) {
		b := newTestBilling(t)
		_, err := b.AddItem(uuid.New(), nil, ItemTypeProduct, "widget", d("10"), d("1"), d("0"), d("0"))
		assert.Error(t, err)
	})

	t.Run("rejected after payment settles the document", func(t *testing.T) {
		b := newTestBilling(t)
		addTestItem(t, b, "100", "1", "0", "0")
		require.NoError(t, b.Validate())
		_, err := b.AddPayment("PAY-1", d("100"), time.Now(), "")
		require.NoError(t, err)
		require.Equal(t, BillingStatusPaid, b.Status)

		_, err = b.AddItem(uuid.New(), nil, ItemTypeService, "late line", d("10"), d("1"), d("0"), d("0"))
		assert.Error(t, err)
	})
}

func TestBillingItemRoundTrip(t *testing.T) {
	b := newTestBilling(t)
	item := addTestItem(t, b, "1000", "2", "0", "18")
	addTestItem(t, b, "50", "4", "10", "18")

	require.NoError(t, b.RemoveItem(item.ID))
	remaining := b.Items[0]
	require.NoError(t, b.RemoveItem(remaining.ID))

	assert.True(t, b.AmountExcludingVat.IsZero())
	assert.True(t, b.VatAmount.IsZero())
	assert.True(t, b.AmountIncludingVat.IsZero())
	assert.True(t, b.RemainingPrice.IsZero())
	assert.Empty(t, b.Items)
}

func TestBillingUpdateItem(t *testing.T) {
	b := newTestBilling(t)
	item := addTestItem(t, b, "1000", "2", "0", "18")

	require.NoError(t, b.UpdateItem(item.ID, "widget v2", d("500"), d("1"), d("0"), d("18")))
	assert.True(t, b.AmountExcludingVat.Equal(d("500")))
	assert.True(t, b.AmountIncludingVat.Equal(d("590")))

	err := b.UpdateItem(uuid.New(), "ghost", d("1"), d("1"), d("0"), d("0"))
	assert.Error(t, err)
}

func TestBillingValidate(t *testing.T) {
	t.Run("draft with items", func(t *testing.T) {
		b := newTestBilling(t)
		addTestItem(t, b, "100", "1", "0", "18")
		require.NoError(t, b.Validate())
		assert.Equal(t, BillingStatusValidate, b.Status)
	})

	t.Run("empty draft rejected", func(t *testing.T) {
		b := newTestBilling(t)
		assert.Error(t, b.Validate())
	})

	t.Run("already validated rejected", func(t *testing.T) {
		b := newTestBilling(t)
		addTestItem(t, b, "100", "1", "0", "18")
		require.NoError(t, b.Validate())
		assert.Error(t, b.Validate())
	})
}

func TestBillingSetStatus(t *testing.T) {
	b := newTestBilling(t)
	addTestItem(t, b, "100", "1", "0", "0")
	require.NoError(t, b.Validate())

	require.NoError(t, b.SetStatus(BillingStatusAbandoned))
	assert.Equal(t, BillingStatusAbandoned, b.Status)

	require.NoError(t, b.SetStatus(BillingStatusValidate))
	assert.Equal(t, BillingStatusValidate, b.Status)

	assert.Error(t, b.SetStatus(BillingStatusPaid), "settlement statuses are payment driven")
	assert.Error(t, b.SetStatus(BillingStatusDraft))
}

func TestBillingPayments(t *testing.T) {
	t.Run("full payment settles the document", func(t *testing.T) {
		b := newTestBilling(t)
		addTestItem(t, b, "1000", "2", "0", "18")
		require.NoError(t, b.Validate())

		p, err := b.AddPayment("PAY-202608-00001", d("2360"), time.Now(), "wire transfer")
		require.NoError(t, err)

		assert.Equal(t, BillingStatusPaid, b.Status)
		assert.True(t, b.AllocatedPrice.Equal(d("2360")))
		assert.True(t, b.RemainingPrice.IsZero())
		assert.True(t, p.OldAmount.Equal(d("2360")), "snapshots the balance before payment")
	})

	t.Run("partial payment begins settlement", func(t *testing.T) {
		b := newTestBilling(t)
		addTestItem(t, b, "1000", "2", "0", "18")
		require.NoError(t, b.Validate())

		_, err := b.AddPayment("PAY-1", d("1000"), time.Now(), "")
		require.NoError(t, err)

		assert.Equal(t, BillingStatusBegin, b.Status)
		assert.True(t, b.RemainingPrice.Equal(d("1360")))
	})

	t.Run("overpayment rejected", func(t *testing.T) {
		b := newTestBilling(t)
		addTestItem(t, b, "100", "1", "0", "0")
		require.NoError(t, b.Validate())

		_, err := b.AddPayment("PAY-1", d("100.01"), time.Now(), "")
		assert.Error(t, err)
	})

	t.Run("zero and negative amounts rejected", func(t *testing.T) {
		b := newTestBilling(t)
		addTestItem(t, b, "100", "1", "0", "0")
		require.NoError(t, b.Validate())

		_, err := b.AddPayment("PAY-1", decimal.Zero, time.Now(), "")
		assert.Error(t, err)
		_, err = b.AddPayment("PAY-2", d("-5"), time.Now(), "")
		assert.Error(t, err)
	})

	t.Run("rejected on draft", func(t *testing.T) {
		b := newTestBilling(t)
		addTestItem(t, b, "100", "1", "0", "0")
		_, err := b.AddPayment("PAY-1", d("100"), time.Now(), "")
		assert.Error(t, err)
	})

	t.Run("removing the only payment restores validate", func(t *testing.T) {
		b := newTestBilling(t)
		addTestItem(t, b, "1000", "2", "0", "18")
		require.NoError(t, b.Validate())

		p, err := b.AddPayment("PAY-1", d("2360"), time.Now(), "")
		require.NoError(t, err)
		require.Equal(t, BillingStatusPaid, b.Status)

		require.NoError(t, b.RemovePayment(p.ID))
		assert.Equal(t, BillingStatusValidate, b.Status)
		assert.True(t, b.AllocatedPrice.IsZero())
		assert.True(t, b.RemainingPrice.Equal(d("2360")))
	})

	t.Run("removing one of several payments keeps settlement running", func(t *testing.T) {
		b := newTestBilling(t)
		addTestItem(t, b, "1000", "2", "0", "18")
		require.NoError(t, b.Validate())

		first, err := b.AddPayment("PAY-1", d("1000"), time.Now(), "")
		require.NoError(t, err)
		_, err = b.AddPayment("PAY-2", d("360"), time.Now(), "")
		require.NoError(t, err)

		require.NoError(t, b.RemovePayment(first.ID))
		assert.Equal(t, BillingStatusBegin, b.Status)
		assert.True(t, b.AllocatedPrice.Equal(d("360")))
		assert.True(t, b.RemainingPrice.Equal(d("2000")))
	})

	t.Run("remove unknown payment", func(t *testing.T) {
		b := newTestBilling(t)
		addTestItem(t, b, "100", "1", "0", "0")
		require.NoError(t, b.Validate())
		_, err := b.AddPayment("PAY-1", d("50"), time.Now(), "")
		require.NoError(t, err)

		assert.Error(t, b.RemovePayment(uuid.New()))
	})
}

func TestItemMutationReconcilesAllocation(t *testing.T) {
	// Adding a line after a partial payment must recompute the remaining
	// balance from the sum of payments, not drift incrementally.
	b := newTestBilling(t)
	addTestItem(t, b, "1000", "1", "0", "0")
	require.NoError(t, b.Validate())

	_, err := b.AddPayment("PAY-1", d("400"), time.Now(), "")
	require.NoError(t, err)
	require.True(t, b.RemainingPrice.Equal(d("600")))

	addTestItem(t, b, "500", "1", "0", "0")
	assert.True(t, b.AmountIncludingVat.Equal(d("1500")))
	assert.True(t, b.AllocatedPrice.Equal(d("400")))
	assert.True(t, b.RemainingPrice.Equal(d("1100")))
	assert.Equal(t, BillingStatusBegin, b.Status)
}
