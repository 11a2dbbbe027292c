package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/gestock/backend/internal/domain/billing"
	"github.com/gestock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupBillingTestDB creates an in-memory SQLite database for testing
func setupBillingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&billing.Billing{}, &billing.BillingItem{}, &billing.BillingPayment{}, &Sequence{})
	require.NoError(t, err)

	return db
}

func newDraftInvoice(t *testing.T, code string) *billing.Billing {
	t.Helper()

	doc, err := billing.NewBilling(code, billing.BillingTypeSaleInvoice, uuid.New(), time.Now(), "test invoice")
	require.NoError(t, err)

	warehouseID := uuid.New()
	_, err = doc.AddItem(uuid.New(), &warehouseID, billing.ItemTypeProduct, "Widget",
		decimal.RequireFromString("100"), decimal.RequireFromString("2"),
		decimal.Zero, decimal.RequireFromString("20"))
	require.NoError(t, err)

	return doc
}

func TestGormBillingRepository_SaveAndLoadAggregate(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormBillingRepository(db)
	ctx := context.Background()

	doc := newDraftInvoice(t, "SI-202608-00001")
	require.NoError(t, repo.Save(ctx, doc))

	t.Run("loads items with the root", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, doc.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Items, 1)
		assert.Equal(t, "Widget", loaded.Items[0].Label)
		assert.True(t, loaded.AmountIncludingVat.Equal(decimal.RequireFromString("240")))
	})

	t.Run("finds by code", func(t *testing.T) {
		loaded, err := repo.FindByCode(ctx, "SI-202608-00001")
		require.NoError(t, err)
		assert.Equal(t, doc.ID, loaded.ID)
	})

	t.Run("unknown id maps to not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormBillingRepository_ChildSync(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormBillingRepository(db)
	ctx := context.Background()

	doc := newDraftInvoice(t, "SI-202608-00002")
	secondItem, err := doc.AddItem(uuid.New(), nil, billing.ItemTypeService, "Installation",
		decimal.RequireFromString("50"), decimal.RequireFromString("1"),
		decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, doc))

	t.Run("removed items disappear from the database", func(t *testing.T) {
		require.NoError(t, doc.RemoveItem(secondItem.ID))
		require.NoError(t, repo.Save(ctx, doc))

		loaded, err := repo.FindByID(ctx, doc.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Items, 1)
		assert.Equal(t, "Widget", loaded.Items[0].Label)
	})

	t.Run("payments ride along with the aggregate", func(t *testing.T) {
		require.NoError(t, doc.Validate())
		_, err := doc.AddPayment("PAY-202608-00001", decimal.RequireFromString("100"), time.Now(), "first installment")
		require.NoError(t, err)
		doc.IncrementVersion()
		require.NoError(t, repo.SaveWithLock(ctx, doc))

		loaded, err := repo.FindByID(ctx, doc.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Payments, 1)
		assert.True(t, loaded.AllocatedPrice.Equal(decimal.RequireFromString("100")))
		assert.Equal(t, billing.BillingStatusBegin, loaded.Status)
	})
}

func TestGormBillingRepository_SaveWithLock(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormBillingRepository(db)
	ctx := context.Background()

	doc := newDraftInvoice(t, "SI-202608-00003")
	require.NoError(t, repo.Save(ctx, doc))

	t.Run("rejects a stale version", func(t *testing.T) {
		stale := *doc
		stale.Version = doc.Version + 3

		err := repo.SaveWithLock(ctx, &stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestGormBillingRepository_FindChildren(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormBillingRepository(db)
	ctx := context.Background()

	parent := newDraftInvoice(t, "SI-202608-00004")
	require.NoError(t, parent.Validate())
	require.NoError(t, repo.Save(ctx, parent))

	credit, err := billing.NewCreditNote(parent, "AVOIR-SI-202608-00004-1", true, decimal.Zero, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, credit))

	children, err := repo.FindChildren(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, credit.ID, children[0].ID)
	assert.Equal(t, billing.BillingTypeCreditInvoice, children[0].BillingType)
}

func TestGormBillingRepository_CountByStatus(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormBillingRepository(db)
	ctx := context.Background()

	draft := newDraftInvoice(t, "SI-202608-00005")
	require.NoError(t, repo.Save(ctx, draft))

	validated := newDraftInvoice(t, "SI-202608-00006")
	require.NoError(t, validated.Validate())
	require.NoError(t, repo.Save(ctx, validated))

	drafts, err := repo.CountByStatus(ctx, billing.BillingStatusDraft)
	require.NoError(t, err)
	assert.Equal(t, int64(1), drafts)

	valid, err := repo.CountByStatus(ctx, billing.BillingStatusValidate)
	require.NoError(t, err)
	assert.Equal(t, int64(1), valid)
}

func TestGormBillingRepository_GenerateCode(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormBillingRepository(db)
	ctx := context.Background()

	at := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)

	t.Run("codes are sequential within a type and period", func(t *testing.T) {
		first, err := repo.GenerateCode(ctx, billing.BillingTypeSaleInvoice, at)
		require.NoError(t, err)
		assert.Equal(t, "SI-202608-00001", first)

		second, err := repo.GenerateCode(ctx, billing.BillingTypeSaleInvoice, at)
		require.NoError(t, err)
		assert.Equal(t, "SI-202608-00002", second)
	})

	t.Run("types count independently", func(t *testing.T) {
		code, err := repo.GenerateCode(ctx, billing.BillingTypeDeliveryNote, at)
		require.NoError(t, err)
		assert.Equal(t, "DI-202608-00001", code)
	})

	t.Run("payment codes use their own sequence", func(t *testing.T) {
		code, err := repo.GeneratePaymentCode(ctx, at)
		require.NoError(t, err)
		assert.Equal(t, "PAY-202608-00001", code)
	})
}
