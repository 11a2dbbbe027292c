package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/gestock/backend/internal/domain/catalog"
	"github.com/gestock/backend/internal/domain/inventory"
	"github.com/gestock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupInventoryTestDB creates an in-memory SQLite database for testing
func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&catalog.Product{}, &inventory.Stock{}, &inventory.Movement{}, &Sequence{})
	require.NoError(t, err)

	return db
}

func mustApply(t *testing.T, stock *inventory.Stock, movementType inventory.MovementType, qty, price string) *inventory.Movement {
	t.Helper()
	m, err := stock.Apply("MV-TEST-"+uuid.NewString()[:8], movementType,
		decimal.RequireFromString(qty), decimal.RequireFromString(price), time.Now())
	require.NoError(t, err)
	return m
}

func TestGormStockRepository_GetOrCreate(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormStockRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	warehouseID := uuid.New()

	t.Run("creates an empty row for a new pair", func(t *testing.T) {
		stock, err := repo.GetOrCreate(ctx, productID, warehouseID)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, stock.ID)
		assert.True(t, stock.PhysicalQuantity.IsZero())
		assert.True(t, stock.VirtualQuantity.IsZero())
	})

	t.Run("returns the same row on a second call", func(t *testing.T) {
		first, err := repo.GetOrCreate(ctx, productID, warehouseID)
		require.NoError(t, err)

		second, err := repo.GetOrCreate(ctx, productID, warehouseID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		count, err := repo.Count(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestGormStockRepository_SaveWithLock(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormStockRepository(db)
	ctx := context.Background()

	stock, err := repo.GetOrCreate(ctx, uuid.New(), uuid.New())
	require.NoError(t, err)

	t.Run("saves when the version matches", func(t *testing.T) {
		mustApply(t, stock, inventory.MovementTypeEnter, "10", "2.50")
		stock.IncrementVersion()

		err := repo.SaveWithLock(ctx, stock)
		require.NoError(t, err)

		reloaded, err := repo.FindByID(ctx, stock.ID)
		require.NoError(t, err)
		assert.True(t, reloaded.PhysicalQuantity.Equal(decimal.RequireFromString("10")))
		assert.Equal(t, stock.Version, reloaded.Version)
	})

	t.Run("rejects a stale version", func(t *testing.T) {
		stale := *stock
		stale.Version = stock.Version + 5

		err := repo.SaveWithLock(ctx, &stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestGormStockRepository_FindBelowAlert(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormStockRepository(db)
	ctx := context.Background()

	warehouseID := uuid.New()

	lowProduct, err := catalog.NewProduct("PRD-00001", "Screws", catalog.ProductTypeProduct, decimal.RequireFromString("4.99"))
	require.NoError(t, err)
	require.NoError(t, lowProduct.UpdateStockThresholds(decimal.RequireFromString("10"), decimal.RequireFromString("50")))
	require.NoError(t, db.Create(lowProduct).Error)

	okProduct, err := catalog.NewProduct("PRD-00002", "Bolts", catalog.ProductTypeProduct, decimal.RequireFromString("2.49"))
	require.NoError(t, err)
	require.NoError(t, okProduct.UpdateStockThresholds(decimal.RequireFromString("10"), decimal.RequireFromString("50")))
	require.NoError(t, db.Create(okProduct).Error)

	lowStock, err := repo.GetOrCreate(ctx, lowProduct.ID, warehouseID)
	require.NoError(t, err)
	mustApply(t, lowStock, inventory.MovementTypeEnter, "5", "1")
	lowStock.IncrementVersion()
	require.NoError(t, repo.SaveWithLock(ctx, lowStock))

	okStock, err := repo.GetOrCreate(ctx, okProduct.ID, warehouseID)
	require.NoError(t, err)
	mustApply(t, okStock, inventory.MovementTypeEnter, "100", "1")
	okStock.IncrementVersion()
	require.NoError(t, repo.SaveWithLock(ctx, okStock))

	below, err := repo.FindBelowAlert(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, below, 1)
	assert.Equal(t, lowProduct.ID, below[0].ProductID)

	// The join against products means every column reference must stay
	// unambiguous, including the default ordering and the filters.
	filtered := shared.DefaultFilter()
	filtered.Filters["warehouse_id"] = warehouseID
	below, err = repo.FindBelowAlert(ctx, filtered)
	require.NoError(t, err)
	require.Len(t, below, 1)

	filtered.Filters["warehouse_id"] = uuid.New()
	below, err = repo.FindBelowAlert(ctx, filtered)
	require.NoError(t, err)
	assert.Empty(t, below)
}

func TestGormStockRepository_Filters(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormStockRepository(db)
	ctx := context.Background()

	warehouseA := uuid.New()
	warehouseB := uuid.New()

	stockA, err := repo.GetOrCreate(ctx, uuid.New(), warehouseA)
	require.NoError(t, err)
	mustApply(t, stockA, inventory.MovementTypeEnter, "3", "1")
	stockA.IncrementVersion()
	require.NoError(t, repo.SaveWithLock(ctx, stockA))

	_, err = repo.GetOrCreate(ctx, uuid.New(), warehouseB)
	require.NoError(t, err)

	t.Run("filters by warehouse", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["warehouse_id"] = warehouseA

		stocks, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, stocks, 1)
		assert.Equal(t, warehouseA, stocks[0].WarehouseID)
	})

	t.Run("has_stock excludes empty rows", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["has_stock"] = true

		stocks, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, stocks, 1)
		assert.Equal(t, stockA.ID, stocks[0].ID)
	})

	t.Run("no_stock keeps only empty rows", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["no_stock"] = true

		stocks, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, stocks, 1)
		assert.Equal(t, warehouseB, stocks[0].WarehouseID)
	})
}

func TestGormMovementRepository_AppendOnlyHistory(t *testing.T) {
	db := setupInventoryTestDB(t)
	stockRepo := NewGormStockRepository(db)
	movementRepo := NewGormMovementRepository(db)
	ctx := context.Background()

	stock, err := stockRepo.GetOrCreate(ctx, uuid.New(), uuid.New())
	require.NoError(t, err)

	first := mustApply(t, stock, inventory.MovementTypeEnter, "10", "2")
	second := mustApply(t, stock, inventory.MovementTypeOut, "4", "0")
	require.NoError(t, movementRepo.Create(ctx, first))
	require.NoError(t, movementRepo.Create(ctx, second))

	t.Run("finds movements by stock", func(t *testing.T) {
		movements, err := movementRepo.FindByStock(ctx, stock.ID, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Len(t, movements, 2)
	})

	t.Run("inbound lookup excludes outbound movements", func(t *testing.T) {
		inbound, err := movementRepo.FindInboundBefore(ctx, stock.ProductID, stock.WarehouseID, time.Now().Add(time.Hour))
		require.NoError(t, err)
		require.Len(t, inbound, 1)
		assert.Equal(t, first.Code, inbound[0].Code)
	})

	t.Run("snapshots are preserved verbatim", func(t *testing.T) {
		found, err := movementRepo.FindByID(ctx, second.ID)
		require.NoError(t, err)
		assert.True(t, found.PhysicalBefore.Equal(decimal.RequireFromString("10")))
		assert.True(t, found.PhysicalAfter.Equal(decimal.RequireFromString("6")))
	})
}

func TestGormMovementRepository_GenerateCode(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormMovementRepository(db)
	ctx := context.Background()

	at := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)

	first, err := repo.GenerateCode(ctx, at)
	require.NoError(t, err)
	assert.Equal(t, "MV-202608-00001", first)

	second, err := repo.GenerateCode(ctx, at)
	require.NoError(t, err)
	assert.Equal(t, "MV-202608-00002", second)

	otherPeriod, err := repo.GenerateCode(ctx, at.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, "MV-202609-00001", otherPeriod)
}
