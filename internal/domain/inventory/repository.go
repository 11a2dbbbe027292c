package inventory

import (
	"context"
	"time"

	"github.com/gestock/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StockRepository defines persistence operations for stock rows
type StockRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Stock, error)
	FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*Stock, error)
	FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]Stock, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Stock, error)

	// FindBelowAlert returns stock rows whose physical quantity is below the
	// product's configured alert threshold.
	FindBelowAlert(ctx context.Context, filter shared.Filter) ([]Stock, error)

	// GetOrCreate returns the stock row for the pair, creating an empty row
	// when none exists yet.
	GetOrCreate(ctx context.Context, productID, warehouseID uuid.UUID) (*Stock, error)

	Save(ctx context.Context, stock *Stock) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, stock *Stock) error

	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// MovementRepository defines persistence operations for movement records.
// Movements are append-only: there is no update or delete.
type MovementRepository interface {
	Create(ctx context.Context, movement *Movement) error
	FindByID(ctx context.Context, id uuid.UUID) (*Movement, error)
	FindByStock(ctx context.Context, stockID uuid.UUID, filter shared.Filter) ([]Movement, error)
	FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID, filter shared.Filter) ([]Movement, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Movement, error)

	// FindInboundBefore returns all inbound movements (ENTER, RECEPTION) for
	// the pair with occurred_at at or before the given time, oldest first.
	FindInboundBefore(ctx context.Context, productID, warehouseID uuid.UUID, asOf time.Time) ([]Movement, error)

	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// GenerateCode produces the next unique movement code (e.g. "MV-202608-00042")
	GenerateCode(ctx context.Context, at time.Time) (string, error)
}
