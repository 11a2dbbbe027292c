package partner

import (
	"context"

	"github.com/gestock/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ThirdPartyRepository defines persistence operations for third parties
type ThirdPartyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ThirdParty, error)
	FindByCode(ctx context.Context, code string) (*ThirdParty, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]ThirdParty, error)
	Save(ctx context.Context, thirdParty *ThirdParty) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// WarehouseRepository defines persistence operations for warehouses
type WarehouseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Warehouse, error)
	FindByCode(ctx context.Context, code string) (*Warehouse, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Warehouse, error)
	Save(ctx context.Context, warehouse *Warehouse) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
