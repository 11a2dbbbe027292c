package billing

import (
	"context"
	"time"

	"github.com/gestock/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines persistence operations for billing documents.
// FindByID and FindByCode load the full aggregate with items and payments.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Billing, error)
	FindByCode(ctx context.Context, code string) (*Billing, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Billing, error)

	// FindChildren returns the credit notes created against a billing
	FindChildren(ctx context.Context, parentID uuid.UUID) ([]Billing, error)

	Save(ctx context.Context, billing *Billing) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, billing *Billing) error

	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByStatus(ctx context.Context, status BillingStatus) (int64, error)

	// GenerateCode produces the next unique billing code for the type,
	// e.g. "SI-202608-00042".
	GenerateCode(ctx context.Context, billingType BillingType, at time.Time) (string, error)

	// GeneratePaymentCode produces the next unique payment code,
	// e.g. "PAY-202608-00042".
	GeneratePaymentCode(ctx context.Context, at time.Time) (string, error)
}
