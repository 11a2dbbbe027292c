package persistence

import (
	"context"

	appbilling "github.com/gestock/backend/internal/application/billing"
	"github.com/gestock/backend/internal/domain/billing"
	"github.com/gestock/backend/internal/domain/catalog"
	"github.com/gestock/backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// GormBillingTransactionScope implements the billing TransactionScope using
// GORM transactions. Billing validation touches the billing row, the stock
// rows and the movement log; all of it commits or rolls back together.
type GormBillingTransactionScope struct {
	db *gorm.DB
}

// NewGormBillingTransactionScope creates a new GormBillingTransactionScope
func NewGormBillingTransactionScope(db *gorm.DB) *GormBillingTransactionScope {
	return &GormBillingTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormBillingTransactionScope) Execute(ctx context.Context, fn func(repos appbilling.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormBillingRepositories{tx: tx})
	})
}

// gormBillingRepositories provides the repositories bound to one transaction
type gormBillingRepositories struct {
	tx *gorm.DB
}

// BillingRepo returns the billing repository scoped to the current transaction
func (r *gormBillingRepositories) BillingRepo() billing.Repository {
	return NewGormBillingRepository(r.tx)
}

// StockRepo returns the stock repository scoped to the current transaction
func (r *gormBillingRepositories) StockRepo() inventory.StockRepository {
	return NewGormStockRepository(r.tx)
}

// MovementRepo returns the movement repository scoped to the current transaction
func (r *gormBillingRepositories) MovementRepo() inventory.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

// ProductRepo returns the product repository scoped to the current transaction
func (r *gormBillingRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

var _ appbilling.TransactionScope = (*GormBillingTransactionScope)(nil)
var _ appbilling.TransactionalRepositories = (*gormBillingRepositories)(nil)
