package inventory

import (
	"context"

	"github.com/gestock/backend/internal/domain/catalog"
	"github.com/gestock/backend/internal/domain/inventory"
	"github.com/gestock/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StockAlertHandler watches movement events and warns when the physical
// quantity of a product drops below its configured alert threshold.
type StockAlertHandler struct {
	stockRepo   inventory.StockRepository
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewStockAlertHandler creates a new StockAlertHandler
func NewStockAlertHandler(
	stockRepo inventory.StockRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *StockAlertHandler {
	return &StockAlertHandler{
		stockRepo:   stockRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// EventTypes returns the event types this handler subscribes to
func (h *StockAlertHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockMovementRecorded}
}

// Handle checks the alert threshold after an outbound or correction movement
func (h *StockAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	moved, ok := event.(*inventory.StockMovementRecordedEvent)
	if !ok {
		return nil
	}

	// Quantities only drop on outbound and correction movements
	if moved.PhysicalAfter.GreaterThanOrEqual(moved.PhysicalBefore) {
		return nil
	}

	stock, err := h.stockRepo.FindByID(ctx, event.AggregateID())
	if err != nil {
		return err
	}

	product, err := h.productRepo.FindByID(ctx, stock.ProductID)
	if err != nil {
		return err
	}

	if product.LimitStockAlert.IsPositive() && stock.PhysicalQuantity.LessThan(product.LimitStockAlert) {
		h.logger.Warn("stock below alert threshold",
			zap.String("product_reference", product.Reference),
			zap.String("product_name", product.Name),
			zap.String("warehouse_id", stock.WarehouseID.String()),
			zap.String("physical_quantity", stock.PhysicalQuantity.String()),
			zap.String("alert_threshold", product.LimitStockAlert.String()),
			zap.String("movement_code", moved.MovementCode),
		)
	}

	return nil
}

var _ shared.EventHandler = (*StockAlertHandler)(nil)
