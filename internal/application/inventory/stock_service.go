package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/gestock/backend/internal/domain/inventory"
	"github.com/gestock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockService handles stock ledger business operations
type StockService struct {
	stockRepo      inventory.StockRepository
	movementRepo   inventory.MovementRepository
	costing        *inventory.CostingService
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
}

// NewStockService creates a new StockService
func NewStockService(
	stockRepo inventory.StockRepository,
	movementRepo inventory.MovementRepository,
	txScope TransactionScope,
) *StockService {
	return &StockService{
		stockRepo:    stockRepo,
		movementRepo: movementRepo,
		costing:      inventory.NewCostingService(movementRepo),
		txScope:      txScope,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// GetByID retrieves a stock row by ID
func (s *StockService) GetByID(ctx context.Context, id uuid.UUID) (*StockResponse, error) {
	stock, err := s.stockRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToStockResponse(stock)
	return &response, nil
}

// GetByProductAndWarehouse retrieves the stock row for a (product, warehouse) pair
func (s *StockService) GetByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*StockResponse, error) {
	stock, err := s.stockRepo.FindByProductAndWarehouse(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	response := ToStockResponse(stock)
	return &response, nil
}

// List retrieves stock rows with filtering and pagination
func (s *StockService) List(ctx context.Context, filter StockListFilter) ([]StockResponse, int64, error) {
	domainFilter := buildStockFilter(filter)

	var (
		stocks []inventory.Stock
		err    error
	)
	switch {
	case filter.BelowAlert != nil && *filter.BelowAlert:
		stocks, err = s.stockRepo.FindBelowAlert(ctx, domainFilter)
	case filter.WarehouseID != nil:
		stocks, err = s.stockRepo.FindByWarehouse(ctx, *filter.WarehouseID, domainFilter)
	default:
		stocks, err = s.stockRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.stockRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToStockResponses(stocks), total, nil
}

// ApplyMovement records a stock movement. The stock row and the movement
// record are written in the same transaction; an insufficient balance aborts
// the whole operation.
func (s *StockService) ApplyMovement(ctx context.Context, req ApplyMovementRequest) (*MovementResponse, error) {
	movementType := inventory.MovementType(req.MovementType)
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid movement type: "+req.MovementType)
	}

	occurredAt := time.Now()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	var (
		response MovementResponse
		events   []shared.DomainEvent
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var (
			stock *inventory.Stock
			err   error
		)
		if movementType.IsOutbound() {
			// an outbound from a pair that never received stock is a plain
			// insufficient-stock failure, not an implicit row creation
			stock, err = repos.StockRepo().FindByProductAndWarehouse(ctx, req.ProductID, req.WarehouseID)
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("INSUFFICIENT_STOCK",
					"Insufficient stock: no stock recorded for this product and warehouse")
			}
		} else {
			stock, err = repos.StockRepo().GetOrCreate(ctx, req.ProductID, req.WarehouseID)
		}
		if err != nil {
			return err
		}

		code, err := repos.MovementRepo().GenerateCode(ctx, occurredAt)
		if err != nil {
			return err
		}

		movement, err := stock.Apply(code, movementType, req.Quantity, req.UnitPrice, occurredAt)
		if err != nil {
			return err
		}

		stock.IncrementVersion()
		if err := repos.StockRepo().SaveWithLock(ctx, stock); err != nil {
			return err
		}
		if err := repos.MovementRepo().Create(ctx, movement); err != nil {
			return err
		}

		events = stock.GetDomainEvents()
		stock.ClearDomainEvents()
		response = ToMovementResponse(movement)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Events are only published once the transaction has committed
	if s.eventPublisher != nil && len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
	}
	return &response, nil
}

// Movements retrieves movement records with filtering and pagination
func (s *StockService) Movements(ctx context.Context, filter MovementListFilter) ([]MovementResponse, int64, error) {
	domainFilter := buildMovementFilter(filter)

	var (
		movements []inventory.Movement
		err       error
	)
	if filter.ProductID != nil && filter.WarehouseID != nil {
		movements, err = s.movementRepo.FindByProductAndWarehouse(ctx, *filter.ProductID, *filter.WarehouseID, domainFilter)
	} else {
		movements, err = s.movementRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.movementRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToMovementResponses(movements), total, nil
}

// MovementsByStock retrieves the movement history of a single stock row
func (s *StockService) MovementsByStock(ctx context.Context, stockID uuid.UUID, filter MovementListFilter) ([]MovementResponse, error) {
	movements, err := s.movementRepo.FindByStock(ctx, stockID, buildMovementFilter(filter))
	if err != nil {
		return nil, err
	}
	return ToMovementResponses(movements), nil
}

// WeightedAverageCost derives the weighted average purchase cost of a pair
// from its inbound movement history up to asOf.
func (s *StockService) WeightedAverageCost(ctx context.Context, productID, warehouseID uuid.UUID, asOf time.Time) (*WeightedAverageCostResponse, error) {
	if asOf.IsZero() {
		asOf = time.Now()
	}
	cost, err := s.costing.WeightedAverageCost(ctx, productID, warehouseID, asOf)
	if err != nil {
		return nil, err
	}
	return &WeightedAverageCostResponse{
		ProductID:           productID,
		WarehouseID:         warehouseID,
		AsOf:                asOf,
		WeightedAverageCost: cost,
	}, nil
}

// Decrement removes quantity from a pair inside an existing transaction.
// It is used by billing validation to turn product lines into OUT movements.
func Decrement(ctx context.Context, repos TransactionalRepositories, productID, warehouseID uuid.UUID, quantity, unitPrice decimal.Decimal, occurredAt time.Time) (*inventory.Movement, error) {
	stock, err := repos.StockRepo().FindByProductAndWarehouse(ctx, productID, warehouseID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewDomainError("INSUFFICIENT_STOCK",
			"Insufficient stock: no stock recorded for this product and warehouse")
	}
	if err != nil {
		return nil, err
	}

	code, err := repos.MovementRepo().GenerateCode(ctx, occurredAt)
	if err != nil {
		return nil, err
	}

	movement, err := stock.Apply(code, inventory.MovementTypeOut, quantity, unitPrice, occurredAt)
	if err != nil {
		return nil, err
	}

	stock.IncrementVersion()
	if err := repos.StockRepo().SaveWithLock(ctx, stock); err != nil {
		return nil, err
	}
	if err := repos.MovementRepo().Create(ctx, movement); err != nil {
		return nil, err
	}
	stock.ClearDomainEvents()
	return movement, nil
}

func buildStockFilter(filter StockListFilter) shared.Filter {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	if filter.WarehouseID != nil {
		f.Filters["warehouse_id"] = *filter.WarehouseID
	}
	if filter.ProductID != nil {
		f.Filters["product_id"] = *filter.ProductID
	}
	return f
}

func buildMovementFilter(filter MovementListFilter) shared.Filter {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	if filter.ProductID != nil {
		f.Filters["product_id"] = *filter.ProductID
	}
	if filter.WarehouseID != nil {
		f.Filters["warehouse_id"] = *filter.WarehouseID
	}
	if filter.MovementType != "" {
		f.Filters["movement_type"] = filter.MovementType
	}
	return f
}
