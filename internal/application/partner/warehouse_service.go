package partner

import (
	"context"
	"errors"

	"github.com/gestock/backend/internal/domain/partner"
	"github.com/gestock/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// WarehouseService handles warehouse directory operations
type WarehouseService struct {
	warehouseRepo partner.WarehouseRepository
}

// NewWarehouseService creates a new WarehouseService
func NewWarehouseService(warehouseRepo partner.WarehouseRepository) *WarehouseService {
	return &WarehouseService{warehouseRepo: warehouseRepo}
}

// Create creates a new warehouse
func (s *WarehouseService) Create(ctx context.Context, req CreateWarehouseRequest) (*WarehouseResponse, error) {
	if _, err := s.warehouseRepo.FindByCode(ctx, req.Code); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Warehouse code already in use: "+req.Code)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	wh, err := partner.NewWarehouse(req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	wh.UpdateAddress(req.Address)

	if err := s.warehouseRepo.Save(ctx, wh); err != nil {
		return nil, err
	}

	response := ToWarehouseResponse(wh)
	return &response, nil
}

// GetByID retrieves a warehouse by ID
func (s *WarehouseService) GetByID(ctx context.Context, id uuid.UUID) (*WarehouseResponse, error) {
	wh, err := s.warehouseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToWarehouseResponse(wh)
	return &response, nil
}

// List retrieves warehouses with filtering and pagination
func (s *WarehouseService) List(ctx context.Context, filter ListFilter) ([]WarehouseResponse, int64, error) {
	f := buildFilter(filter)

	warehouses, err := s.warehouseRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.warehouseRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToWarehouseResponses(warehouses), total, nil
}

// Update changes the mutable fields of a warehouse
func (s *WarehouseService) Update(ctx context.Context, id uuid.UUID, req UpdateWarehouseRequest) (*WarehouseResponse, error) {
	wh, err := s.warehouseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := wh.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Address != nil {
		wh.UpdateAddress(*req.Address)
	}

	if err := s.warehouseRepo.Save(ctx, wh); err != nil {
		return nil, err
	}

	response := ToWarehouseResponse(wh)
	return &response, nil
}

// Delete removes a warehouse
func (s *WarehouseService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.warehouseRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.warehouseRepo.Delete(ctx, id)
}
