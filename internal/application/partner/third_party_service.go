package partner

import (
	"context"
	"errors"

	"github.com/gestock/backend/internal/domain/partner"
	"github.com/gestock/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ThirdPartyService handles the customer/supplier directory
type ThirdPartyService struct {
	thirdPartyRepo partner.ThirdPartyRepository
}

// NewThirdPartyService creates a new ThirdPartyService
func NewThirdPartyService(thirdPartyRepo partner.ThirdPartyRepository) *ThirdPartyService {
	return &ThirdPartyService{thirdPartyRepo: thirdPartyRepo}
}

// Create creates a new third party
func (s *ThirdPartyService) Create(ctx context.Context, req CreateThirdPartyRequest) (*ThirdPartyResponse, error) {
	if _, err := s.thirdPartyRepo.FindByCode(ctx, req.Code); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Third party code already in use: "+req.Code)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	tp, err := partner.NewThirdParty(req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	tp.UpdateContact(req.Email, req.Phone, req.Address)

	if err := s.thirdPartyRepo.Save(ctx, tp); err != nil {
		return nil, err
	}

	response := ToThirdPartyResponse(tp)
	return &response, nil
}

// GetByID retrieves a third party by ID
func (s *ThirdPartyService) GetByID(ctx context.Context, id uuid.UUID) (*ThirdPartyResponse, error) {
	tp, err := s.thirdPartyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToThirdPartyResponse(tp)
	return &response, nil
}

// List retrieves third parties with filtering and pagination
func (s *ThirdPartyService) List(ctx context.Context, filter ListFilter) ([]ThirdPartyResponse, int64, error) {
	f := buildFilter(filter)

	parties, err := s.thirdPartyRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.thirdPartyRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToThirdPartyResponses(parties), total, nil
}

// Update changes the mutable fields of a third party
func (s *ThirdPartyService) Update(ctx context.Context, id uuid.UUID, req UpdateThirdPartyRequest) (*ThirdPartyResponse, error) {
	tp, err := s.thirdPartyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := tp.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	email, phone, address := tp.Email, tp.Phone, tp.Address
	if req.Email != nil {
		email = *req.Email
	}
	if req.Phone != nil {
		phone = *req.Phone
	}
	if req.Address != nil {
		address = *req.Address
	}
	tp.UpdateContact(email, phone, address)

	if err := s.thirdPartyRepo.Save(ctx, tp); err != nil {
		return nil, err
	}

	response := ToThirdPartyResponse(tp)
	return &response, nil
}

// Delete removes a third party
func (s *ThirdPartyService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.thirdPartyRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.thirdPartyRepo.Delete(ctx, id)
}

func buildFilter(filter ListFilter) shared.Filter {
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
	f.Search = filter.Search
	return f
}
