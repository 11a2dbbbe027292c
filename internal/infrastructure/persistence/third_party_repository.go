package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/gestock/backend/internal/domain/partner"
	"github.com/gestock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormThirdPartyRepository implements ThirdPartyRepository using GORM
type GormThirdPartyRepository struct {
	db *gorm.DB
}

// NewGormThirdPartyRepository creates a new GormThirdPartyRepository
func NewGormThirdPartyRepository(db *gorm.DB) *GormThirdPartyRepository {
	return &GormThirdPartyRepository{db: db}
}

// FindByID finds a third party by its ID
func (r *GormThirdPartyRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.ThirdParty, error) {
	var thirdParty partner.ThirdParty
	if err := r.db.WithContext(ctx).First(&thirdParty, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &thirdParty, nil
}

// FindByCode finds a third party by its unique code
func (r *GormThirdPartyRepository) FindByCode(ctx context.Context, code string) (*partner.ThirdParty, error) {
	var thirdParty partner.ThirdParty
	if err := r.db.WithContext(ctx).First(&thirdParty, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &thirdParty, nil
}

// FindAll finds third parties matching the filter
func (r *GormThirdPartyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.ThirdParty, error) {
	var thirdParties []partner.ThirdParty
	query := r.applyFilter(r.db.WithContext(ctx).Model(&partner.ThirdParty{}), filter)

	if err := query.Find(&thirdParties).Error; err != nil {
		return nil, err
	}
	return thirdParties, nil
}

// Save creates or updates a third party
func (r *GormThirdPartyRepository) Save(ctx context.Context, thirdParty *partner.ThirdParty) error {
	return r.db.WithContext(ctx).Save(thirdParty).Error
}

// Delete deletes a third party
func (r *GormThirdPartyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&partner.ThirdParty{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts third parties matching the filter
func (r *GormThirdPartyRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&partner.ThirdParty{})
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(code) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern)
	}

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormThirdPartyRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(code) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// Ensure GormThirdPartyRepository implements ThirdPartyRepository
var _ partner.ThirdPartyRepository = (*GormThirdPartyRepository)(nil)
