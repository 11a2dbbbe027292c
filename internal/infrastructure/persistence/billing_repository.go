package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gestock/backend/internal/domain/billing"
	"github.com/gestock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBillingRepository implements billing.Repository using GORM.
// FindByID and FindByCode load the full aggregate with items and payments;
// writes keep the child rows in sync with the aggregate's slices.
type GormBillingRepository struct {
	db        *gorm.DB
	sequences *GormSequenceGenerator
}

// NewGormBillingRepository creates a new GormBillingRepository
func NewGormBillingRepository(db *gorm.DB) *GormBillingRepository {
	return &GormBillingRepository{
		db:        db,
		sequences: NewGormSequenceGenerator(db),
	}
}

// FindByID finds a billing by its ID with items and payments loaded
func (r *GormBillingRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Billing, error) {
	var doc billing.Billing
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// FindByCode finds a billing by its code with items and payments loaded
func (r *GormBillingRepository) FindByCode(ctx context.Context, code string) (*billing.Billing, error) {
	var doc billing.Billing
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		First(&doc, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// FindAll finds billings matching the filter, without child rows
func (r *GormBillingRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Billing, error) {
	var docs []billing.Billing
	query := r.applyFilter(r.db.WithContext(ctx).Model(&billing.Billing{}), filter)

	if err := query.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// FindChildren returns the credit notes created against a billing
func (r *GormBillingRepository) FindChildren(ctx context.Context, parentID uuid.UUID) ([]billing.Billing, error) {
	var docs []billing.Billing
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where("parent_billing_id = ?", parentID).
		Order("created_at ASC").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// Save creates or updates a billing together with its items and payments
func (r *GormBillingRepository) Save(ctx context.Context, doc *billing.Billing) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "Payments").Save(doc).Error; err != nil {
			return err
		}
		return r.syncChildren(tx, doc)
	})
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormBillingRepository) SaveWithLock(ctx context.Context, doc *billing.Billing) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(doc).
			Where("id = ? AND version = ?", doc.ID, doc.Version-1).
			Updates(map[string]interface{}{
				"status":               doc.Status,
				"description":          doc.Description,
				"billing_date":         doc.BillingDate,
				"is_full_refund":       doc.IsFullRefund,
				"amount_excluding_vat": doc.AmountExcludingVat,
				"vat_amount":           doc.VatAmount,
				"amount_including_vat": doc.AmountIncludingVat,
				"allocated_price":      doc.AllocatedPrice,
				"remaining_price":      doc.RemainingPrice,
				"version":              doc.Version,
				"updated_at":           doc.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return r.syncChildren(tx, doc)
	})
}

// syncChildren upserts the aggregate's items and payments and removes rows
// that are no longer part of the aggregate
func (r *GormBillingRepository) syncChildren(tx *gorm.DB, doc *billing.Billing) error {
	itemIDs := make([]uuid.UUID, 0, len(doc.Items))
	for i := range doc.Items {
		doc.Items[i].BillingID = doc.ID
		itemIDs = append(itemIDs, doc.Items[i].ID)
	}
	if len(doc.Items) > 0 {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).
			Create(&doc.Items).Error; err != nil {
			return err
		}
	}
	itemQuery := tx.Where("billing_id = ?", doc.ID)
	if len(itemIDs) > 0 {
		itemQuery = itemQuery.Where("id NOT IN ?", itemIDs)
	}
	if err := itemQuery.Delete(&billing.BillingItem{}).Error; err != nil {
		return err
	}

	paymentIDs := make([]uuid.UUID, 0, len(doc.Payments))
	for i := range doc.Payments {
		doc.Payments[i].BillingID = doc.ID
		paymentIDs = append(paymentIDs, doc.Payments[i].ID)
	}
	if len(doc.Payments) > 0 {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).
			Create(&doc.Payments).Error; err != nil {
			return err
		}
	}
	paymentQuery := tx.Where("billing_id = ?", doc.ID)
	if len(paymentIDs) > 0 {
		paymentQuery = paymentQuery.Where("id NOT IN ?", paymentIDs)
	}
	return paymentQuery.Delete(&billing.BillingPayment{}).Error
}

// Delete removes a billing; items and payments cascade
func (r *GormBillingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&billing.Billing{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts billings matching the filter
func (r *GormBillingRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&billing.Billing{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountItemsByProduct counts billing lines referencing a product
func (r *GormBillingRepository) CountItemsByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&billing.BillingItem{}).
		Where("product_id = ?", productID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts billings in a given status
func (r *GormBillingRepository) CountByStatus(ctx context.Context, status billing.BillingStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&billing.Billing{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateCode produces the next unique billing code, e.g. "SI-202608-00042"
func (r *GormBillingRepository) GenerateCode(ctx context.Context, billingType billing.BillingType, at time.Time) (string, error) {
	period := at.Format("200601")
	seq, err := r.sequences.Next(ctx, fmt.Sprintf("billing:%s:%s", billingType, period))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%05d", billingType, period, seq), nil
}

// GeneratePaymentCode produces the next unique payment code, e.g. "PAY-202608-00042"
func (r *GormBillingRepository) GeneratePaymentCode(ctx context.Context, at time.Time) (string, error) {
	period := at.Format("200601")
	seq, err := r.sequences.Next(ctx, "payment:"+period)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PAY-%s-%05d", period, seq), nil
}

// applyFilter applies filter options to the query
func (r *GormBillingRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

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

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormBillingRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(code) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "billing_type":
			query = query.Where("billing_type = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "third_party_id":
			query = query.Where("third_party_id = ?", value)
		case "parent_billing_id":
			query = query.Where("parent_billing_id = ?", value)
		case "billed_after":
			query = query.Where("billing_date >= ?", value)
		case "billed_before":
			query = query.Where("billing_date <= ?", value)
		}
	}

	return query
}

// Ensure GormBillingRepository implements billing.Repository
var _ billing.Repository = (*GormBillingRepository)(nil)
