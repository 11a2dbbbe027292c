package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// GormSequenceGenerator hands out gapless per-name counters backed by the
// sequences table. The upsert is atomic, so concurrent callers never receive
// the same value.
type GormSequenceGenerator struct {
	db *gorm.DB
}

// NewGormSequenceGenerator creates a new GormSequenceGenerator
func NewGormSequenceGenerator(db *gorm.DB) *GormSequenceGenerator {
	return &GormSequenceGenerator{db: db}
}

// Next returns the next value for the named sequence, starting at 1
func (g *GormSequenceGenerator) Next(ctx context.Context, name string) (int64, error) {
	var value int64
	err := g.db.WithContext(ctx).Raw(
		`INSERT INTO sequences (name, value) VALUES (?, 1)
		 ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
		 RETURNING value`,
		name,
	).Scan(&value).Error
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %q: %w", name, err)
	}
	return value, nil
}

// Sequence is the persistence model behind GormSequenceGenerator
type Sequence struct {
	Name  string `gorm:"type:varchar(100);primaryKey"`
	Value int64  `gorm:"not null;default:0"`
}

// TableName returns the database table name
func (Sequence) TableName() string {
	return "sequences"
}
