package partner

import (
	"strings"
	"time"

	"github.com/gestock/backend/internal/domain/shared"
)

// ThirdParty is the customer/supplier directory aggregate.
// Every billing references exactly one third party.
type ThirdParty struct {
	shared.BaseAggregateRoot
	Code    string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name    string `gorm:"type:varchar(200);not null"`
	Email   string `gorm:"type:varchar(200)"`
	Phone   string `gorm:"type:varchar(50)"`
	Address string `gorm:"type:varchar(500)"`
}

// TableName returns the database table name
func (ThirdParty) TableName() string {
	return "third_parties"
}

// NewThirdParty creates a new third party with validation
func NewThirdParty(code, name string) (*ThirdParty, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)

	if code == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Third party code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Third party name cannot be empty")
	}

	return &ThirdParty{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
	}, nil
}

// UpdateContact updates the contact details
func (t *ThirdParty) UpdateContact(email, phone, address string) {
	t.Email = strings.TrimSpace(email)
	t.Phone = strings.TrimSpace(phone)
	t.Address = strings.TrimSpace(address)
	t.UpdatedAt = time.Now()
}

// Rename changes the third party name
func (t *ThirdParty) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "Third party name cannot be empty")
	}
	t.Name = name
	t.UpdatedAt = time.Now()
	return nil
}
