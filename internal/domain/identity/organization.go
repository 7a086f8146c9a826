package identity

import (
	"strings"

	"github.com/facturo/backend/internal/domain/shared"
)

// Organization is the top-level tenancy boundary. It owns branches, users,
// catalog items and tax rates. Created once, at the first user's registration.
type Organization struct {
	shared.BaseAggregateRoot
	Name     string `gorm:"size:200;not null" json:"name"`
	TaxID    string `gorm:"size:50" json:"tax_id"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`
}

// TableName returns the database table name
func (Organization) TableName() string {
	return "organizations"
}

// NewOrganization creates a new organization
func NewOrganization(name string) (*Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION_NAME", "Organization name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION_NAME", "Organization name cannot exceed 200 characters")
	}

	return &Organization{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		IsActive:          true,
	}, nil
}

// Rename changes the organization name
func (o *Organization) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_ORGANIZATION_NAME", "Organization name cannot be empty")
	}
	o.Name = name
	o.Touch()
	return nil
}

// SetTaxID sets the fiscal identifier used on issued bills
func (o *Organization) SetTaxID(taxID string) {
	o.TaxID = strings.TrimSpace(taxID)
	o.Touch()
}
