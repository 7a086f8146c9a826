package catalog

import (
	"strings"

	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxRate is a named percentage applied per bill line. Rates are owned by the
// organization and shared across its branches. Recalculation always reads the
// current percentage, not the one in force when a line was created.
type TaxRate struct {
	shared.OrganizationAggregateRoot
	Name       string          `gorm:"size:100;not null" json:"name"`
	Percentage decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"percentage"`
	IsActive   bool            `gorm:"not null;default:true" json:"is_active"`
}

// TableName returns the database table name
func (TaxRate) TableName() string {
	return "tax_rates"
}

// NewTaxRate creates a new tax rate for an organization
func NewTaxRate(organizationID uuid.UUID, name string, percentage decimal.Decimal) (*TaxRate, error) {
	if organizationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION", "Organization ID cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_TAX_RATE_NAME", "Tax rate name cannot be empty")
	}
	if err := validatePercentage(percentage); err != nil {
		return nil, err
	}

	return &TaxRate{
		OrganizationAggregateRoot: shared.NewOrganizationAggregateRoot(organizationID),
		Name:                      name,
		Percentage:                percentage,
		IsActive:                  true,
	}, nil
}

// SetPercentage changes the rate percentage. Existing bills pick up the new
// value on their next recalculation.
func (t *TaxRate) SetPercentage(percentage decimal.Decimal) error {
	if err := validatePercentage(percentage); err != nil {
		return err
	}
	t.Percentage = percentage
	t.Touch()
	return nil
}

// Rename changes the tax rate name
func (t *TaxRate) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_TAX_RATE_NAME", "Tax rate name cannot be empty")
	}
	t.Name = name
	t.Touch()
	return nil
}

// Deactivate disables the rate for new items
func (t *TaxRate) Deactivate() {
	t.IsActive = false
	t.Touch()
}

func validatePercentage(percentage decimal.Decimal) error {
	if percentage.IsNegative() || percentage.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_PERCENTAGE", "Tax percentage must be between 0 and 100")
	}
	return nil
}
