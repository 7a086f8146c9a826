package catalog

import (
	"strings"

	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a catalog entry with a unit price and exactly one tax rate. Items
// are owned by a branch; a bill may only reference items of its own branch.
type Item struct {
	shared.BranchAggregateRoot
	Name        string          `gorm:"size:200;not null" json:"name"`
	Description string          `gorm:"size:1000" json:"description"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TaxRateID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"tax_rate_id"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index" json:"category_id"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
}

// TableName returns the database table name
func (Item) TableName() string {
	return "items"
}

// NewItem creates a new catalog item in a branch
func NewItem(branchID uuid.UUID, name string, unitPrice decimal.Decimal, taxRateID uuid.UUID) (*Item, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ITEM_NAME", "Item name cannot be empty")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if taxRateID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate ID cannot be empty")
	}

	return &Item{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		Name:                name,
		UnitPrice:           unitPrice,
		TaxRateID:           taxRateID,
		IsActive:            true,
	}, nil
}

// Rename changes the item name
func (i *Item) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_ITEM_NAME", "Item name cannot be empty")
	}
	i.Name = name
	i.Touch()
	return nil
}

// Describe updates the item description
func (i *Item) Describe(description string) {
	i.Description = description
	i.Touch()
}

// ChangePrice updates the catalog unit price. Lines already on bills keep the
// price captured at their creation.
func (i *Item) ChangePrice(unitPrice decimal.Decimal) error {
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	i.UnitPrice = unitPrice
	i.Touch()
	return nil
}

// AssignTaxRate changes the tax rate the item bills under
func (i *Item) AssignTaxRate(taxRateID uuid.UUID) error {
	if taxRateID == uuid.Nil {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate ID cannot be empty")
	}
	i.TaxRateID = taxRateID
	i.Touch()
	return nil
}

// AssignCategory places the item in a category; nil clears it
func (i *Item) AssignCategory(categoryID *uuid.UUID) {
	i.CategoryID = categoryID
	i.Touch()
}

// Deactivate hides the item from new bills
func (i *Item) Deactivate() {
	i.IsActive = false
	i.Touch()
}

// Activate re-enables the item
func (i *Item) Activate() {
	i.IsActive = true
	i.Touch()
}
