package catalog

import (
	"context"

	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemRepository defines the interface for catalog item persistence
type ItemRepository interface {
	// FindByIDForBranch finds an item by ID within a branch
	FindByIDForBranch(ctx context.Context, branchID, id uuid.UUID) (*Item, error)

	// FindAllForBranch lists items of a branch
	FindAllForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]Item, error)

	// CountForBranch counts items of a branch
	CountForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) (int64, error)

	// Save creates or updates an item
	Save(ctx context.Context, item *Item) error

	// DeleteForBranch removes an item
	DeleteForBranch(ctx context.Context, branchID, id uuid.UUID) error

	// CurrentTaxPercentages resolves the current tax-rate percentage of each
	// given item. Used by bill recalculation; missing items map to no entry.
	CurrentTaxPercentages(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
}

// TaxRateRepository defines the interface for tax rate persistence
type TaxRateRepository interface {
	// FindByIDForOrganization finds a tax rate by ID within an organization
	FindByIDForOrganization(ctx context.Context, organizationID, id uuid.UUID) (*TaxRate, error)

	// FindAllForOrganization lists tax rates of an organization
	FindAllForOrganization(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]TaxRate, error)

	// Save creates or updates a tax rate
	Save(ctx context.Context, rate *TaxRate) error

	// CountItemsUsingRate counts catalog items referencing the rate. Used as a
	// deletion guard.
	CountItemsUsingRate(ctx context.Context, rateID uuid.UUID) (int64, error)

	// DeleteForOrganization removes a tax rate
	DeleteForOrganization(ctx context.Context, organizationID, id uuid.UUID) error
}

// CategoryRepository defines the interface for item category persistence
type CategoryRepository interface {
	// FindByIDForBranch finds a category by ID within a branch
	FindByIDForBranch(ctx context.Context, branchID, id uuid.UUID) (*Category, error)

	// FindAllForBranch lists categories of a branch
	FindAllForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]Category, error)

	// Save creates or updates a category
	Save(ctx context.Context, category *Category) error

	// DeleteForBranch removes a category
	DeleteForBranch(ctx context.Context, branchID, id uuid.UUID) error
}
