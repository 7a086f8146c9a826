package catalog

import (
	"context"
	"errors"

	"github.com/facturo/backend/internal/domain/catalog"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ItemService handles the branch item catalog
type ItemService struct {
	itemRepo     catalog.ItemRepository
	taxRateRepo  catalog.TaxRateRepository
	categoryRepo catalog.CategoryRepository
	logger       *zap.Logger
}

// NewItemService creates a new item service
func NewItemService(
	itemRepo catalog.ItemRepository,
	taxRateRepo catalog.TaxRateRepository,
	categoryRepo catalog.CategoryRepository,
	logger *zap.Logger,
) *ItemService {
	return &ItemService{
		itemRepo:     itemRepo,
		taxRateRepo:  taxRateRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// CreateItem creates a catalog item in the branch. The tax rate must exist in
// the organization and be active; the category, when given, must belong to
// the branch.
func (s *ItemService) CreateItem(ctx context.Context, organizationID, branchID uuid.UUID, input CreateItemInput) (*catalog.Item, error) {
	rate, err := s.resolveTaxRate(ctx, organizationID, input.TaxRateID)
	if err != nil {
		return nil, err
	}

	item, err := catalog.NewItem(branchID, input.Name, input.UnitPrice, rate.ID)
	if err != nil {
		return nil, err
	}
	if input.Description != "" {
		item.Describe(input.Description)
	}
	if input.CategoryID != nil {
		if err := s.ensureCategoryInBranch(ctx, branchID, *input.CategoryID); err != nil {
			return nil, err
		}
		item.AssignCategory(input.CategoryID)
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		s.logger.Error("Failed to save item", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Item created",
		zap.String("branch_id", branchID.String()),
		zap.String("item_id", item.ID.String()),
		zap.String("name", item.Name),
		zap.String("unit_price", item.UnitPrice.String()))
	return item, nil
}

// GetItem returns an item of the branch
func (s *ItemService) GetItem(ctx context.Context, branchID, id uuid.UUID) (*catalog.Item, error) {
	item, err := s.itemRepo.FindByIDForBranch(ctx, branchID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("ITEM_NOT_FOUND", "Item not found")
		}
		return nil, err
	}
	return item, nil
}

// ListItems returns a page of the branch's items
func (s *ItemService) ListItems(ctx context.Context, branchID uuid.UUID, filter shared.Filter) (shared.Paginated[catalog.Item], error) {
	var empty shared.Paginated[catalog.Item]

	items, err := s.itemRepo.FindAllForBranch(ctx, branchID, filter)
	if err != nil {
		return empty, err
	}
	total, err := s.itemRepo.CountForBranch(ctx, branchID, filter)
	if err != nil {
		return empty, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.Limit()), nil
}

// UpdateItem applies the non-nil fields of input. Price changes do not touch
// lines already captured on bills.
func (s *ItemService) UpdateItem(ctx context.Context, organizationID, branchID, id uuid.UUID, input UpdateItemInput) (*catalog.Item, error) {
	item, err := s.GetItem(ctx, branchID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := item.Rename(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.Description != nil {
		item.Describe(*input.Description)
	}
	if input.UnitPrice != nil {
		if err := item.ChangePrice(*input.UnitPrice); err != nil {
			return nil, err
		}
	}
	if input.TaxRateID != nil {
		rate, err := s.resolveTaxRate(ctx, organizationID, *input.TaxRateID)
		if err != nil {
			return nil, err
		}
		if err := item.AssignTaxRate(rate.ID); err != nil {
			return nil, err
		}
	}
	switch {
	case input.ClearCategory:
		item.AssignCategory(nil)
	case input.CategoryID != nil:
		if err := s.ensureCategoryInBranch(ctx, branchID, *input.CategoryID); err != nil {
			return nil, err
		}
		item.AssignCategory(input.CategoryID)
	}
	if input.IsActive != nil {
		if *input.IsActive {
			item.Activate()
		} else {
			item.Deactivate()
		}
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		s.logger.Error("Failed to save item", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Item updated", zap.String("item_id", item.ID.String()))
	return item, nil
}

// DeleteItem removes an item from the catalog. Bill lines referencing it keep
// their captured price and stop following rate changes.
func (s *ItemService) DeleteItem(ctx context.Context, branchID, id uuid.UUID) error {
	if err := s.itemRepo.DeleteForBranch(ctx, branchID, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("ITEM_NOT_FOUND", "Item not found")
		}
		return err
	}

	s.logger.Info("Item deleted",
		zap.String("branch_id", branchID.String()),
		zap.String("item_id", id.String()))
	return nil
}

func (s *ItemService) resolveTaxRate(ctx context.Context, organizationID, rateID uuid.UUID) (*catalog.TaxRate, error) {
	rate, err := s.taxRateRepo.FindByIDForOrganization(ctx, organizationID, rateID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("TAX_RATE_NOT_FOUND", "Tax rate not found")
		}
		return nil, err
	}
	if !rate.IsActive {
		return nil, shared.NewDomainError("TAX_RATE_INACTIVE", "Tax rate is deactivated")
	}
	return rate, nil
}

func (s *ItemService) ensureCategoryInBranch(ctx context.Context, branchID, categoryID uuid.UUID) error {
	if _, err := s.categoryRepo.FindByIDForBranch(ctx, branchID, categoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("CATEGORY_NOT_FOUND", "Category not found")
		}
		return err
	}
	return nil
}
