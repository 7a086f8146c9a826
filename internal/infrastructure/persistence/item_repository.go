package persistence

import (
	"context"
	"errors"

	"github.com/facturo/backend/internal/domain/catalog"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormItemRepository implements ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByIDForBranch finds an item by ID within a branch
func (r *GormItemRepository) FindByIDForBranch(ctx context.Context, branchID, id uuid.UUID) (*catalog.Item, error) {
	var item catalog.Item
	if err := r.db.WithContext(ctx).
		Where("branch_id = ? AND id = ?", branchID, id).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindAllForBranch finds all items of a branch
func (r *GormItemRepository) FindAllForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]catalog.Item, error) {
	var items []catalog.Item
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&catalog.Item{}).Where("branch_id = ?", branchID),
		filter,
	)
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CountForBranch counts items of a branch
func (r *GormItemRepository) CountForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&catalog.Item{}).Where("branch_id = ?", branchID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an item
func (r *GormItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// DeleteForBranch deletes an item within a branch
func (r *GormItemRepository) DeleteForBranch(ctx context.Context, branchID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Item{}, "branch_id = ? AND id = ?", branchID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CurrentTaxPercentages resolves the current tax-rate percentage of each given
// item in a single query. Items that no longer exist produce no entry;
// recalculation treats them as taxed at zero.
func (r *GormItemRepository) CurrentTaxPercentages(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	percentages := make(map[uuid.UUID]decimal.Decimal, len(itemIDs))
	if len(itemIDs) == 0 {
		return percentages, nil
	}

	var rows []struct {
		ItemID     uuid.UUID
		Percentage decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Table("items").
		Select("items.id AS item_id, tax_rates.percentage AS percentage").
		Joins("JOIN tax_rates ON tax_rates.id = items.tax_rate_id").
		Where("items.id IN ?", itemIDs).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		percentages[row.ItemID] = row.Percentage
	}
	return percentages, nil
}

// applyFilter applies filter options to the query
func (r *GormItemRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	sortField := ValidateSortField(filter.OrderBy, ItemSortFields, "name")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormItemRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "category_id":
			query = query.Where("category_id = ?", value)
		case "tax_rate_id":
			query = query.Where("tax_rate_id = ?", value)
		case "is_active":
			query = query.Where("is_active = ?", value)
		}
	}

	return query
}

// Ensure GormItemRepository implements ItemRepository
var _ catalog.ItemRepository = (*GormItemRepository)(nil)
