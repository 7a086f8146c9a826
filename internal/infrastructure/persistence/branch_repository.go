package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/facturo/backend/internal/domain/identity"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBranchRepository implements BranchRepository using GORM
type GormBranchRepository struct {
	db *gorm.DB
}

// NewGormBranchRepository creates a new GormBranchRepository
func NewGormBranchRepository(db *gorm.DB) *GormBranchRepository {
	return &GormBranchRepository{db: db}
}

// FindByID finds a branch by its ID
func (r *GormBranchRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Branch, error) {
	var branch identity.Branch
	if err := r.db.WithContext(ctx).First(&branch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &branch, nil
}

// FindByIDForOrganization finds a branch by ID within an organization
func (r *GormBranchRepository) FindByIDForOrganization(ctx context.Context, organizationID, id uuid.UUID) (*identity.Branch, error) {
	var branch identity.Branch
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&branch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &branch, nil
}

// FindAllForOrganization finds all branches of an organization
func (r *GormBranchRepository) FindAllForOrganization(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]identity.Branch, error) {
	var branches []identity.Branch
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&identity.Branch{}).Where("organization_id = ?", organizationID),
		filter,
	)
	if err := query.Find(&branches).Error; err != nil {
		return nil, err
	}
	return branches, nil
}

// CountForOrganization counts branches of an organization
func (r *GormBranchRepository) CountForOrganization(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&identity.Branch{}).Where("organization_id = ?", organizationID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a branch
func (r *GormBranchRepository) Save(ctx context.Context, branch *identity.Branch) error {
	return r.db.WithContext(ctx).Save(branch).Error
}

// DeleteForOrganization deletes a branch within an organization together with
// its membership links
func (r *GormBranchRepository) DeleteForOrganization(ctx context.Context, organizationID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&identity.Branch{}, "organization_id = ? AND id = ?", organizationID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return tx.Delete(&identity.UserBranch{}, "branch_id = ?", id).Error
	})
}

// FindMembership finds the membership link between a user and a branch
func (r *GormBranchRepository) FindMembership(ctx context.Context, userID, branchID uuid.UUID) (*identity.UserBranch, error) {
	var membership identity.UserBranch
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND branch_id = ?", userID, branchID).
		First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &membership, nil
}

// FindMembershipsForUser lists all branch memberships of a user
func (r *GormBranchRepository) FindMembershipsForUser(ctx context.Context, userID uuid.UUID) ([]identity.UserBranch, error) {
	var memberships []identity.UserBranch
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// SaveMembership creates or updates a membership link
func (r *GormBranchRepository) SaveMembership(ctx context.Context, membership *identity.UserBranch) error {
	return r.db.WithContext(ctx).Save(membership).Error
}

// DeleteMembership removes a membership link
func (r *GormBranchRepository) DeleteMembership(ctx context.Context, userID, branchID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&identity.UserBranch{}, "user_id = ? AND branch_id = ?", userID, branchID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ClearPrimaryForUser unsets the primary flag on all of a user's memberships
func (r *GormBranchRepository) ClearPrimaryForUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&identity.UserBranch{}).
		Where("user_id = ? AND is_primary = ?", userID, true).
		Updates(map[string]interface{}{
			"is_primary": false,
			"updated_at": time.Now(),
		}).Error
}

// applyFilter applies filter options to the query
func (r *GormBranchRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	sortField := ValidateSortField(filter.OrderBy, BranchSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormBranchRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR address ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "is_active":
			query = query.Where("is_active = ?", value)
		}
	}

	return query
}

// Ensure GormBranchRepository implements BranchRepository
var _ identity.BranchRepository = (*GormBranchRepository)(nil)
