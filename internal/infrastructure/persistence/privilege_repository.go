package persistence

import (
	"context"
	"errors"

	"github.com/facturo/backend/internal/domain/identity"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPrivilegeRepository implements PrivilegeRepository using GORM
type GormPrivilegeRepository struct {
	db *gorm.DB
}

// NewGormPrivilegeRepository creates a new GormPrivilegeRepository
func NewGormPrivilegeRepository(db *gorm.DB) *GormPrivilegeRepository {
	return &GormPrivilegeRepository{db: db}
}

// FindByID finds a privilege by its ID
func (r *GormPrivilegeRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Privilege, error) {
	var privilege identity.Privilege
	if err := r.db.WithContext(ctx).First(&privilege, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &privilege, nil
}

// FindByName finds a privilege by its unique name
func (r *GormPrivilegeRepository) FindByName(ctx context.Context, name string) (*identity.Privilege, error) {
	var privilege identity.Privilege
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&privilege).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &privilege, nil
}

// FindByResourceAction finds a privilege by its unique (resource, action) pair
func (r *GormPrivilegeRepository) FindByResourceAction(ctx context.Context, resource, action string) (*identity.Privilege, error) {
	var privilege identity.Privilege
	if err := r.db.WithContext(ctx).
		Where("resource = ? AND action = ?", resource, action).
		First(&privilege).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &privilege, nil
}

// FindAll finds all privileges matching the filter
func (r *GormPrivilegeRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Privilege, error) {
	var privileges []identity.Privilege
	query := r.applyFilter(r.db.WithContext(ctx).Model(&identity.Privilege{}), filter)
	if err := query.Find(&privileges).Error; err != nil {
		return nil, err
	}
	return privileges, nil
}

// FindAllActive lists the whole active privilege catalog, unpaginated
func (r *GormPrivilegeRepository) FindAllActive(ctx context.Context) ([]identity.Privilege, error) {
	var privileges []identity.Privilege
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("resource, action").
		Find(&privileges).Error; err != nil {
		return nil, err
	}
	return privileges, nil
}

// Count counts privileges matching the filter
func (r *GormPrivilegeRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&identity.Privilege{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a privilege
func (r *GormPrivilegeRepository) Save(ctx context.Context, privilege *identity.Privilege) error {
	return r.db.WithContext(ctx).Save(privilege).Error
}

// applyFilter applies filter options to the query
func (r *GormPrivilegeRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	sortField := ValidateSortField(filter.OrderBy, PrivilegeSortFields, "name")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPrivilegeRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "resource":
			query = query.Where("resource = ?", value)
		case "is_active":
			query = query.Where("is_active = ?", value)
		}
	}

	return query
}

// Ensure GormPrivilegeRepository implements PrivilegeRepository
var _ identity.PrivilegeRepository = (*GormPrivilegeRepository)(nil)

// GormUserPrivilegeRepository implements UserPrivilegeRepository using GORM
type GormUserPrivilegeRepository struct {
	db *gorm.DB
}

// NewGormUserPrivilegeRepository creates a new GormUserPrivilegeRepository
func NewGormUserPrivilegeRepository(db *gorm.DB) *GormUserPrivilegeRepository {
	return &GormUserPrivilegeRepository{db: db}
}

// FindByID finds a grant by its ID with the privilege preloaded
func (r *GormUserPrivilegeRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.UserPrivilege, error) {
	var grant identity.UserPrivilege
	if err := r.db.WithContext(ctx).
		Preload("Privilege").
		First(&grant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &grant, nil
}

// FindForUser lists a user's active grants with privileges preloaded. Expiry
// and privilege activation stay with the caller so the decision uses a single
// clock.
func (r *GormUserPrivilegeRepository) FindForUser(ctx context.Context, userID uuid.UUID) ([]identity.UserPrivilege, error) {
	var grants []identity.UserPrivilege
	if err := r.db.WithContext(ctx).
		Preload("Privilege").
		Where("user_id = ? AND is_active = ?", userID, true).
		Find(&grants).Error; err != nil {
		return nil, err
	}
	return grants, nil
}

// FindForUserByResourceAction lists a user's active grants whose privilege
// matches the exact (resource, action) pair
func (r *GormUserPrivilegeRepository) FindForUserByResourceAction(ctx context.Context, userID uuid.UUID, resource, action string) ([]identity.UserPrivilege, error) {
	var grants []identity.UserPrivilege
	if err := r.db.WithContext(ctx).
		Preload("Privilege").
		Select("user_privileges.*").
		Joins("JOIN privileges ON privileges.id = user_privileges.privilege_id").
		Where("user_privileges.user_id = ? AND user_privileges.is_active = ?", userID, true).
		Where("privileges.resource = ? AND privileges.action = ?", resource, action).
		Find(&grants).Error; err != nil {
		return nil, err
	}
	return grants, nil
}

// FindGrant finds the grant binding a user to a privilege, if any
func (r *GormUserPrivilegeRepository) FindGrant(ctx context.Context, userID, privilegeID uuid.UUID) (*identity.UserPrivilege, error) {
	var grant identity.UserPrivilege
	if err := r.db.WithContext(ctx).
		Preload("Privilege").
		Where("user_id = ? AND privilege_id = ?", userID, privilegeID).
		First(&grant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &grant, nil
}

// FindForPrivilege lists active grants of a privilege
func (r *GormUserPrivilegeRepository) FindForPrivilege(ctx context.Context, privilegeID uuid.UUID) ([]identity.UserPrivilege, error) {
	var grants []identity.UserPrivilege
	if err := r.db.WithContext(ctx).
		Preload("Privilege").
		Where("privilege_id = ? AND is_active = ?", privilegeID, true).
		Find(&grants).Error; err != nil {
		return nil, err
	}
	return grants, nil
}

// Save creates or updates a grant. The preloaded privilege is never written
// back; it belongs to the privilege repository.
func (r *GormUserPrivilegeRepository) Save(ctx context.Context, grant *identity.UserPrivilege) error {
	return r.db.WithContext(ctx).Omit("Privilege").Save(grant).Error
}

// Ensure GormUserPrivilegeRepository implements UserPrivilegeRepository
var _ identity.UserPrivilegeRepository = (*GormUserPrivilegeRepository)(nil)
