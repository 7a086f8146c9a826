package persistence

import (
	"context"
	"errors"

	"github.com/facturo/backend/internal/domain/catalog"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTaxRateRepository implements TaxRateRepository using GORM
type GormTaxRateRepository struct {
	db *gorm.DB
}

// NewGormTaxRateRepository creates a new GormTaxRateRepository
func NewGormTaxRateRepository(db *gorm.DB) *GormTaxRateRepository {
	return &GormTaxRateRepository{db: db}
}

// FindByIDForOrganization finds a tax rate by ID within an organization
func (r *GormTaxRateRepository) FindByIDForOrganization(ctx context.Context, organizationID, id uuid.UUID) (*catalog.TaxRate, error) {
	var rate catalog.TaxRate
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&rate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rate, nil
}

// FindAllForOrganization finds all tax rates of an organization
func (r *GormTaxRateRepository) FindAllForOrganization(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]catalog.TaxRate, error) {
	var rates []catalog.TaxRate
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&catalog.TaxRate{}).Where("organization_id = ?", organizationID),
		filter,
	)
	if err := query.Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

// Save creates or updates a tax rate
func (r *GormTaxRateRepository) Save(ctx context.Context, rate *catalog.TaxRate) error {
	return r.db.WithContext(ctx).Save(rate).Error
}

// CountItemsUsingRate counts catalog items referencing the rate
func (r *GormTaxRateRepository) CountItemsUsingRate(ctx context.Context, rateID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Item{}).
		Where("tax_rate_id = ?", rateID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteForOrganization deletes a tax rate within an organization
func (r *GormTaxRateRepository) DeleteForOrganization(ctx context.Context, organizationID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.TaxRate{}, "organization_id = ? AND id = ?", organizationID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormTaxRateRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "is_active":
			query = query.Where("is_active = ?", value)
		}
	}

	sortField := ValidateSortField(filter.OrderBy, TaxRateSortFields, "name")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	return query
}

// Ensure GormTaxRateRepository implements TaxRateRepository
var _ catalog.TaxRateRepository = (*GormTaxRateRepository)(nil)
