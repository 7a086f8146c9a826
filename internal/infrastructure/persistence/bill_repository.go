package persistence

import (
	"context"
	"errors"

	"github.com/facturo/backend/internal/domain/billing"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBillRepository implements BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// FindByIDForBranch finds a bill by ID within a branch, lines preloaded
func (r *GormBillRepository) FindByIDForBranch(ctx context.Context, branchID, id uuid.UUID) (*billing.Bill, error) {
	var bill billing.Bill
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("bill_lines.created_at ASC")
		}).
		Where("branch_id = ? AND id = ?", branchID, id).
		First(&bill).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &bill, nil
}

// FindByPublicIDForBranch finds a bill by its opaque public identifier
func (r *GormBillRepository) FindByPublicIDForBranch(ctx context.Context, branchID, publicID uuid.UUID) (*billing.Bill, error) {
	var bill billing.Bill
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("bill_lines.created_at ASC")
		}).
		Where("branch_id = ? AND public_id = ?", branchID, publicID).
		First(&bill).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &bill, nil
}

// FindAllForBranch finds all bills of a branch without preloading lines
func (r *GormBillRepository) FindAllForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]billing.Bill, error) {
	var bills []billing.Bill
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&billing.Bill{}).Where("branch_id = ?", branchID),
		filter,
	)
	if err := query.Find(&bills).Error; err != nil {
		return nil, err
	}
	return bills, nil
}

// CountForBranch counts bills of a branch
func (r *GormBillRepository) CountForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&billing.Bill{}).Where("branch_id = ?", branchID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByUser counts bills created by a user across all branches
func (r *GormBillRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&billing.Bill{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a bill together with its lines
func (r *GormBillRepository) Save(ctx context.Context, bill *billing.Bill) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.persist(tx, bill)
	})
}

// MutateWithLock loads the bill under a per-bill row lock, applies fn, and
// persists the bill with its lines and derived totals in the same
// transaction. An error from fn rolls everything back.
func (r *GormBillRepository) MutateWithLock(ctx context.Context, branchID, billID uuid.UUID, fn func(bill *billing.Bill) error) (*billing.Bill, error) {
	var bill billing.Bill
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("branch_id = ? AND id = ?", branchID, billID).
			First(&bill).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		// Lines are loaded inside the transaction, after the lock is held, so
		// fn sees a consistent snapshot.
		if err := tx.
			Where("bill_id = ?", billID).
			Order("created_at ASC").
			Find(&bill.Lines).Error; err != nil {
			return err
		}

		if err := fn(&bill); err != nil {
			return err
		}

		return r.persist(tx, &bill)
	})
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

// DeleteForBranch deletes a bill and its lines within a branch
func (r *GormBillRepository) DeleteForBranch(ctx context.Context, branchID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&billing.Bill{}, "branch_id = ? AND id = ?", branchID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return tx.Delete(&billing.BillLine{}, "bill_id = ?", id).Error
	})
}

// persist writes the bill row and reconciles its lines: rows absent from the
// aggregate are deleted, the rest are upserted.
func (r *GormBillRepository) persist(tx *gorm.DB, bill *billing.Bill) error {
	if err := tx.Omit(clause.Associations).Save(bill).Error; err != nil {
		return err
	}

	lineIDs := make([]uuid.UUID, len(bill.Lines))
	for i := range bill.Lines {
		lineIDs[i] = bill.Lines[i].ID
	}

	deleteQuery := tx.Where("bill_id = ?", bill.ID)
	if len(lineIDs) > 0 {
		deleteQuery = deleteQuery.Where("id NOT IN ?", lineIDs)
	}
	if err := deleteQuery.Delete(&billing.BillLine{}).Error; err != nil {
		return err
	}

	for i := range bill.Lines {
		if err := tx.Save(&bill.Lines[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormBillRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	sortField := ValidateSortField(filter.OrderBy, BillSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormBillRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "user_id":
			query = query.Where("user_id = ?", value)
		case "client_id":
			query = query.Where("client_id = ?", value)
		}
	}

	return query
}

// Ensure GormBillRepository implements BillRepository
var _ billing.BillRepository = (*GormBillRepository)(nil)
