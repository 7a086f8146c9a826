package catalog

import (
	"context"
	"errors"

	"github.com/facturo/backend/internal/domain/catalog"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryService handles item categories within a branch
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	logger       *zap.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo catalog.CategoryRepository, logger *zap.Logger) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, logger: logger}
}

// CreateCategory creates a category in the branch
func (s *CategoryService) CreateCategory(ctx context.Context, branchID uuid.UUID, input CreateCategoryInput) (*catalog.Category, error) {
	category, err := catalog.NewCategory(branchID, input.Name, input.Description)
	if err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		s.logger.Error("Failed to save category", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Category created",
		zap.String("branch_id", branchID.String()),
		zap.String("category_id", category.ID.String()),
		zap.String("name", category.Name))
	return category, nil
}

// GetCategory returns a category of the branch
func (s *CategoryService) GetCategory(ctx context.Context, branchID, id uuid.UUID) (*catalog.Category, error) {
	category, err := s.categoryRepo.FindByIDForBranch(ctx, branchID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("CATEGORY_NOT_FOUND", "Category not found")
		}
		return nil, err
	}
	return category, nil
}

// ListCategories lists the branch's categories
func (s *CategoryService) ListCategories(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]catalog.Category, error) {
	return s.categoryRepo.FindAllForBranch(ctx, branchID, filter)
}

// UpdateCategory applies the non-nil fields of input
func (s *CategoryService) UpdateCategory(ctx context.Context, branchID, id uuid.UUID, input UpdateCategoryInput) (*catalog.Category, error) {
	category, err := s.GetCategory(ctx, branchID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := category.Rename(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.Description != nil {
		category.Describe(*input.Description)
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		s.logger.Error("Failed to save category", zap.Error(err))
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category. Items in the category are kept and
// left uncategorized.
func (s *CategoryService) DeleteCategory(ctx context.Context, branchID, id uuid.UUID) error {
	if err := s.categoryRepo.DeleteForBranch(ctx, branchID, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("CATEGORY_NOT_FOUND", "Category not found")
		}
		return err
	}

	s.logger.Info("Category deleted",
		zap.String("branch_id", branchID.String()),
		zap.String("category_id", id.String()))
	return nil
}
