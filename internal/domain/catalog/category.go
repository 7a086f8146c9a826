package catalog

import (
	"strings"

	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Category groups catalog items within a branch
type Category struct {
	shared.BranchAggregateRoot
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:500" json:"description"`
}

// TableName returns the database table name
func (Category) TableName() string {
	return "item_categories"
}

// NewCategory creates a new item category in a branch
func NewCategory(branchID uuid.UUID, name, description string) (*Category, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CATEGORY_NAME", "Category name cannot be empty")
	}

	return &Category{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		Name:                name,
		Description:         description,
	}, nil
}

// Rename changes the category name
func (c *Category) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_CATEGORY_NAME", "Category name cannot be empty")
	}
	c.Name = name
	c.Touch()
	return nil
}

// Describe updates the category description
func (c *Category) Describe(description string) {
	c.Description = description
	c.Touch()
}
