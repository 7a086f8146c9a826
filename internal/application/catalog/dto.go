package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateTaxRateInput carries the fields for creating a tax rate
type CreateTaxRateInput struct {
	Name       string          `json:"name" binding:"required"`
	Percentage decimal.Decimal `json:"percentage"`
}

// UpdateTaxRateInput carries the updatable fields of a tax rate; nil fields
// are left untouched
type UpdateTaxRateInput struct {
	Name       *string          `json:"name"`
	Percentage *decimal.Decimal `json:"percentage"`
	IsActive   *bool            `json:"is_active"`
}

// CreateCategoryInput carries the fields for creating an item category
type CreateCategoryInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdateCategoryInput carries the updatable fields of a category
type UpdateCategoryInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// CreateItemInput carries the fields for creating a catalog item
type CreateItemInput struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRateID   uuid.UUID       `json:"tax_rate_id" binding:"required"`
	CategoryID  *uuid.UUID      `json:"category_id"`
}

// UpdateItemInput carries the updatable fields of an item; nil fields are
// left untouched. ClearCategory removes the category assignment and wins
// over CategoryID.
type UpdateItemInput struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
	TaxRateID     *uuid.UUID       `json:"tax_rate_id"`
	CategoryID    *uuid.UUID       `json:"category_id"`
	ClearCategory bool             `json:"clear_category"`
	IsActive      *bool            `json:"is_active"`
}
