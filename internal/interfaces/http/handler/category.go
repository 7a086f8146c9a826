package handler

import (
	catalogapp "github.com/facturo/backend/internal/application/catalog"
	"github.com/facturo/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CategoryHandler handles item category endpoints
type CategoryHandler struct {
	BaseHandler
	categoryService *catalogapp.CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService *catalogapp.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// Create creates a category in the selected branch
// POST /api/v1/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	scope, ok := getScope(c)
	if !ok || scope.BranchID == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var input catalogapp.CreateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.ValidationError(c, err)
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), *scope.BranchID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, category)
}

// Get returns a category of the selected branch
// GET /api/v1/categories/:id
func (h *CategoryHandler) Get(c *gin.Context) {
	scope, ok := getScope(c)
	if !ok || scope.BranchID == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid category ID")
		return
	}

	category, err := h.categoryService.GetCategory(c.Request.Context(), *scope.BranchID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, category)
}

// List returns the categories of the selected branch
// GET /api/v1/categories
func (h *CategoryHandler) List(c *gin.Context) {
	scope, ok := getScope(c)
	if !ok || scope.BranchID == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	categories, err := h.categoryService.ListCategories(c.Request.Context(), *scope.BranchID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, categories)
}

// Update modifies a category of the selected branch
// PUT /api/v1/categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	scope, ok := getScope(c)
	if !ok || scope.BranchID == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid category ID")
		return
	}

	var input catalogapp.UpdateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.ValidationError(c, err)
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), *scope.BranchID, id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, category)
}

// Delete removes a category; its items are kept and left uncategorized
// DELETE /api/v1/categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	scope, ok := getScope(c)
	if !ok || scope.BranchID == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid category ID")
		return
	}

	if err := h.categoryService.DeleteCategory(c.Request.Context(), *scope.BranchID, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
