package handler

import (
	catalogapp "github.com/facturo/backend/internal/application/catalog"
	"github.com/facturo/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ItemHandler handles catalog item endpoints
type ItemHandler struct {
	BaseHandler
	itemService *catalogapp.ItemService
}

// NewItemHandler creates a new item handler
func NewItemHandler(itemService *catalogapp.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// Create creates an item in the selected branch
// POST /api/v1/items
func (h *ItemHandler) Create(c *gin.Context) {
	scope, ok := getScope(c)
	if !ok || scope.BranchID == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var input catalogapp.CreateItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.ValidationError(c, err)
		return
	}

	item, err := h.itemService.CreateItem(c.Request.Context(), scope.OrganizationID, *scope.BranchID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, item)
}

// Get returns an item of the selected branch
// GET /api/v1/items/:id
func (h *ItemHandler) Get(c *gin.Context) {
	scope, ok := getScope(c)
	if !ok || scope.BranchID == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	item, err := h.itemService.GetItem(c.Request.Context(), *scope.BranchID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// List returns the items of the selected branch
// GET /api/v1/items
func (h *ItemHandler) List(c *gin.Context) {
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

	filter := req.ToFilter()
	if categoryID := c.Query("category_id"); categoryID != "" {
		id, err := uuid.Parse(categoryID)
		if err != nil {
			h.BadRequest(c, "Invalid category ID")
			return
		}
		filter.Filters["category_id"] = id
	}
	if taxRateID := c.Query("tax_rate_id"); taxRateID != "" {
		id, err := uuid.Parse(taxRateID)
		if err != nil {
			h.BadRequest(c, "Invalid tax rate ID")
			return
		}
		filter.Filters["tax_rate_id"] = id
	}
	if isActive := c.Query("is_active"); isActive != "" {
		filter.Filters["is_active"] = isActive == "true"
	}

	result, err := h.itemService.ListItems(c.Request.Context(), *scope.BranchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, filter.Page, filter.PageSize)
}

// Update modifies an item of the selected branch
// PUT /api/v1/items/:id
func (h *ItemHandler) Update(c *gin.Context) {
	scope, ok := getScope(c)
	if !ok || scope.BranchID == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	var input catalogapp.UpdateItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.ValidationError(c, err)
		return
	}

	item, err := h.itemService.UpdateItem(c.Request.Context(), scope.OrganizationID, *scope.BranchID, id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// Delete removes an item; bill lines referencing it keep their captured price
// DELETE /api/v1/items/:id
func (h *ItemHandler) Delete(c *gin.Context) {
	scope, ok := getScope(c)
	if !ok || scope.BranchID == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	if err := h.itemService.DeleteItem(c.Request.Context(), *scope.BranchID, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
