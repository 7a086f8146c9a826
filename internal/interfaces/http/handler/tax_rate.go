package handler

import (
	catalogapp "github.com/facturo/backend/internal/application/catalog"
	"github.com/facturo/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// TaxRateHandler handles tax rate endpoints
type TaxRateHandler struct {
	BaseHandler
	taxRateService *catalogapp.TaxRateService
}

// NewTaxRateHandler creates a new tax rate handler
func NewTaxRateHandler(taxRateService *catalogapp.TaxRateService) *TaxRateHandler {
	return &TaxRateHandler{taxRateService: taxRateService}
}

// Create creates a tax rate in the caller's organization
// POST /api/v1/tax-rates
func (h *TaxRateHandler) Create(c *gin.Context) {
	scope, ok := getScope(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var input catalogapp.CreateTaxRateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.ValidationError(c, err)
		return
	}

	rate, err := h.taxRateService.CreateTaxRate(c.Request.Context(), scope.OrganizationID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, rate)
}

// Get returns a tax rate
// GET /api/v1/tax-rates/:id
func (h *TaxRateHandler) Get(c *gin.Context) {
	scope, ok := getScope(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid tax rate ID")
		return
	}

	rate, err := h.taxRateService.GetTaxRate(c.Request.Context(), scope.OrganizationID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rate)
}

// List returns the tax rates of the caller's organization
// GET /api/v1/tax-rates
func (h *TaxRateHandler) List(c *gin.Context) {
	scope, ok := getScope(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rates, err := h.taxRateService.ListTaxRates(c.Request.Context(), scope.OrganizationID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rates)
}

// Update modifies a tax rate
// PUT /api/v1/tax-rates/:id
func (h *TaxRateHandler) Update(c *gin.Context) {
	scope, ok := getScope(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid tax rate ID")
		return
	}

	var input catalogapp.UpdateTaxRateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.ValidationError(c, err)
		return
	}

	rate, err := h.taxRateService.UpdateTaxRate(c.Request.Context(), scope.OrganizationID, id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rate)
}

// Delete removes a tax rate that no item references
// DELETE /api/v1/tax-rates/:id
func (h *TaxRateHandler) Delete(c *gin.Context) {
	scope, ok := getScope(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid tax rate ID")
		return
	}

	if err := h.taxRateService.DeleteTaxRate(c.Request.Context(), scope.OrganizationID, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
