package handler

import (
	identityapp "github.com/facturo/backend/internal/application/identity"
	"github.com/gin-gonic/gin"
)

// OrganizationHandler handles organization endpoints
type OrganizationHandler struct {
	BaseHandler
	organizationService *identityapp.OrganizationService
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(organizationService *identityapp.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{organizationService: organizationService}
}

type updateOrganizationRequest struct {
	Name  *string `json:"name" binding:"omitempty,max=200"`
	TaxID *string `json:"tax_id" binding:"omitempty,max=50"`
}

// Get returns the caller's organization
// GET /api/v1/organization
func (h *OrganizationHandler) Get(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	org, err := h.organizationService.GetOrganization(c.Request.Context(), organizationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, org)
}

// Update modifies the caller's organization
// PUT /api/v1/organization
func (h *OrganizationHandler) Update(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req updateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	org, err := h.organizationService.UpdateOrganization(c.Request.Context(), organizationID, identityapp.UpdateOrganizationInput{
		Name:  req.Name,
		TaxID: req.TaxID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, org)
}
