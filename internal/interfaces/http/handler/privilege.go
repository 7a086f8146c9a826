package handler

import (
	"time"

	identityapp "github.com/facturo/backend/internal/application/identity"
	"github.com/facturo/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PrivilegeHandler handles privilege definition and grant endpoints
type PrivilegeHandler struct {
	BaseHandler
	privilegeService *identityapp.PrivilegeService
}

// NewPrivilegeHandler creates a new privilege handler
func NewPrivilegeHandler(privilegeService *identityapp.PrivilegeService) *PrivilegeHandler {
	return &PrivilegeHandler{privilegeService: privilegeService}
}

type createPrivilegeRequest struct {
	Resource    string `json:"resource" binding:"required,max=50"`
	Action      string `json:"action" binding:"required,max=50"`
	Description string `json:"description" binding:"max=500"`
}

type updatePrivilegeRequest struct {
	Description *string `json:"description" binding:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active"`
}

type grantRequest struct {
	UserID      uuid.UUID  `json:"user_id" binding:"required"`
	PrivilegeID uuid.UUID  `json:"privilege_id" binding:"required"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// Create defines a new privilege
// POST /api/v1/privileges
func (h *PrivilegeHandler) Create(c *gin.Context) {
	var req createPrivilegeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	privilege, err := h.privilegeService.CreatePrivilege(c.Request.Context(), identityapp.CreatePrivilegeInput{
		Resource:    req.Resource,
		Action:      req.Action,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, privilege)
}

// Get returns a privilege definition
// GET /api/v1/privileges/:id
func (h *PrivilegeHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid privilege ID")
		return
	}

	privilege, err := h.privilegeService.GetPrivilege(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, privilege)
}

// List returns the privilege catalog
// GET /api/v1/privileges
func (h *PrivilegeHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := req.ToFilter()
	if resource := c.Query("resource"); resource != "" {
		filter.Filters["resource"] = resource
	}

	result, err := h.privilegeService.ListPrivileges(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, filter.Page, filter.PageSize)
}

// Update modifies a privilege definition
// PUT /api/v1/privileges/:id
func (h *PrivilegeHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid privilege ID")
		return
	}

	var req updatePrivilegeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	privilege, err := h.privilegeService.UpdatePrivilege(c.Request.Context(), id, req.Description, req.IsActive)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, privilege)
}

// Grant grants a privilege to a user
// POST /api/v1/privileges/grants
func (h *PrivilegeHandler) Grant(c *gin.Context) {
	grantedBy, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req grantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	grant, err := h.privilegeService.Grant(c.Request.Context(), grantedBy, identityapp.GrantInput{
		UserID:      req.UserID,
		PrivilegeID: req.PrivilegeID,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, grant)
}

// Revoke revokes a user's privilege grant
// DELETE /api/v1/privileges/grants/:userId/:privilegeId
func (h *PrivilegeHandler) Revoke(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	privilegeID, ok := parseIDParam(c, "privilegeId")
	if !ok {
		h.BadRequest(c, "Invalid privilege ID")
		return
	}

	if err := h.privilegeService.Revoke(c.Request.Context(), userID, privilegeID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListUserGrants returns the active grants of a user
// GET /api/v1/users/:id/privileges
func (h *PrivilegeHandler) ListUserGrants(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	grants, err := h.privilegeService.ListUserGrants(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, grants)
}

// Seed creates the default privilege catalog entries that are missing
// POST /api/v1/privileges/seed
func (h *PrivilegeHandler) Seed(c *gin.Context) {
	created, err := h.privilegeService.SeedDefaults(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"created": created})
}
