package handler

import (
	identityapp "github.com/facturo/backend/internal/application/identity"
	"github.com/facturo/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BranchHandler handles branch and membership endpoints
type BranchHandler struct {
	BaseHandler
	branchService *identityapp.BranchService
}

// NewBranchHandler creates a new branch handler
func NewBranchHandler(branchService *identityapp.BranchService) *BranchHandler {
	return &BranchHandler{branchService: branchService}
}

type createBranchRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Address string `json:"address" binding:"max=500"`
	Phone   string `json:"phone" binding:"max=50"`
}

type updateBranchRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=200"`
	Address  *string `json:"address" binding:"omitempty,max=500"`
	Phone    *string `json:"phone" binding:"omitempty,max=50"`
	IsActive *bool   `json:"is_active"`
}

type assignUserRequest struct {
	UserID    uuid.UUID `json:"user_id" binding:"required"`
	IsPrimary bool      `json:"is_primary"`
	CanLogin  *bool     `json:"can_login"`
}

// Create creates a branch in the caller's organization
// POST /api/v1/branches
func (h *BranchHandler) Create(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req createBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	branch, err := h.branchService.CreateBranch(c.Request.Context(), organizationID, identityapp.CreateBranchInput{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, branch)
}

// Get returns a branch of the caller's organization
// GET /api/v1/branches/:id
func (h *BranchHandler) Get(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid branch ID")
		return
	}

	branch, err := h.branchService.GetBranch(c.Request.Context(), organizationID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, branch)
}

// List returns the branches of the caller's organization
// GET /api/v1/branches
func (h *BranchHandler) List(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := req.ToFilter()
	if isActive := c.Query("is_active"); isActive != "" {
		filter.Filters["is_active"] = isActive == "true"
	}

	result, err := h.branchService.ListBranches(c.Request.Context(), organizationID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, filter.Page, filter.PageSize)
}

// Update modifies a branch of the caller's organization
// PUT /api/v1/branches/:id
func (h *BranchHandler) Update(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid branch ID")
		return
	}

	var req updateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	branch, err := h.branchService.UpdateBranch(c.Request.Context(), organizationID, id, identityapp.UpdateBranchInput{
		Name:     req.Name,
		Address:  req.Address,
		Phone:    req.Phone,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, branch)
}

// Delete removes a branch of the caller's organization
// DELETE /api/v1/branches/:id
func (h *BranchHandler) Delete(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid branch ID")
		return
	}

	if err := h.branchService.DeleteBranch(c.Request.Context(), organizationID, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// AssignUser links a user to a branch
// POST /api/v1/branches/:id/users
func (h *BranchHandler) AssignUser(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	branchID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid branch ID")
		return
	}

	var req assignUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	// login access is the default for new memberships
	canLogin := true
	if req.CanLogin != nil {
		canLogin = *req.CanLogin
	}

	membership, err := h.branchService.AssignUser(c.Request.Context(), organizationID, identityapp.MembershipInput{
		UserID:    req.UserID,
		BranchID:  branchID,
		IsPrimary: req.IsPrimary,
		CanLogin:  canLogin,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, membership)
}

// RemoveUser unlinks a user from a branch
// DELETE /api/v1/branches/:id/users/:userId
func (h *BranchHandler) RemoveUser(c *gin.Context) {
	branchID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid branch ID")
		return
	}

	userID, ok := parseIDParam(c, "userId")
	if !ok {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.branchService.RemoveUser(c.Request.Context(), userID, branchID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListUserBranches returns the branch memberships of a user
// GET /api/v1/users/:id/branches
func (h *BranchHandler) ListUserBranches(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	memberships, err := h.branchService.ListUserBranches(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, memberships)
}
