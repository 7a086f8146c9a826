package handler

import (
	partnerapp "github.com/facturo/backend/internal/application/partner"
	"github.com/facturo/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ClientHandler handles client endpoints
type ClientHandler struct {
	BaseHandler
	clientService *partnerapp.ClientService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *partnerapp.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// Create creates a client in the caller's organization
// POST /api/v1/clients
func (h *ClientHandler) Create(c *gin.Context) {
	scope, ok := getScope(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var input partnerapp.CreateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.ValidationError(c, err)
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), scope.OrganizationID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, client)
}

// Get returns a client of the caller's organization
// GET /api/v1/clients/:id
func (h *ClientHandler) Get(c *gin.Context) {
	scope, ok := getScope(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	client, err := h.clientService.GetClient(c.Request.Context(), scope.OrganizationID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, client)
}

// List returns the clients of the caller's organization
// GET /api/v1/clients
func (h *ClientHandler) List(c *gin.Context) {
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

	filter := req.ToFilter()

	result, err := h.clientService.ListClients(c.Request.Context(), scope.OrganizationID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, filter.Page, filter.PageSize)
}

// Update modifies a client of the caller's organization
// PUT /api/v1/clients/:id
func (h *ClientHandler) Update(c *gin.Context) {
	scope, ok := getScope(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	var input partnerapp.UpdateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.ValidationError(c, err)
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), scope.OrganizationID, id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, client)
}

// Delete removes a client; bills keep the reference for history
// DELETE /api/v1/clients/:id
func (h *ClientHandler) Delete(c *gin.Context) {
	scope, ok := getScope(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	if err := h.clientService.DeleteClient(c.Request.Context(), scope.OrganizationID, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
