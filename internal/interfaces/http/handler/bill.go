package handler

import (
	billingapp "github.com/facturo/backend/internal/application/billing"
	"github.com/facturo/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillHandler handles bill and bill line endpoints
type BillHandler struct {
	BaseHandler
	billService *billingapp.BillService
}

// NewBillHandler creates a new bill handler
func NewBillHandler(billService *billingapp.BillService) *BillHandler {
	return &BillHandler{billService: billService}
}

type createBillRequest struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description" binding:"max=1000"`
	ClientID    *uuid.UUID `json:"client_id"`
}

type updateBillRequest struct {
	Title       *string    `json:"title" binding:"omitempty,max=200"`
	Description *string    `json:"description" binding:"omitempty,max=1000"`
	Status      *string    `json:"status" binding:"omitempty,oneof=draft issued paid cancelled"`
	ClientID    *uuid.UUID `json:"client_id"`
	ClearClient bool       `json:"clear_client"`
}

type addLineRequest struct {
	ItemID    uuid.UUID        `json:"item_id" binding:"required"`
	Quantity  decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Notes     string           `json:"notes" binding:"max=500"`
}

type updateLineRequest struct {
	Quantity  *decimal.Decimal `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Notes     *string          `json:"notes" binding:"omitempty,max=500"`
}

// Create creates a bill in the selected branch
// POST /api/v1/bills
func (h *BillHandler) Create(c *gin.Context) {
	scope, ok := getScope(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req createBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	bill, err := h.billService.CreateBill(c.Request.Context(), scope, userID, billingapp.CreateBillInput{
		Title:       req.Title,
		Description: req.Description,
		ClientID:    req.ClientID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, bill)
}

// Get returns a bill of the selected branch
// GET /api/v1/bills/:id
func (h *BillHandler) Get(c *gin.Context) {
	scope, ok := getScope(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid bill ID")
		return
	}

	bill, err := h.billService.GetBill(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, bill)
}

// GetByPublicID returns a bill by its public identifier
// GET /api/v1/bills/public/:publicId
func (h *BillHandler) GetByPublicID(c *gin.Context) {
	scope, ok := getScope(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	publicID, ok := parseIDParam(c, "publicId")
	if !ok {
		h.BadRequest(c, "Invalid public bill ID")
		return
	}

	bill, err := h.billService.GetBillByPublicID(c.Request.Context(), scope, publicID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, bill)
}

// List returns the bills of the selected branch
// GET /api/v1/bills
func (h *BillHandler) List(c *gin.Context) {
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
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if userID := c.Query("user_id"); userID != "" {
		id, err := uuid.Parse(userID)
		if err != nil {
			h.BadRequest(c, "Invalid user ID")
			return
		}
		filter.Filters["user_id"] = id
	}
	if clientID := c.Query("client_id"); clientID != "" {
		id, err := uuid.Parse(clientID)
		if err != nil {
			h.BadRequest(c, "Invalid client ID")
			return
		}
		filter.Filters["client_id"] = id
	}

	result, err := h.billService.ListBills(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, filter.Page, filter.PageSize)
}

// Update modifies a bill of the selected branch
// PUT /api/v1/bills/:id
func (h *BillHandler) Update(c *gin.Context) {
	scope, ok := getScope(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid bill ID")
		return
	}

	var req updateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	bill, err := h.billService.UpdateBill(c.Request.Context(), scope, id, billingapp.UpdateBillInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		ClientID:    req.ClientID,
		ClearClient: req.ClearClient,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, bill)
}

// Delete removes a bill and its lines
// DELETE /api/v1/bills/:id
func (h *BillHandler) Delete(c *gin.Context) {
	scope, ok := getScope(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid bill ID")
		return
	}

	if err := h.billService.DeleteBill(c.Request.Context(), scope, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// AddLine adds an item line to a bill and returns the recalculated bill
// POST /api/v1/bills/:id/lines
func (h *BillHandler) AddLine(c *gin.Context) {
	scope, ok := getScope(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid bill ID")
		return
	}

	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	bill, err := h.billService.AddLine(c.Request.Context(), scope, id, billingapp.AddLineInput{
		ItemID:    req.ItemID,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		Notes:     req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, bill)
}

// UpdateLine modifies a bill line and returns the recalculated bill
// PUT /api/v1/bills/:id/lines/:lineId
func (h *BillHandler) UpdateLine(c *gin.Context) {
	scope, ok := getScope(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	billID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid bill ID")
		return
	}

	lineID, ok := parseIDParam(c, "lineId")
	if !ok {
		h.BadRequest(c, "Invalid line ID")
		return
	}

	var req updateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	bill, err := h.billService.UpdateLine(c.Request.Context(), scope, billID, lineID, billingapp.UpdateLineInput{
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		Notes:     req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, bill)
}

// RemoveLine removes a bill line and returns the recalculated bill
// DELETE /api/v1/bills/:id/lines/:lineId
func (h *BillHandler) RemoveLine(c *gin.Context) {
	scope, ok := getScope(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	billID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid bill ID")
		return
	}

	lineID, ok := parseIDParam(c, "lineId")
	if !ok {
		h.BadRequest(c, "Invalid line ID")
		return
	}

	bill, err := h.billService.RemoveLine(c.Request.Context(), scope, billID, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, bill)
}

// Recalculate recomputes the bill totals from its lines and the current tax
// rates
// POST /api/v1/bills/:id/recalculate
func (h *BillHandler) Recalculate(c *gin.Context) {
	scope, ok := getScope(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid bill ID")
		return
	}

	bill, err := h.billService.RecalculateBill(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, bill)
}
