package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	billingapp "github.com/facturo/backend/internal/application/billing"
	"github.com/facturo/backend/internal/domain/billing"
	"github.com/facturo/backend/internal/domain/catalog"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/facturo/backend/internal/interfaces/http/dto"
	"github.com/facturo/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type billHandlerFixture struct {
	billRepo   *MockBillRepository
	itemRepo   *MockItemRepository
	clientRepo *MockClientRepository
	scope      shared.Scope
	userID     uuid.UUID
	router     *gin.Engine
}

func newBillHandlerFixture() *billHandlerFixture {
	branchID := uuid.New()
	f := &billHandlerFixture{
		billRepo:   new(MockBillRepository),
		itemRepo:   new(MockItemRepository),
		clientRepo: new(MockClientRepository),
		scope:      shared.BranchScope(uuid.New(), branchID),
		userID:     uuid.New(),
	}

	service := billingapp.NewBillService(f.billRepo, f.itemRepo, f.clientRepo, zap.NewNop())
	h := NewBillHandler(service)

	f.router = gin.New()
	f.router.Use(func(c *gin.Context) {
		c.Set(middleware.ScopeKey, f.scope)
		c.Set(middleware.JWTUserIDKey, f.userID.String())
		c.Next()
	})

	bills := f.router.Group("/api/v1/bills")
	bills.POST("", h.Create)
	bills.GET("", h.List)
	bills.GET("/public/:publicId", h.GetByPublicID)
	bills.GET("/:id", h.Get)
	bills.PUT("/:id", h.Update)
	bills.DELETE("/:id", h.Delete)
	bills.POST("/:id/lines", h.AddLine)
	bills.PUT("/:id/lines/:lineId", h.UpdateLine)
	bills.DELETE("/:id/lines/:lineId", h.RemoveLine)
	bills.POST("/:id/recalculate", h.Recalculate)

	return f
}

type billEnvelope struct {
	Success bool                  `json:"success"`
	Data    billingapp.BillResult `json:"data"`
	Error   *dto.ErrorInfo        `json:"error"`
}

func (f *billHandlerFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeBill(t *testing.T, w *httptest.ResponseRecorder) billEnvelope {
	t.Helper()
	var resp billEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (f *billHandlerFixture) draftBill(t *testing.T, title string) *billing.Bill {
	t.Helper()
	bill, err := billing.NewBill(f.scope.Branch(), f.userID, title)
	require.NoError(t, err)
	return bill
}

func TestBillHandler_Create(t *testing.T) {
	t.Run("creates draft bill", func(t *testing.T) {
		f := newBillHandlerFixture()
		f.billRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Bill")).Return(nil)

		w := f.do(t, http.MethodPost, "/api/v1/bills", gin.H{"title": "Consumo agosto"})

		assert.Equal(t, http.StatusCreated, w.Code)
		resp := decodeBill(t, w)
		assert.True(t, resp.Success)
		assert.Equal(t, "Consumo agosto", resp.Data.Title)
		assert.Equal(t, "draft", resp.Data.Status)
		assert.Equal(t, f.scope.Branch(), resp.Data.BranchID)
		assert.Equal(t, f.userID, resp.Data.UserID)
		f.billRepo.AssertExpectations(t)
	})

	t.Run("rejects missing title", func(t *testing.T) {
		f := newBillHandlerFixture()

		w := f.do(t, http.MethodPost, "/api/v1/bills", gin.H{"description": "sin titulo"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeBill(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		f.billRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown client", func(t *testing.T) {
		f := newBillHandlerFixture()
		clientID := uuid.New()
		f.clientRepo.On("FindByIDForOrganization", mock.Anything, f.scope.OrganizationID, clientID).
			Return(nil, shared.ErrNotFound)

		w := f.do(t, http.MethodPost, "/api/v1/bills", gin.H{
			"title":     "Consumo agosto",
			"client_id": clientID,
		})

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeBill(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "CLIENT_NOT_FOUND", resp.Error.Code)
	})
}

func TestBillHandler_Get(t *testing.T) {
	t.Run("returns bill with lines", func(t *testing.T) {
		f := newBillHandlerFixture()
		bill := f.draftBill(t, "Consumo agosto")
		f.billRepo.On("FindByIDForBranch", mock.Anything, f.scope.Branch(), bill.ID).Return(bill, nil)

		w := f.do(t, http.MethodGet, "/api/v1/bills/"+bill.ID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeBill(t, w)
		assert.Equal(t, bill.ID, resp.Data.ID)
		assert.Equal(t, bill.PublicID, resp.Data.PublicID)
	})

	t.Run("unknown bill is 404", func(t *testing.T) {
		f := newBillHandlerFixture()
		billID := uuid.New()
		f.billRepo.On("FindByIDForBranch", mock.Anything, f.scope.Branch(), billID).
			Return(nil, shared.ErrNotFound)

		w := f.do(t, http.MethodGet, "/api/v1/bills/"+billID.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeBill(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "BILL_NOT_FOUND", resp.Error.Code)
	})

	t.Run("repository failure is 500, not 404", func(t *testing.T) {
		f := newBillHandlerFixture()
		billID := uuid.New()
		f.billRepo.On("FindByIDForBranch", mock.Anything, f.scope.Branch(), billID).
			Return(nil, errors.New("connection reset"))

		w := f.do(t, http.MethodGet, "/api/v1/bills/"+billID.String(), nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeBill(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		f := newBillHandlerFixture()

		w := f.do(t, http.MethodGet, "/api/v1/bills/not-a-uuid", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBillHandler_GetByPublicID(t *testing.T) {
	f := newBillHandlerFixture()
	bill := f.draftBill(t, "Consumo agosto")
	f.billRepo.On("FindByPublicIDForBranch", mock.Anything, f.scope.Branch(), bill.PublicID).Return(bill, nil)

	w := f.do(t, http.MethodGet, "/api/v1/bills/public/"+bill.PublicID.String(), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBill(t, w)
	assert.Equal(t, bill.ID, resp.Data.ID)
}

func TestBillHandler_List(t *testing.T) {
	f := newBillHandlerFixture()
	bill := f.draftBill(t, "Consumo agosto")
	f.billRepo.On("FindAllForBranch", mock.Anything, f.scope.Branch(), mock.AnythingOfType("shared.Filter")).
		Return([]billing.Bill{*bill}, nil)
	f.billRepo.On("CountForBranch", mock.Anything, f.scope.Branch(), mock.AnythingOfType("shared.Filter")).
		Return(int64(1), nil)

	w := f.do(t, http.MethodGet, "/api/v1/bills?status=draft&page=1&page_size=10", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool                    `json:"success"`
		Data    []billingapp.BillResult `json:"data"`
		Meta    *dto.Meta               `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
}

func TestBillHandler_AddLine(t *testing.T) {
	t.Run("adds line and recalculates totals", func(t *testing.T) {
		f := newBillHandlerFixture()
		bill := f.draftBill(t, "Consumo agosto")

		item, err := catalog.NewItem(f.scope.Branch(), "Cerveza Presidente", decimal.NewFromInt(100), uuid.New())
		require.NoError(t, err)

		f.itemRepo.On("FindByIDForBranch", mock.Anything, f.scope.Branch(), item.ID).Return(item, nil)
		f.billRepo.On("MutateWithLock", mock.Anything, f.scope.Branch(), bill.ID).Return(bill, nil)
		f.itemRepo.On("CurrentTaxPercentages", mock.Anything, []uuid.UUID{item.ID}).
			Return(map[uuid.UUID]decimal.Decimal{item.ID: decimal.NewFromInt(18)}, nil)

		w := f.do(t, http.MethodPost, "/api/v1/bills/"+bill.ID.String()+"/lines", gin.H{
			"item_id":  item.ID,
			"quantity": 2,
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		resp := decodeBill(t, w)
		require.Len(t, resp.Data.Lines, 1)
		assert.True(t, resp.Data.Subtotal.Equal(decimal.NewFromInt(200)), "subtotal %s", resp.Data.Subtotal)
		assert.True(t, resp.Data.TaxAmount.Equal(decimal.NewFromInt(36)), "tax %s", resp.Data.TaxAmount)
		assert.True(t, resp.Data.Amount.Equal(decimal.NewFromInt(236)), "amount %s", resp.Data.Amount)
	})

	t.Run("unknown item is 404", func(t *testing.T) {
		f := newBillHandlerFixture()
		bill := f.draftBill(t, "Consumo agosto")
		itemID := uuid.New()
		f.itemRepo.On("FindByIDForBranch", mock.Anything, f.scope.Branch(), itemID).
			Return(nil, shared.ErrNotFound)

		w := f.do(t, http.MethodPost, "/api/v1/bills/"+bill.ID.String()+"/lines", gin.H{
			"item_id":  itemID,
			"quantity": 1,
		})

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeBill(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ITEM_NOT_FOUND", resp.Error.Code)
		f.billRepo.AssertNotCalled(t, "MutateWithLock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("duplicate item is rejected", func(t *testing.T) {
		f := newBillHandlerFixture()
		bill := f.draftBill(t, "Consumo agosto")

		item, err := catalog.NewItem(f.scope.Branch(), "Cerveza Presidente", decimal.NewFromInt(100), uuid.New())
		require.NoError(t, err)
		_, err = bill.AddLine(item.ID, item.BranchID, decimal.NewFromInt(1), item.UnitPrice, "")
		require.NoError(t, err)

		f.itemRepo.On("FindByIDForBranch", mock.Anything, f.scope.Branch(), item.ID).Return(item, nil)
		f.billRepo.On("MutateWithLock", mock.Anything, f.scope.Branch(), bill.ID).Return(bill, nil)

		w := f.do(t, http.MethodPost, "/api/v1/bills/"+bill.ID.String()+"/lines", gin.H{
			"item_id":  item.ID,
			"quantity": 1,
		})

		assert.Equal(t, http.StatusConflict, w.Code)
		resp := decodeBill(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "DUPLICATE_LINE", resp.Error.Code)
	})
}

func TestBillHandler_RemoveLine(t *testing.T) {
	f := newBillHandlerFixture()
	bill := f.draftBill(t, "Consumo agosto")
	itemID := uuid.New()
	line, err := bill.AddLine(itemID, f.scope.Branch(), decimal.NewFromInt(3), decimal.NewFromInt(50), "")
	require.NoError(t, err)

	f.billRepo.On("MutateWithLock", mock.Anything, f.scope.Branch(), bill.ID).Return(bill, nil)

	w := f.do(t, http.MethodDelete, "/api/v1/bills/"+bill.ID.String()+"/lines/"+line.ID.String(), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBill(t, w)
	assert.Empty(t, resp.Data.Lines)
	assert.True(t, resp.Data.Amount.IsZero(), "amount %s", resp.Data.Amount)
}

func TestBillHandler_Update(t *testing.T) {
	t.Run("rejects invalid status", func(t *testing.T) {
		f := newBillHandlerFixture()
		bill := f.draftBill(t, "Consumo agosto")

		w := f.do(t, http.MethodPut, "/api/v1/bills/"+bill.ID.String(), gin.H{"status": "archived"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeBill(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	})

	t.Run("updates title and status", func(t *testing.T) {
		f := newBillHandlerFixture()
		bill := f.draftBill(t, "Consumo agosto")
		f.billRepo.On("MutateWithLock", mock.Anything, f.scope.Branch(), bill.ID).Return(bill, nil)

		w := f.do(t, http.MethodPut, "/api/v1/bills/"+bill.ID.String(), gin.H{
			"title":  "Consumo septiembre",
			"status": "issued",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeBill(t, w)
		assert.Equal(t, "Consumo septiembre", resp.Data.Title)
		assert.Equal(t, "issued", resp.Data.Status)
	})
}

func TestBillHandler_Delete(t *testing.T) {
	f := newBillHandlerFixture()
	bill := f.draftBill(t, "Consumo agosto")
	f.billRepo.On("FindByIDForBranch", mock.Anything, f.scope.Branch(), bill.ID).Return(bill, nil)
	f.billRepo.On("DeleteForBranch", mock.Anything, f.scope.Branch(), bill.ID).Return(nil)

	w := f.do(t, http.MethodDelete, "/api/v1/bills/"+bill.ID.String(), nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	f.billRepo.AssertExpectations(t)
}

func TestBillHandler_Recalculate(t *testing.T) {
	f := newBillHandlerFixture()
	bill := f.draftBill(t, "Consumo agosto")
	itemID := uuid.New()
	_, err := bill.AddLine(itemID, f.scope.Branch(), decimal.NewFromInt(2), decimal.NewFromInt(100), "")
	require.NoError(t, err)

	f.billRepo.On("MutateWithLock", mock.Anything, f.scope.Branch(), bill.ID).Return(bill, nil)
	f.itemRepo.On("CurrentTaxPercentages", mock.Anything, []uuid.UUID{itemID}).
		Return(map[uuid.UUID]decimal.Decimal{itemID: decimal.NewFromInt(18)}, nil)

	w := f.do(t, http.MethodPost, "/api/v1/bills/"+bill.ID.String()+"/recalculate", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBill(t, w)
	assert.True(t, resp.Data.Amount.Equal(decimal.NewFromInt(236)), "amount %s", resp.Data.Amount)
}

func TestBillHandler_MissingScope(t *testing.T) {
	service := billingapp.NewBillService(new(MockBillRepository), new(MockItemRepository), new(MockClientRepository), zap.NewNop())
	h := NewBillHandler(service)

	router := gin.New()
	router.POST("/api/v1/bills", h.Create)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bills", bytes.NewReader([]byte(`{"title":"x"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
