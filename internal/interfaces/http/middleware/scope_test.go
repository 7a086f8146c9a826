package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBranchSelectorRouter(probe gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(BranchSelector())
	router.GET("/probe", probe)
	return router
}

func TestBranchSelector_ValidHeader(t *testing.T) {
	branchID := uuid.New()

	var got *uuid.UUID
	router := newBranchSelectorRouter(func(c *gin.Context) {
		got = GetBranchSelector(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("X-Branch-Id", branchID.String())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, branchID, *got)
}

func TestBranchSelector_MalformedHeader(t *testing.T) {
	router := newBranchSelectorRouter(func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("X-Branch-Id", "not-a-uuid")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_BRANCH_ID")
}

func TestBranchSelector_MissingHeader(t *testing.T) {
	var got *uuid.UUID
	router := newBranchSelectorRouter(func(c *gin.Context) {
		got = GetBranchSelector(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, got)
}

func TestSubjectFromContext(t *testing.T) {
	jwtService := newTestJWTService()
	pair, input := issueToken(t, jwtService)
	branchID := uuid.New()

	router := gin.New()
	router.Use(JWTAuthMiddleware(jwtService), BranchSelector())
	router.GET("/probe", func(c *gin.Context) {
		subject, ok := SubjectFromContext(c)
		require.True(t, ok)
		assert.Equal(t, input.UserID, subject.UserID)
		assert.Equal(t, input.OrganizationID, subject.OrganizationID)
		require.NotNil(t, subject.BranchID)
		assert.Equal(t, branchID, *subject.BranchID)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	req.Header.Set("X-Branch-Id", branchID.String())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubjectFromContext_Unauthenticated(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/probe", nil)

	_, ok := SubjectFromContext(c)
	assert.False(t, ok)
}
