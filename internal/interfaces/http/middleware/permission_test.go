package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/facturo/backend/internal/application/access"
	"github.com/facturo/backend/internal/domain/identity"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/facturo/backend/internal/infrastructure/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type gateFixture struct {
	grantRepo  *MockUserPrivilegeRepository
	branchRepo *MockBranchRepository
	gate       *access.Gate
}

func newGateFixture() *gateFixture {
	logger := zap.NewNop()
	f := &gateFixture{
		grantRepo:  new(MockUserPrivilegeRepository),
		branchRepo: new(MockBranchRepository),
	}
	oracle := access.NewPrivilegeOracle(f.grantRepo, logger)
	resolver := access.NewScopeResolver(f.branchRepo, oracle, logger)
	f.gate = access.NewGate(oracle, resolver, logger)
	return f
}

func effectiveGrant(t *testing.T, userID uuid.UUID, resource, action string) identity.UserPrivilege {
	t.Helper()
	privilege, err := identity.NewPrivilege(resource, action, "")
	require.NoError(t, err)
	grant, err := identity.NewUserPrivilege(userID, privilege.ID, uuid.New(), nil)
	require.NoError(t, err)
	grant.Privilege = *privilege
	return *grant
}

// newPermissionRouter authenticates requests with pre-built claims instead of
// running the full JWT middleware, then guards /probe with the gate.
func newPermissionRouter(subject access.Subject, gate *access.Gate, resource, action string, req shared.ScopeRequirement, probe gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if subject.UserID != uuid.Nil {
			c.Set(JWTClaimsKey, &auth.Claims{
				UserID:         subject.UserID.String(),
				OrganizationID: subject.OrganizationID.String(),
			})
		}
		if subject.BranchID != nil {
			c.Set(BranchSelectorKey, *subject.BranchID)
		}
		c.Next()
	})
	router.Use(RequirePermission(gate, resource, action, req))
	router.GET("/probe", probe)
	return router
}

func performProbe(router *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequirePermission_Unauthenticated(t *testing.T) {
	f := newGateFixture()
	router := newPermissionRouter(access.Subject{}, f.gate, "bill", "read", shared.ScopeOrganization, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := performProbe(router)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHENTICATED")
	f.grantRepo.AssertNotCalled(t, "FindForUserByResourceAction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRequirePermission_MissingPrivilege(t *testing.T) {
	f := newGateFixture()
	subject := access.Subject{UserID: uuid.New(), OrganizationID: uuid.New()}
	f.grantRepo.On("FindForUserByResourceAction", mock.Anything, subject.UserID, "bill", "delete").
		Return([]identity.UserPrivilege{}, nil)

	router := newPermissionRouter(subject, f.gate, "bill", "delete", shared.ScopeOrganization, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := performProbe(router)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")
	assert.Contains(t, w.Body.String(), "bill:delete")
	// the privilege refusal must not leak branch information
	f.branchRepo.AssertNotCalled(t, "FindByIDForOrganization", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequirePermission_OrganizationScope(t *testing.T) {
	f := newGateFixture()
	subject := access.Subject{UserID: uuid.New(), OrganizationID: uuid.New()}
	f.grantRepo.On("FindForUserByResourceAction", mock.Anything, subject.UserID, "client", "read").
		Return([]identity.UserPrivilege{effectiveGrant(t, subject.UserID, "client", "read")}, nil)

	var gotScope shared.Scope
	router := newPermissionRouter(subject, f.gate, "client", "read", shared.ScopeOrganization, func(c *gin.Context) {
		scope, ok := GetScope(c)
		require.True(t, ok)
		gotScope = scope
		c.Status(http.StatusOK)
	})

	w := performProbe(router)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, subject.OrganizationID, gotScope.OrganizationID)
	assert.Nil(t, gotScope.BranchID)
}

func TestRequirePermission_BranchScope(t *testing.T) {
	f := newGateFixture()
	branchID := uuid.New()
	subject := access.Subject{UserID: uuid.New(), OrganizationID: uuid.New(), BranchID: &branchID}

	branch, err := identity.NewBranch(subject.OrganizationID, "Sucursal Centro")
	require.NoError(t, err)
	branch.ID = branchID
	membership, err := identity.NewUserBranch(subject.UserID, branchID, true, true)
	require.NoError(t, err)

	f.grantRepo.On("FindForUserByResourceAction", mock.Anything, subject.UserID, "bill", "create").
		Return([]identity.UserPrivilege{effectiveGrant(t, subject.UserID, "bill", "create")}, nil)
	f.grantRepo.On("FindForUserByResourceAction", mock.Anything, subject.UserID, identity.WildcardResource, identity.WildcardAction).
		Return([]identity.UserPrivilege{}, nil)
	f.branchRepo.On("FindByIDForOrganization", mock.Anything, subject.OrganizationID, branchID).Return(branch, nil)
	f.branchRepo.On("FindMembership", mock.Anything, subject.UserID, branchID).Return(membership, nil)

	var gotScope shared.Scope
	router := newPermissionRouter(subject, f.gate, "bill", "create", shared.ScopeBranch, func(c *gin.Context) {
		scope, ok := GetScope(c)
		require.True(t, ok)
		gotScope = scope
		c.Status(http.StatusOK)
	})

	w := performProbe(router)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, subject.OrganizationID, gotScope.OrganizationID)
	require.NotNil(t, gotScope.BranchID)
	assert.Equal(t, branchID, *gotScope.BranchID)
}

func TestRequirePermission_BranchScopeMissingSelector(t *testing.T) {
	f := newGateFixture()
	subject := access.Subject{UserID: uuid.New(), OrganizationID: uuid.New()}
	f.grantRepo.On("FindForUserByResourceAction", mock.Anything, subject.UserID, "bill", "create").
		Return([]identity.UserPrivilege{effectiveGrant(t, subject.UserID, "bill", "create")}, nil)

	router := newPermissionRouter(subject, f.gate, "bill", "create", shared.ScopeBranch, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := performProbe(router)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "SCOPE_MISSING")
}

func TestRequirePermission_InactiveBranch(t *testing.T) {
	f := newGateFixture()
	branchID := uuid.New()
	subject := access.Subject{UserID: uuid.New(), OrganizationID: uuid.New(), BranchID: &branchID}

	branch, err := identity.NewBranch(subject.OrganizationID, "Sucursal Norte")
	require.NoError(t, err)
	branch.ID = branchID
	branch.Deactivate()

	f.grantRepo.On("FindForUserByResourceAction", mock.Anything, subject.UserID, "item", "read").
		Return([]identity.UserPrivilege{effectiveGrant(t, subject.UserID, "item", "read")}, nil)
	f.branchRepo.On("FindByIDForOrganization", mock.Anything, subject.OrganizationID, branchID).Return(branch, nil)

	router := newPermissionRouter(subject, f.gate, "item", "read", shared.ScopeBranch, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := performProbe(router)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "SCOPE_INACTIVE")
}

func TestRequirePermission_WildcardSkipsMembership(t *testing.T) {
	f := newGateFixture()
	branchID := uuid.New()
	subject := access.Subject{UserID: uuid.New(), OrganizationID: uuid.New(), BranchID: &branchID}

	branch, err := identity.NewBranch(subject.OrganizationID, "Sucursal Este")
	require.NoError(t, err)
	branch.ID = branchID

	f.grantRepo.On("FindForUserByResourceAction", mock.Anything, subject.UserID, "bill", "read").
		Return([]identity.UserPrivilege{effectiveGrant(t, subject.UserID, "bill", "read")}, nil)
	f.grantRepo.On("FindForUserByResourceAction", mock.Anything, subject.UserID, identity.WildcardResource, identity.WildcardAction).
		Return([]identity.UserPrivilege{effectiveGrant(t, subject.UserID, identity.WildcardResource, identity.WildcardAction)}, nil)
	f.branchRepo.On("FindByIDForOrganization", mock.Anything, subject.OrganizationID, branchID).Return(branch, nil)

	router := newPermissionRouter(subject, f.gate, "bill", "read", shared.ScopeBranch, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := performProbe(router)

	assert.Equal(t, http.StatusOK, w.Code)
	f.branchRepo.AssertNotCalled(t, "FindMembership", mock.Anything, mock.Anything, mock.Anything)
}
