package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/facturo/backend/internal/application/access"
	billingapp "github.com/facturo/backend/internal/application/billing"
	catalogapp "github.com/facturo/backend/internal/application/catalog"
	identityapp "github.com/facturo/backend/internal/application/identity"
	partnerapp "github.com/facturo/backend/internal/application/partner"
	"github.com/facturo/backend/internal/domain/catalog"
	"github.com/facturo/backend/internal/domain/identity"
	"github.com/facturo/backend/internal/domain/partner"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/facturo/backend/internal/infrastructure/auth"
	"github.com/facturo/backend/internal/infrastructure/config"
	"github.com/facturo/backend/internal/infrastructure/persistence"
	"github.com/facturo/backend/internal/interfaces/http/dto"
	"github.com/facturo/backend/internal/interfaces/http/handler"
	"github.com/facturo/backend/internal/interfaces/http/middleware"
	"github.com/facturo/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TestServer wires the full HTTP stack (JWT middleware, branch selector,
// access gate, handlers) against a real PostgreSQL database.
type TestServer struct {
	DB            *TestDB
	Engine        *gin.Engine
	UserRepo      identity.UserRepository
	OrgRepo       identity.OrganizationRepository
	BranchRepo    identity.BranchRepository
	PrivilegeRepo identity.PrivilegeRepository
	GrantRepo     identity.UserPrivilegeRepository
	TaxRateRepo   catalog.TaxRateRepository
	ItemRepo      catalog.ItemRepository
	ClientRepo    partner.ClientRepository
	BillRepo      *persistence.GormBillRepository
	JWTService    *auth.JWTService
	Blacklist     auth.TokenBlacklist
}

// NewTestServer builds a test server backed by a fresh PostgreSQL container
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
	testDB := NewTestDB(t)
	log := zap.NewNop()

	userRepo := persistence.NewGormUserRepository(testDB.DB)
	orgRepo := persistence.NewGormOrganizationRepository(testDB.DB)
	branchRepo := persistence.NewGormBranchRepository(testDB.DB)
	privilegeRepo := persistence.NewGormPrivilegeRepository(testDB.DB)
	grantRepo := persistence.NewGormUserPrivilegeRepository(testDB.DB)
	taxRateRepo := persistence.NewGormTaxRateRepository(testDB.DB)
	categoryRepo := persistence.NewGormCategoryRepository(testDB.DB)
	itemRepo := persistence.NewGormItemRepository(testDB.DB)
	clientRepo := persistence.NewGormClientRepository(testDB.DB)
	billRepo := persistence.NewGormBillRepository(testDB.DB)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "integration-test-secret-key-1234567890",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "facturo-integration",
		MaxRefreshCount:        10,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()

	oracle := access.NewPrivilegeOracle(grantRepo, log)
	resolver := access.NewScopeResolver(branchRepo, oracle, log)
	gate := access.NewGate(oracle, resolver, log)

	authService := identityapp.NewAuthService(userRepo, orgRepo, privilegeRepo, grantRepo, oracle, jwtService, blacklist, log)
	taxRateService := catalogapp.NewTaxRateService(taxRateRepo, log)
	itemService := catalogapp.NewItemService(itemRepo, taxRateRepo, categoryRepo, log)
	clientService := partnerapp.NewClientService(clientRepo, log)
	billService := billingapp.NewBillService(billRepo, itemRepo, clientRepo, log)

	authHandler := handler.NewAuthHandler(authService)
	taxRateHandler := handler.NewTaxRateHandler(taxRateService)
	itemHandler := handler.NewItemHandler(itemService)
	clientHandler := handler.NewClientHandler(clientService)
	billHandler := handler.NewBillHandler(billService)

	engine := gin.New()

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths: []string{
			"/api/v1/auth/register",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
		Logger: log,
	}))
	r.Use(middleware.BranchSelector())

	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.Refresh)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.Me)
	authRoutes.PUT("/password", authHandler.ChangePassword)

	taxRateRoutes := router.NewDomainGroup("tax-rates", "/tax-rates")
	taxRateRoutes.POST("",
		middleware.RequirePermission(gate, "taxrate", "create", shared.ScopeOrganization),
		taxRateHandler.Create)
	taxRateRoutes.PUT("/:id",
		middleware.RequirePermission(gate, "taxrate", "update", shared.ScopeOrganization),
		taxRateHandler.Update)

	clientRoutes := router.NewDomainGroup("clients", "/clients")
	clientRoutes.POST("",
		middleware.RequirePermission(gate, "client", "create", shared.ScopeOrganization),
		clientHandler.Create)
	clientRoutes.GET("/:id",
		middleware.RequirePermission(gate, "client", "read", shared.ScopeOrganization),
		clientHandler.Get)

	itemRoutes := router.NewDomainGroup("items", "/items")
	itemRoutes.POST("",
		middleware.RequirePermission(gate, "item", "create", shared.ScopeBranch),
		itemHandler.Create)
	itemRoutes.GET("/:id",
		middleware.RequirePermission(gate, "item", "read", shared.ScopeBranch),
		itemHandler.Get)

	billRoutes := router.NewDomainGroup("bills", "/bills")
	billRoutes.POST("",
		middleware.RequirePermission(gate, "bill", "create", shared.ScopeBranch),
		billHandler.Create)
	billRoutes.GET("",
		middleware.RequirePermission(gate, "bill", "read", shared.ScopeBranch),
		billHandler.List)
	billRoutes.GET("/public/:publicId",
		middleware.RequirePermission(gate, "bill", "read", shared.ScopeBranch),
		billHandler.GetByPublicID)
	billRoutes.GET("/:id",
		middleware.RequirePermission(gate, "bill", "read", shared.ScopeBranch),
		billHandler.Get)
	billRoutes.PUT("/:id",
		middleware.RequirePermission(gate, "bill", "update", shared.ScopeBranch),
		billHandler.Update)
	billRoutes.DELETE("/:id",
		middleware.RequirePermission(gate, "bill", "delete", shared.ScopeBranch),
		billHandler.Delete)
	billRoutes.POST("/:id/lines",
		middleware.RequirePermission(gate, "bill", "update", shared.ScopeBranch),
		billHandler.AddLine)
	billRoutes.PUT("/:id/lines/:lineId",
		middleware.RequirePermission(gate, "bill", "update", shared.ScopeBranch),
		billHandler.UpdateLine)
	billRoutes.DELETE("/:id/lines/:lineId",
		middleware.RequirePermission(gate, "bill", "update", shared.ScopeBranch),
		billHandler.RemoveLine)
	billRoutes.POST("/:id/recalculate",
		middleware.RequirePermission(gate, "bill", "update", shared.ScopeBranch),
		billHandler.Recalculate)

	r.Register(authRoutes).
		Register(taxRateRoutes).
		Register(clientRoutes).
		Register(itemRoutes).
		Register(billRoutes)
	r.Setup()

	return &TestServer{
		DB:            testDB,
		Engine:        engine,
		UserRepo:      userRepo,
		OrgRepo:       orgRepo,
		BranchRepo:    branchRepo,
		PrivilegeRepo: privilegeRepo,
		GrantRepo:     grantRepo,
		TaxRateRepo:   taxRateRepo,
		ItemRepo:      itemRepo,
		ClientRepo:    clientRepo,
		BillRepo:      billRepo,
		JWTService:    jwtService,
		Blacklist:     blacklist,
	}
}

// Request makes a JSON request against the test server. token and branchID
// are optional; pass the empty string / uuid.Nil to omit them.
func (ts *TestServer) Request(method, path string, body interface{}, token string, branchID uuid.UUID) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if branchID != uuid.Nil {
		req.Header.Set(middleware.BranchHeaderKey, branchID.String())
	}

	w := httptest.NewRecorder()
	ts.Engine.ServeHTTP(w, req)
	return w
}

// apiEnvelope mirrors the standard response envelope with raw data so each
// test can decode into its own result type
type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

// Decode unmarshals the response envelope and, when out is non-nil, its data
func (ts *TestServer) Decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) apiEnvelope {
	t.Helper()

	var envelope apiEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), "Failed to decode response envelope: %s", w.Body.String())
	if out != nil {
		require.NotNil(t, envelope.Data, "Response has no data: %s", w.Body.String())
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
	return envelope
}

// ErrorCode extracts the error code of a failed response
func (ts *TestServer) ErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	envelope := ts.Decode(t, w, nil)
	require.NotNil(t, envelope.Error, "Expected an error response, got: %s", w.Body.String())
	return envelope.Error.Code
}

// SeedOrganization creates an organization
func (ts *TestServer) SeedOrganization(t *testing.T, name string) *identity.Organization {
	t.Helper()

	org, err := identity.NewOrganization(name)
	require.NoError(t, err)
	require.NoError(t, ts.OrgRepo.Save(context.Background(), org))
	return org
}

// SeedUser creates a user with a bcrypt-hashed password
func (ts *TestServer) SeedUser(t *testing.T, orgID uuid.UUID, username, password string, role identity.UserRole) *identity.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user, err := identity.NewUser(orgID, username, username+"@facturo.test", string(hash), role)
	require.NoError(t, err)
	require.NoError(t, ts.UserRepo.Save(context.Background(), user))
	return user
}

// SeedBranch creates a branch within an organization
func (ts *TestServer) SeedBranch(t *testing.T, orgID uuid.UUID, name string) *identity.Branch {
	t.Helper()

	branch, err := identity.NewBranch(orgID, name)
	require.NoError(t, err)
	require.NoError(t, ts.BranchRepo.Save(context.Background(), branch))
	return branch
}

// AssignBranch creates a login-enabled membership between a user and a branch
func (ts *TestServer) AssignBranch(t *testing.T, userID, branchID uuid.UUID, isPrimary bool) {
	t.Helper()

	membership, err := identity.NewUserBranch(userID, branchID, isPrimary, true)
	require.NoError(t, err)
	require.NoError(t, ts.BranchRepo.SaveMembership(context.Background(), membership))
}

// Grant gives the user the privilege identified by (resource, action). The
// privilege catalog itself is seeded by migration.
func (ts *TestServer) Grant(t *testing.T, userID uuid.UUID, resource, action string) {
	t.Helper()

	ctx := context.Background()
	privilege, err := ts.PrivilegeRepo.FindByResourceAction(ctx, resource, action)
	require.NoError(t, err, "Privilege %s:%s not in seeded catalog", resource, action)

	grant, err := identity.NewUserPrivilege(userID, privilege.ID, userID, nil)
	require.NoError(t, err)
	require.NoError(t, ts.GrantRepo.Save(ctx, grant))
}

// SeedTaxRate creates an organization tax rate
func (ts *TestServer) SeedTaxRate(t *testing.T, orgID uuid.UUID, name string, percentage decimal.Decimal) *catalog.TaxRate {
	t.Helper()

	rate, err := catalog.NewTaxRate(orgID, name, percentage)
	require.NoError(t, err)
	require.NoError(t, ts.TaxRateRepo.Save(context.Background(), rate))
	return rate
}

// SeedItem creates a sellable item in a branch
func (ts *TestServer) SeedItem(t *testing.T, branchID uuid.UUID, name string, unitPrice decimal.Decimal, taxRateID uuid.UUID) *catalog.Item {
	t.Helper()

	item, err := catalog.NewItem(branchID, name, unitPrice, taxRateID)
	require.NoError(t, err)
	require.NoError(t, ts.ItemRepo.Save(context.Background(), item))
	return item
}

// SeedClient creates a billable client for an organization
func (ts *TestServer) SeedClient(t *testing.T, orgID uuid.UUID, name string) *partner.Client {
	t.Helper()

	client, err := partner.NewClient(orgID, name)
	require.NoError(t, err)
	require.NoError(t, ts.ClientRepo.Save(context.Background(), client))
	return client
}

// Login authenticates a user through the HTTP API and returns the token pair
func (ts *TestServer) Login(t *testing.T, username, password string) identityapp.TokenResult {
	t.Helper()

	w := ts.Request(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, "", uuid.Nil)
	require.Equal(t, http.StatusOK, w.Code, "Login failed: %s", w.Body.String())

	var result identityapp.LoginResult
	ts.Decode(t, w, &result)
	return result.Tokens
}
