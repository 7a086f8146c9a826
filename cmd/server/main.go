package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/facturo/backend/internal/application/access"
	billingapp "github.com/facturo/backend/internal/application/billing"
	catalogapp "github.com/facturo/backend/internal/application/catalog"
	identityapp "github.com/facturo/backend/internal/application/identity"
	partnerapp "github.com/facturo/backend/internal/application/partner"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/facturo/backend/internal/infrastructure/auth"
	"github.com/facturo/backend/internal/infrastructure/config"
	"github.com/facturo/backend/internal/infrastructure/logger"
	"github.com/facturo/backend/internal/infrastructure/persistence"
	"github.com/facturo/backend/internal/interfaces/http/handler"
	"github.com/facturo/backend/internal/interfaces/http/middleware"
	"github.com/facturo/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Facturo Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	orgRepo := persistence.NewGormOrganizationRepository(db.DB)
	branchRepo := persistence.NewGormBranchRepository(db.DB)
	privilegeRepo := persistence.NewGormPrivilegeRepository(db.DB)
	grantRepo := persistence.NewGormUserPrivilegeRepository(db.DB)
	taxRateRepo := persistence.NewGormTaxRateRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	itemRepo := persistence.NewGormItemRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	billRepo := persistence.NewGormBillRepository(db.DB)

	// Token infrastructure. Redis backs the blacklist; fall back to the
	// in-process store when Redis is unreachable so a single-node deployment
	// still works.
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		blacklist = redisBlacklist
		log.Info("Redis token blacklist connected",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port),
		)
	}

	// Access kernel: privilege oracle, scope resolver and the gate every
	// protected route goes through
	oracle := access.NewPrivilegeOracle(grantRepo, log)
	resolver := access.NewScopeResolver(branchRepo, oracle, log)
	gate := access.NewGate(oracle, resolver, log)

	// Initialize application services
	authService := identityapp.NewAuthService(userRepo, orgRepo, privilegeRepo, grantRepo, oracle, jwtService, blacklist, log)
	userService := identityapp.NewUserService(userRepo, billRepo, log)
	branchService := identityapp.NewBranchService(branchRepo, userRepo, log)
	privilegeService := identityapp.NewPrivilegeService(privilegeRepo, grantRepo, log)
	organizationService := identityapp.NewOrganizationService(orgRepo, log)
	taxRateService := catalogapp.NewTaxRateService(taxRateRepo, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo, log)
	itemService := catalogapp.NewItemService(itemRepo, taxRateRepo, categoryRepo, log)
	clientService := partnerapp.NewClientService(clientRepo, log)
	billService := billingapp.NewBillService(billRepo, itemRepo, clientRepo, log)

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	branchHandler := handler.NewBranchHandler(branchService)
	privilegeHandler := handler.NewPrivilegeHandler(privilegeService)
	organizationHandler := handler.NewOrganizationHandler(organizationService)
	taxRateHandler := handler.NewTaxRateHandler(taxRateService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	itemHandler := handler.NewItemHandler(itemService)
	clientHandler := handler.NewClientHandler(clientService)
	billHandler := handler.NewBillHandler(billService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.RequestLogger(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// JWT authentication plus branch selector for every API route; the
	// selector only parses the header, scope is judged per route by the gate
	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths: []string{
			"/api/v1/auth/register",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/ping",
		},
		Logger: log,
	}))
	r.Use(middleware.BranchSelector())

	// Authentication routes; register, login and refresh are public
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.Refresh)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.Me)
	authRoutes.PUT("/password", authHandler.ChangePassword)

	// Organization routes
	organizationRoutes := router.NewDomainGroup("organization", "/organization")
	organizationRoutes.GET("",
		middleware.RequirePermission(gate, "organization", "read", shared.ScopeOrganization),
		organizationHandler.Get)
	organizationRoutes.PUT("",
		middleware.RequirePermission(gate, "organization", "update", shared.ScopeOrganization),
		organizationHandler.Update)

	// User management routes
	userRoutes := router.NewDomainGroup("users", "/users")
	userRoutes.POST("",
		middleware.RequirePermission(gate, "user", "create", shared.ScopeOrganization),
		userHandler.Create)
	userRoutes.GET("",
		middleware.RequirePermission(gate, "user", "read", shared.ScopeOrganization),
		userHandler.List)
	userRoutes.GET("/:id",
		middleware.RequirePermission(gate, "user", "read", shared.ScopeOrganization),
		userHandler.Get)
	userRoutes.PUT("/:id",
		middleware.RequirePermission(gate, "user", "update", shared.ScopeOrganization),
		userHandler.Update)
	userRoutes.DELETE("/:id",
		middleware.RequirePermission(gate, "user", "delete", shared.ScopeOrganization),
		userHandler.Delete)
	userRoutes.GET("/:id/branches",
		middleware.RequirePermission(gate, "branch", "read", shared.ScopeOrganization),
		branchHandler.ListUserBranches)
	userRoutes.GET("/:id/privileges",
		middleware.RequirePermission(gate, "privilege", "read", shared.ScopeOrganization),
		privilegeHandler.ListUserGrants)

	// Branch routes
	branchRoutes := router.NewDomainGroup("branches", "/branches")
	branchRoutes.POST("",
		middleware.RequirePermission(gate, "branch", "create", shared.ScopeOrganization),
		branchHandler.Create)
	branchRoutes.GET("",
		middleware.RequirePermission(gate, "branch", "read", shared.ScopeOrganization),
		branchHandler.List)
	branchRoutes.GET("/:id",
		middleware.RequirePermission(gate, "branch", "read", shared.ScopeOrganization),
		branchHandler.Get)
	branchRoutes.PUT("/:id",
		middleware.RequirePermission(gate, "branch", "update", shared.ScopeOrganization),
		branchHandler.Update)
	branchRoutes.DELETE("/:id",
		middleware.RequirePermission(gate, "branch", "delete", shared.ScopeOrganization),
		branchHandler.Delete)
	branchRoutes.POST("/:id/users",
		middleware.RequirePermission(gate, "branch", "update", shared.ScopeOrganization),
		branchHandler.AssignUser)
	branchRoutes.DELETE("/:id/users/:userId",
		middleware.RequirePermission(gate, "branch", "update", shared.ScopeOrganization),
		branchHandler.RemoveUser)

	// Privilege catalog and grant routes
	privilegeRoutes := router.NewDomainGroup("privileges", "/privileges")
	privilegeRoutes.POST("",
		middleware.RequirePermission(gate, "privilege", "manage", shared.ScopeOrganization),
		privilegeHandler.Create)
	privilegeRoutes.GET("",
		middleware.RequirePermission(gate, "privilege", "read", shared.ScopeOrganization),
		privilegeHandler.List)
	privilegeRoutes.GET("/:id",
		middleware.RequirePermission(gate, "privilege", "read", shared.ScopeOrganization),
		privilegeHandler.Get)
	privilegeRoutes.PUT("/:id",
		middleware.RequirePermission(gate, "privilege", "manage", shared.ScopeOrganization),
		privilegeHandler.Update)
	privilegeRoutes.POST("/grants",
		middleware.RequirePermission(gate, "privilege", "manage", shared.ScopeOrganization),
		privilegeHandler.Grant)
	privilegeRoutes.DELETE("/grants/:userId/:privilegeId",
		middleware.RequirePermission(gate, "privilege", "manage", shared.ScopeOrganization),
		privilegeHandler.Revoke)
	privilegeRoutes.POST("/seed",
		middleware.RequirePermission(gate, "privilege", "manage", shared.ScopeOrganization),
		privilegeHandler.Seed)

	// Tax rate routes (organization scoped)
	taxRateRoutes := router.NewDomainGroup("tax-rates", "/tax-rates")
	taxRateRoutes.POST("",
		middleware.RequirePermission(gate, "taxrate", "create", shared.ScopeOrganization),
		taxRateHandler.Create)
	taxRateRoutes.GET("",
		middleware.RequirePermission(gate, "taxrate", "read", shared.ScopeOrganization),
		taxRateHandler.List)
	taxRateRoutes.GET("/:id",
		middleware.RequirePermission(gate, "taxrate", "read", shared.ScopeOrganization),
		taxRateHandler.Get)
	taxRateRoutes.PUT("/:id",
		middleware.RequirePermission(gate, "taxrate", "update", shared.ScopeOrganization),
		taxRateHandler.Update)
	taxRateRoutes.DELETE("/:id",
		middleware.RequirePermission(gate, "taxrate", "delete", shared.ScopeOrganization),
		taxRateHandler.Delete)

	// Client routes (organization scoped)
	clientRoutes := router.NewDomainGroup("clients", "/clients")
	clientRoutes.POST("",
		middleware.RequirePermission(gate, "client", "create", shared.ScopeOrganization),
		clientHandler.Create)
	clientRoutes.GET("",
		middleware.RequirePermission(gate, "client", "read", shared.ScopeOrganization),
		clientHandler.List)
	clientRoutes.GET("/:id",
		middleware.RequirePermission(gate, "client", "read", shared.ScopeOrganization),
		clientHandler.Get)
	clientRoutes.PUT("/:id",
		middleware.RequirePermission(gate, "client", "update", shared.ScopeOrganization),
		clientHandler.Update)
	clientRoutes.DELETE("/:id",
		middleware.RequirePermission(gate, "client", "delete", shared.ScopeOrganization),
		clientHandler.Delete)

	// Category routes (branch scoped, require X-Branch-Id)
	categoryRoutes := router.NewDomainGroup("categories", "/categories")
	categoryRoutes.POST("",
		middleware.RequirePermission(gate, "category", "create", shared.ScopeBranch),
		categoryHandler.Create)
	categoryRoutes.GET("",
		middleware.RequirePermission(gate, "category", "read", shared.ScopeBranch),
		categoryHandler.List)
	categoryRoutes.GET("/:id",
		middleware.RequirePermission(gate, "category", "read", shared.ScopeBranch),
		categoryHandler.Get)
	categoryRoutes.PUT("/:id",
		middleware.RequirePermission(gate, "category", "update", shared.ScopeBranch),
		categoryHandler.Update)
	categoryRoutes.DELETE("/:id",
		middleware.RequirePermission(gate, "category", "delete", shared.ScopeBranch),
		categoryHandler.Delete)

	// Item routes (branch scoped)
	itemRoutes := router.NewDomainGroup("items", "/items")
	itemRoutes.POST("",
		middleware.RequirePermission(gate, "item", "create", shared.ScopeBranch),
		itemHandler.Create)
	itemRoutes.GET("",
		middleware.RequirePermission(gate, "item", "read", shared.ScopeBranch),
		itemHandler.List)
	itemRoutes.GET("/:id",
		middleware.RequirePermission(gate, "item", "read", shared.ScopeBranch),
		itemHandler.Get)
	itemRoutes.PUT("/:id",
		middleware.RequirePermission(gate, "item", "update", shared.ScopeBranch),
		itemHandler.Update)
	itemRoutes.DELETE("/:id",
		middleware.RequirePermission(gate, "item", "delete", shared.ScopeBranch),
		itemHandler.Delete)

	// Bill routes (branch scoped)
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
		Register(organizationRoutes).
		Register(userRoutes).
		Register(branchRoutes).
		Register(privilegeRoutes).
		Register(taxRateRoutes).
		Register(clientRoutes).
		Register(categoryRoutes).
		Register(itemRoutes).
		Register(billRoutes)

	// Setup routes
	r.Setup()

	// Simple ping at API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
