package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/config"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/handler"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/middleware"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/repository"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/service"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/worker"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	productionRepo := repository.NewProductionRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	cashRepo := repository.NewCashRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	transactor := repository.NewTransactor(db)

	// ── Services ─────────────────────────────────────────────────────────────
	ledger := service.NewStockLedger(productRepo, movementRepo)

	authSvc := service.NewAuthService(userRepo, cfg)
	recipeSvc := service.NewRecipeService(recipeRepo, productRepo)
	productionSvc := service.NewProductionService(productionRepo, productRepo, recipeSvc, ledger, transactor, dispatcher)
	orderSvc := service.NewOrderService(orderRepo, productRepo, ledger, transactor, dispatcher)
	cashSvc := service.NewCashService(cashRepo, orderRepo, transactor, dispatcher)
	productSvc := service.NewProductService(productRepo, movementRepo, ledger, transactor, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productionH := handler.NewProductionHandler(productionSvc)
	ordersH := handler.NewOrdersHandler(orderSvc)
	cashH := handler.NewCashHandler(cashSvc)
	productsH := handler.NewProductsHandler(productSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: baker, supervisor, admin — declared per-endpoint
		anyRole := middleware.RequireRole("baker", "supervisor", "admin")
		supervise := middleware.RequireRole("supervisor", "admin")

		prod := v1.Group("/production-orders")
		{
			prod.POST("", anyRole, productionH.Create)
			prod.GET("", anyRole, productionH.List)
			prod.GET("/:id", anyRole, productionH.Get)
			prod.POST("/:id/start", anyRole, productionH.Start)
			prod.POST("/:id/complete", anyRole, productionH.Complete)
			prod.POST("/:id/cancel", supervise, productionH.Cancel)
		}

		v1.GET("/orders", anyRole, ordersH.List)
		v1.GET("/orders/:id", anyRole, ordersH.Get)
		v1.PUT("/orders/:id/status", anyRole, ordersH.TransitionStatus)

		cash := v1.Group("/cash-sessions")
		{
			cash.POST("", anyRole, cashH.Open)
			cash.GET("/:id", anyRole, cashH.Get)
			cash.POST("/:id/transactions", anyRole, cashH.RegisterTransaction)
			cash.POST("/:id/close", anyRole, cashH.Close)
		}

		v1.GET("/products", anyRole, productsH.List)
		v1.GET("/products/:id", anyRole, productsH.Get)
		// Manual adjustments are supervised writes.
		v1.POST("/products/:id/adjust-stock", supervise, productsH.AdjustStock)

		v1.GET("/stock-movements", anyRole, productsH.ListMovements)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
