// Package server assembles the services and the HTTP routes of the API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"fintrack/internal/allocation"
	"fintrack/internal/events"
	"fintrack/internal/handlers"
	"fintrack/internal/middleware"
	"fintrack/internal/services"
)

// Services is the full set of business services behind the API.
type Services struct {
	Users        services.UserServicer
	Audit        services.AuditServicer
	Transactions services.TransactionServicer
	Planner      services.PlannerServicer
	Monthly      services.MonthlyBudgetServicer
	Annual       services.AnnualBudgetServicer
	Plans        services.YearlyPlanServicer
}

// NewServices wires every service against db. Budget and plan changes are
// announced through publisher.
func NewServices(db *gorm.DB, publisher events.Publisher, legacyMatching bool) Services {
	planner := services.NewPlannerService(allocation.NewEngine(allocation.DefaultCatalog()))
	plans := services.NewYearlyPlanService(db, publisher)
	return Services{
		Users:        services.NewUserService(db),
		Audit:        services.NewAuditService(db),
		Transactions: services.NewTransactionService(db),
		Planner:      planner,
		Monthly:      services.NewMonthlyBudgetService(db, planner, plans, publisher),
		Annual:       services.NewAnnualBudgetService(db, planner, publisher, legacyMatching),
		Plans:        plans,
	}
}

const healthTimeout = 2 * time.Second

// Options configures authentication and the health probe on the router.
type Options struct {
	Tokens         *middleware.TokenIssuer
	PipelineAPIKey string
	// Health reports whether backing stores answer. Nil means always healthy.
	Health func(context.Context) error
}

// NewRouter registers every route of the API.
func NewRouter(svc Services, opts Options) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.Users, svc.Audit, opts.Tokens)
	transactionHandler := handlers.NewTransactionHandler(svc.Transactions, svc.Audit)
	categoryHandler := handlers.NewCategoryHandler(svc.Planner)
	budgetHandler := handlers.NewBudgetHandler(svc.Monthly, svc.Annual, svc.Planner, svc.Users, svc.Audit)
	planHandler := handlers.NewPlanHandler(svc.Plans)
	pipelineHandler := handlers.NewPipelineHandler(svc.Monthly)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", healthHandler(opts.Health))

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Pipeline routes
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(opts.PipelineAPIKey))
	pipeline.POST("/budgets/sync", pipelineHandler.SyncBudgets)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(opts.Tokens))

	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile/planning", authHandler.UpdatePlanningDefaults)
	protected.GET("/categories", categoryHandler.GetCategories)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	budgets := protected.Group("/budgets")
	budgets.POST("/recommendations", budgetHandler.Recommend)

	monthly := budgets.Group("/monthly")
	monthly.GET("/:year", budgetHandler.ListMonthlyBudgets)
	monthly.GET("/:year/:month", budgetHandler.GetMonthlyBudget)
	monthly.PUT("/:year/:month", budgetHandler.SaveMonthlyBudget)
	monthly.DELETE("/:year/:month", budgetHandler.DeleteMonthlyBudget)
	monthly.POST("/:year/:month/sync", budgetHandler.SyncMonthlyBudget)
	monthly.GET("/:year/:month/performance", budgetHandler.GetMonthlyPerformance)

	annual := budgets.Group("/annual")
	annual.GET("/:year", budgetHandler.GetAnnualBudget)
	annual.PUT("/:year", budgetHandler.SaveAnnualBudget)
	annual.DELETE("/:year", budgetHandler.DeleteAnnualBudget)
	annual.POST("/:year/sync", budgetHandler.SyncAnnualBudget)
	annual.GET("/:year/performance", budgetHandler.GetAnnualPerformance)

	plans := protected.Group("/plans")
	plans.GET("/:year", planHandler.GetYearlyPlan)
	plans.POST("/:year/trends", planHandler.GenerateTrends)

	return router
}

func healthHandler(check func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
