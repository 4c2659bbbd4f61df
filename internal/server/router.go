// Package server assembles the HTTP router from services and handlers.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"budgetly/internal/config"
	_ "budgetly/internal/docs" // Import swagger docs
	"budgetly/internal/handlers"
	"budgetly/internal/middleware"
	"budgetly/internal/services"
	"budgetly/internal/validator"
)

// NewRouter wires every service and handler over db. The synchronizer uses
// the configured timezone to decide which day is today; syncOpts are applied
// after that so callers can swap the clock or attach a publisher.
func NewRouter(db *gorm.DB, cfg *config.Config, syncOpts ...services.SyncOption) *gin.Engine {
	opts := append([]services.SyncOption{services.WithLocation(cfg.Timezone)}, syncOpts...)

	// Services
	userService := services.NewUserService(db)
	categoryService := services.NewCategoryService(db)
	budgetService := services.NewBudgetService(db)
	synchronizer := services.NewCycleSynchronizer(db, opts...)
	provisionService := services.NewProvisionService(db)
	fixedExpenseService := services.NewFixedExpenseService(db)
	recurringExpenseService := services.NewRecurringExpenseService(db)
	transactionService := services.NewTransactionService(db, synchronizer)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, synchronizer)
	provisionHandler := handlers.NewProvisionHandler(provisionService)
	fixedExpenseHandler := handlers.NewFixedExpenseHandler(fixedExpenseService, synchronizer)
	recurringExpenseHandler := handlers.NewRecurringExpenseHandler(recurringExpenseService, synchronizer)
	transactionHandler := handlers.NewTransactionHandler(transactionService)

	validator.Register()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/cycles", budgetHandler.GetBudgetCycles)
	budgets.GET("/:id/summary", budgetHandler.GetBudgetSummary)

	budgets.POST("/:id/provisions", provisionHandler.CreateProvision)
	budgets.GET("/:id/provisions", provisionHandler.GetProvisions)
	budgets.PUT("/:id/provisions/:provisionId", provisionHandler.UpdateProvision)
	budgets.DELETE("/:id/provisions/:provisionId", provisionHandler.DeleteProvision)

	budgets.POST("/:id/fixed-expenses", fixedExpenseHandler.CreateFixedExpense)
	budgets.GET("/:id/fixed-expenses", fixedExpenseHandler.GetFixedExpenses)
	budgets.PUT("/:id/fixed-expenses/:expenseId", fixedExpenseHandler.UpdateFixedExpense)
	budgets.DELETE("/:id/fixed-expenses/:expenseId", fixedExpenseHandler.DeleteFixedExpense)

	budgets.POST("/:id/recurring-expenses", recurringExpenseHandler.CreateRecurringExpense)
	budgets.GET("/:id/recurring-expenses", recurringExpenseHandler.GetRecurringExpenses)
	budgets.PUT("/:id/recurring-expenses/:expenseId", recurringExpenseHandler.UpdateRecurringExpense)
	budgets.DELETE("/:id/recurring-expenses/:expenseId", recurringExpenseHandler.DeleteRecurringExpense)

	budgets.POST("/:id/transactions", transactionHandler.CreateExpense)
	budgets.POST("/:id/incomes", transactionHandler.CreateIncome)
	budgets.GET("/:id/transactions", transactionHandler.GetBudgetTransactions)

	transactions := protected.Group("/transactions")
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
