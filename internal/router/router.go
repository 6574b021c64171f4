// Package router wires services and handlers into the HTTP API.
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "spendwise/internal/docs" // Import swagger docs
	"spendwise/internal/events"
	"spendwise/internal/handlers"
	"spendwise/internal/middleware"
	"spendwise/internal/report"
	"spendwise/internal/services"
	"spendwise/internal/store"
)

// Dependencies are the collaborators the API is built from.
type Dependencies struct {
	DB        *gorm.DB
	Tokens    *middleware.TokenIssuer
	Publisher events.Publisher

	// CheckEmailHost enables MX lookups on registration.
	CheckEmailHost bool

	// Now overrides the clock used to stamp transactions. Nil means time.Now.
	Now func() time.Time
}

// New builds the gin engine with every route registered.
func New(deps Dependencies) *gin.Engine {
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	categoryStore := store.NewCategoryStore(deps.DB)
	transactionStore := store.NewTransactionStore(deps.DB)

	userService := services.NewUserService(deps.DB, deps.CheckEmailHost)
	categoryService := services.NewCategoryService(categoryStore)
	transactionService := services.NewTransactionServiceWithClock(transactionStore, categoryStore, report.NewRegistry(), now)
	auditService := services.NewAuditService(deps.DB, publisher)

	authHandler := handlers.NewAuthHandler(userService, deps.Tokens)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	adminUserHandler := handlers.NewAdminUserHandler(userService, auditService)

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

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(deps.Tokens))

	protected.GET("/profile", authHandler.GetProfile)

	categories := protected.Group("/categories")
	categories.GET("", categoryHandler.ListCategories)
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.PATCH("/:id/toggle-active", categoryHandler.ToggleActive)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactions := protected.Group("/transactions")
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("/report", transactionHandler.Report)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireAdmin())

	admin.GET("/categories", categoryHandler.AdminListCategories)
	admin.POST("/categories", categoryHandler.AdminCreateCategory)
	admin.GET("/transactions", transactionHandler.AdminListTransactions)
	admin.POST("/transactions", transactionHandler.AdminCreateTransaction)
	admin.GET("/transactions/report", transactionHandler.AdminReport)
	admin.POST("/users/:id/ban", adminUserHandler.BanUser)
	admin.POST("/users/:id/unban", adminUserHandler.UnbanUser)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
