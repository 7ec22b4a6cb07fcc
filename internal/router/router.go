package router

import (
	"database/sql"

	"resto_pos_backend/internal/handlers"
	"resto_pos_backend/internal/middleware"
	"resto_pos_backend/internal/repositories"
	"resto_pos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Handlers bundles every HTTP handler mounted under /api/v1.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Catalog      *handlers.CatalogHandler
	Tables       *handlers.TableHandler
	Orders       *handlers.OrderHandler
	Payments     *handlers.PaymentHandler
	Notification *handlers.NotificationHandler
	Reports      *handlers.ReportHandler
}

// NewHandlers wires repositories and services over db.
func NewHandlers(db *sql.DB) *Handlers {
	// Repositories
	txManager := repositories.NewTxManager(db)
	authRepo := repositories.NewAuthRepository(db)
	catalogRepo := repositories.NewCatalogRepository(db)
	modifierRepo := repositories.NewModifierRepository(db)
	tableRepo := repositories.NewTableRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	outboxRepo := repositories.NewOutboxRepository(db)
	reportRepo := repositories.NewReportRepository(db)

	// Services
	orderRepos := services.OrderRepositories{
		Tx:            txManager,
		Orders:        orderRepo,
		Catalog:       catalogRepo,
		Modifiers:     modifierRepo,
		Tables:        tableRepo,
		Outbox:        outboxRepo,
		Notifications: notificationRepo,
	}
	authService := services.NewAuthService(authRepo)
	catalogService := services.NewCatalogService(txManager, catalogRepo, modifierRepo)
	tableService := services.NewTableService(txManager, tableRepo)
	orderService := services.NewOrderService(orderRepos)
	itemService := services.NewOrderItemService(orderRepos)
	paymentService := services.NewPaymentService(txManager, orderRepo, paymentRepo, tableRepo, outboxRepo)
	notificationService := services.NewNotificationService(txManager, notificationRepo, outboxRepo)
	reportService := services.NewReportService(reportRepo, paymentRepo)

	return &Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Catalog:      handlers.NewCatalogHandler(catalogService),
		Tables:       handlers.NewTableHandler(tableService),
		Orders:       handlers.NewOrderHandler(orderService, itemService),
		Payments:     handlers.NewPaymentHandler(paymentService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Reports:      handlers.NewReportHandler(reportService),
	}
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB) {
	Mount(engine, NewHandlers(db))
}

// Mount registers the route table on engine.
func Mount(engine *gin.Engine, h *Handlers) {
	apiV1 := engine.Group("/api/v1")

	SetupPublicAuthRoutes(apiV1.Group("/auth"), h.Auth)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupAuthenticatedAuthRoutes(authenticated, h.Auth)
		SetupCategoryRoutes(authenticated, h.Catalog)
		SetupProductRoutes(authenticated, h.Catalog)
		SetupSupplementRoutes(authenticated, h.Catalog)
		SetupAccompanimentRoutes(authenticated, h.Catalog)
		SetupTableRoutes(authenticated, h.Tables)
		SetupOrderRoutes(authenticated, h.Orders)
		SetupItemRoutes(authenticated, h.Orders)
		SetupKitchenRoutes(authenticated, h.Orders)
		SetupPaymentRoutes(authenticated, h.Payments)
		SetupNotificationRoutes(authenticated, h.Notification)
		SetupReportRoutes(authenticated, h.Reports)
	}
}
