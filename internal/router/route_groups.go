package router

import (
	"resto_pos_backend/internal/handlers"
	"resto_pos_backend/internal/middleware"
	"resto_pos_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// adminOnly guards catalog and floor-plan mutations.
func adminOnly() gin.HandlerFunc {
	return middleware.RoleAuthMiddleware(models.RoleAdmin)
}

// SetupPublicAuthRoutes sets up the routes reachable without a token.
func SetupPublicAuthRoutes(authRoutes *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes.POST("/login", authHandler.LoginUser)
}

// SetupAuthenticatedAuthRoutes sets up /auth/me, /auth/logout and user creation.
func SetupAuthenticatedAuthRoutes(authenticatedGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := authenticatedGroup.Group("/auth")
	{
		authRoutes.GET("/me", authHandler.GetCurrentUser)
		authRoutes.POST("/logout", authHandler.LogoutUser)
	}
	authenticatedGroup.POST("/users", adminOnly(), authHandler.RegisterUser)
}

// SetupCategoryRoutes sets up the category routes.
func SetupCategoryRoutes(authenticatedGroup *gin.RouterGroup, catalogHandler *handlers.CatalogHandler) {
	categoryRoutes := authenticatedGroup.Group("/categories")
	{
		categoryRoutes.GET("", catalogHandler.GetCategories)
		categoryRoutes.GET("/:id", catalogHandler.GetCategoryByID)
		categoryRoutes.POST("", adminOnly(), catalogHandler.CreateCategory)
		categoryRoutes.PUT("/:id", adminOnly(), catalogHandler.UpdateCategory)
		categoryRoutes.DELETE("/:id", adminOnly(), catalogHandler.DeleteCategory)
	}
}

// SetupProductRoutes sets up the product routes.
func SetupProductRoutes(authenticatedGroup *gin.RouterGroup, catalogHandler *handlers.CatalogHandler) {
	productRoutes := authenticatedGroup.Group("/products")
	{
		productRoutes.GET("", catalogHandler.GetProducts)
		productRoutes.GET("/:id", catalogHandler.GetProductByID)
		productRoutes.POST("", adminOnly(), catalogHandler.CreateProduct)
		productRoutes.PUT("/:id", adminOnly(), catalogHandler.UpdateProduct)
		productRoutes.DELETE("/:id", adminOnly(), catalogHandler.DeleteProduct)
	}
}

// SetupSupplementRoutes sets up the supplement routes.
func SetupSupplementRoutes(authenticatedGroup *gin.RouterGroup, catalogHandler *handlers.CatalogHandler) {
	supplementRoutes := authenticatedGroup.Group("/supplements")
	{
		supplementRoutes.GET("", catalogHandler.GetSupplements)
		supplementRoutes.POST("", adminOnly(), catalogHandler.CreateSupplement)
		supplementRoutes.PUT("/:id", adminOnly(), catalogHandler.UpdateSupplement)
		supplementRoutes.DELETE("/:id", adminOnly(), catalogHandler.DeleteSupplement)
	}
}

// SetupAccompanimentRoutes sets up the accompaniment routes.
func SetupAccompanimentRoutes(authenticatedGroup *gin.RouterGroup, catalogHandler *handlers.CatalogHandler) {
	accompanimentRoutes := authenticatedGroup.Group("/accompaniments")
	{
		accompanimentRoutes.GET("", catalogHandler.GetAccompaniments)
		accompanimentRoutes.GET("/:id", catalogHandler.GetAccompanimentByID)
		accompanimentRoutes.POST("", adminOnly(), catalogHandler.CreateAccompaniment)
		accompanimentRoutes.PUT("/:id", adminOnly(), catalogHandler.UpdateAccompaniment)
		accompanimentRoutes.DELETE("/:id", adminOnly(), catalogHandler.DeleteAccompaniment)
	}
}

// SetupTableRoutes sets up the dining table routes.
func SetupTableRoutes(authenticatedGroup *gin.RouterGroup, tableHandler *handlers.TableHandler) {
	tableRoutes := authenticatedGroup.Group("/tables")
	{
		tableRoutes.GET("", tableHandler.GetTables)
		tableRoutes.GET("/:id", tableHandler.GetTableByID)
		tableRoutes.POST("/:id/status", tableHandler.SetTableStatus)
		tableRoutes.POST("", adminOnly(), tableHandler.CreateTable)
		tableRoutes.PUT("/:id", adminOnly(), tableHandler.UpdateTable)
		tableRoutes.DELETE("/:id", adminOnly(), tableHandler.DeleteTable)
	}
}

// SetupOrderRoutes sets up the order routes.
func SetupOrderRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	orderRoutes := authenticatedGroup.Group("/orders")
	{
		orderRoutes.POST("", orderHandler.CreateOrder)
		orderRoutes.GET("", orderHandler.GetOrders)
		orderRoutes.GET("/:id", orderHandler.GetOrderByID)
		orderRoutes.PATCH("/:id", orderHandler.UpdateOrder)
		orderRoutes.DELETE("/:id", orderHandler.DeleteOrder)
		orderRoutes.POST("/:id/items", orderHandler.AddItem)
	}
}

// SetupItemRoutes sets up the order line routes.
func SetupItemRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	itemRoutes := authenticatedGroup.Group("/items")
	{
		itemRoutes.POST("/:id/supplements", orderHandler.AddSupplements)
		itemRoutes.POST("/:id/accompaniments", orderHandler.SyncAccompaniments)
		itemRoutes.PATCH("/:id/quantity", orderHandler.UpdateItemQuantity)
		itemRoutes.PATCH("/:id/status", orderHandler.UpdateItemStatus)
		itemRoutes.DELETE("/:id", orderHandler.DeleteItem)
	}
}

// SetupKitchenRoutes sets up the kitchen display routes.
func SetupKitchenRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	kitchenRoutes := authenticatedGroup.Group("/kitchen")
	{
		kitchenRoutes.GET("/orders", orderHandler.KitchenOrders)
		kitchenRoutes.POST("/items/:id/ready", orderHandler.MarkItemReady)
	}
}

// SetupPaymentRoutes sets up the payment and cash register routes.
func SetupPaymentRoutes(authenticatedGroup *gin.RouterGroup, paymentHandler *handlers.PaymentHandler) {
	paymentRoutes := authenticatedGroup.Group("/payments")
	{
		paymentRoutes.GET("", paymentHandler.ListPayments)
		paymentRoutes.GET("/stats", paymentHandler.PaymentStats)
		paymentRoutes.GET("/:orderId/orders", paymentHandler.PaymentsByOrder)
		paymentRoutes.POST("/:orderId/orders", paymentHandler.RecordPayment)
	}
	authenticatedGroup.GET("/cash-registers", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleCashier), paymentHandler.CashRegisters)
}

// SetupNotificationRoutes sets up the notification inbox routes.
func SetupNotificationRoutes(authenticatedGroup *gin.RouterGroup, notificationHandler *handlers.NotificationHandler) {
	notificationRoutes := authenticatedGroup.Group("/notifications")
	{
		notificationRoutes.POST("/send", notificationHandler.Send)
		notificationRoutes.GET("", notificationHandler.ListMine)
		notificationRoutes.PATCH("/:id/read", notificationHandler.MarkRead)
		notificationRoutes.DELETE("/:id", notificationHandler.Delete)
	}
}

// SetupReportRoutes sets up the dashboard routes.
func SetupReportRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	authenticatedGroup.GET("/dashboard/summary", reportHandler.GetDashboardSummary)
}
