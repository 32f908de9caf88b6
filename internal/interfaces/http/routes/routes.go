// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/bookstore-backend/internal/config"
	"github.com/your-org/bookstore-backend/internal/domain/affiliate"
	"github.com/your-org/bookstore-backend/internal/domain/analytics"
	"github.com/your-org/bookstore-backend/internal/domain/checkout"
	"github.com/your-org/bookstore-backend/internal/domain/order"
	"github.com/your-org/bookstore-backend/internal/domain/review"
	"github.com/your-org/bookstore-backend/internal/domain/user"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/handlers"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// SetupRoutes wires all API v1 routes
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	// Shared services. Order cancellations fan out to the affiliate
	// and analytics ledgers through hooks.
	affiliateService := affiliate.NewService(db, redisClient, cfg)
	analyticsService := analytics.NewService(db, cfg)
	orderService := order.NewService(db, cfg)
	orderService.AddCancellationHook(affiliateService)
	orderService.AddCancellationHook(analyticsService)
	orderService.SetStockAlertRefresher(analyticsService.RefreshAlertsForBook)
	checkoutService := checkout.NewService(db, redisClient, cfg, affiliateService, analyticsService)
	reviewService := review.NewService(db, cfg)

	authHandler := handlers.NewAuthHandler(db, redisClient, cfg)
	profileHandler := handlers.NewUserProfileHandler(db, redisClient, cfg)
	addressHandler := handlers.NewUserAddressHandler(db, cfg)
	userAdminHandler := handlers.NewUserAdminHandler(db, cfg)
	bookHandler := handlers.NewBookHandler(db, cfg)
	categoryHandler := handlers.NewCategoryHandler(db, cfg)
	inventoryHandler := handlers.NewInventoryHandler(db, cfg)
	cartHandler := handlers.NewCartHandler(db, redisClient, cfg)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	orderHandler := handlers.NewOrderHandler(orderService, cfg)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	affiliateHandler := handlers.NewAffiliateHandler(db, redisClient, cfg)
	analyticsHandler := handlers.NewAnalyticsHandler(db, cfg)

	// Public auth endpoints
	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
	}

	// Anyone can read a book's review statistics
	rg.GET("/reviews/summary/:book_id", reviewHandler.GetReviewSummary)

	// Public catalog endpoints
	books := rg.Group("/books")
	{
		books.GET("", bookHandler.GetBooks)
		books.GET("/featured", bookHandler.GetFeaturedBooks)
		books.GET("/slug/:slug", bookHandler.GetBookBySlug)
		books.GET("/:id", bookHandler.GetBook)
		books.GET("/:id/reviews", reviewHandler.GetBookReviews)
	}

	categories := rg.Group("/categories")
	{
		categories.GET("", categoryHandler.GetCategories)
		categories.GET("/tree", categoryHandler.GetCategoryTree)
		categories.GET("/:id", categoryHandler.GetCategory)
	}

	rg.GET("/genres", categoryHandler.GetGenres)
	rg.GET("/sellers/:id", profileHandler.GetSellerStorefront)
	rg.GET("/shipping-methods", orderHandler.GetShippingMethods)

	// Cart works for guests and authenticated users alike
	cart := rg.Group("/cart")
	cart.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		cart.GET("", cartHandler.GetCart)
		cart.DELETE("", cartHandler.ClearCart)
		cart.GET("/count", cartHandler.GetCartCount)
		cart.POST("/items", cartHandler.AddToCart)
		cart.PUT("/items/:id", cartHandler.UpdateCartItem)
		cart.DELETE("/items/:id", cartHandler.RemoveFromCart)
		cart.POST("/validate", cartHandler.ValidateCart)
	}

	// Authenticated endpoints
	protected := rg.Group("")
	protected.Use(middleware.AuthMiddleware(cfg))
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.POST("/cart/merge", cartHandler.MergeGuestCart)

		profile := protected.Group("/profile")
		{
			profile.GET("", profileHandler.GetProfile)
			profile.PUT("", profileHandler.UpdateProfile)
			profile.PUT("/password", profileHandler.ChangePassword)
		}

		addresses := protected.Group("/addresses")
		{
			addresses.GET("", addressHandler.GetAddresses)
			addresses.POST("", addressHandler.CreateAddress)
			addresses.GET("/:id", addressHandler.GetAddress)
			addresses.PUT("/:id", addressHandler.UpdateAddress)
			addresses.DELETE("/:id", addressHandler.DeleteAddress)
			addresses.PUT("/:id/default", addressHandler.SetDefaultAddress)
		}

		checkoutGroup := protected.Group("/checkout")
		{
			checkoutGroup.GET("/summary", checkoutHandler.GetCheckoutSummary)
			checkoutGroup.POST("", checkoutHandler.PlaceOrder)
		}

		orders := protected.Group("/orders")
		{
			orders.GET("", orderHandler.GetUserOrders)
			orders.GET("/number/:number", orderHandler.GetOrderByNumber)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.POST("/:id/cancel", orderHandler.CancelOrder)
			orders.POST("/:id/returns", orderHandler.CreateReturnRequest)
		}

		protected.GET("/returns", orderHandler.GetUserReturns)

		reviews := protected.Group("/reviews")
		{
			reviews.GET("", reviewHandler.GetUserReviews)
			reviews.GET("/can-review/:book_id", reviewHandler.CanReview)
			reviews.POST("", reviewHandler.CreateReview)
			reviews.PUT("/:id", reviewHandler.UpdateReview)
			reviews.DELETE("/:id", reviewHandler.DeleteReview)
			reviews.POST("/:id/vote", reviewHandler.VoteReview)
			reviews.POST("/:id/report", reviewHandler.ReportReview)
		}

		affiliateGroup := protected.Group("/affiliate")
		affiliateGroup.Use(middleware.RequireRole(user.RoleAffiliate))
		{
			affiliateGroup.POST("/register", affiliateHandler.Register)
			affiliateGroup.GET("/me", affiliateHandler.GetAccount)
			affiliateGroup.POST("/links", affiliateHandler.CreateReferralLink)
			affiliateGroup.GET("/links", affiliateHandler.GetReferralLinks)
			affiliateGroup.GET("/dashboard", affiliateHandler.GetDashboard)
			affiliateGroup.GET("/commissions", affiliateHandler.GetCommissions)
			affiliateGroup.POST("/payouts", affiliateHandler.RequestPayout)
			affiliateGroup.GET("/payouts", affiliateHandler.GetPayouts)
		}

		seller := protected.Group("/seller")
		seller.Use(middleware.RequireRole(user.RoleSeller))
		{
			seller.GET("/books", bookHandler.GetSellerBooks)
			seller.POST("/books", bookHandler.CreateBook)
			seller.PUT("/books/:id", bookHandler.UpdateBook)
			seller.DELETE("/books/:id", bookHandler.DeleteBook)
			seller.POST("/books/:id/inventory", inventoryHandler.AdjustInventory)
			seller.GET("/books/:id/inventory", inventoryHandler.GetAdjustmentHistory)
			seller.GET("/inventory/alerts", inventoryHandler.GetInventoryAlerts)
			seller.GET("/orders", orderHandler.GetSellerOrders)
			seller.GET("/dashboard", analyticsHandler.GetSellerDashboard)
			seller.GET("/reports", analyticsHandler.GetSalesReports)
			seller.POST("/reports", analyticsHandler.GenerateSalesReport)
		}
	}

	// Admin endpoints
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		users := admin.Group("/users")
		{
			users.GET("", userAdminHandler.GetUsers)
			users.GET("/export", userAdminHandler.ExportUsers)
			users.GET("/:id", userAdminHandler.GetUser)
			users.PUT("/:id/status", userAdminHandler.UpdateUserStatus)
			users.PUT("/:id/role", userAdminHandler.UpdateUserRole)
		}

		admin.POST("/categories", categoryHandler.CreateCategory)
		admin.PUT("/categories/:id", categoryHandler.UpdateCategory)
		admin.DELETE("/categories/:id", categoryHandler.DeleteCategory)
		admin.POST("/genres", categoryHandler.CreateGenre)
		admin.DELETE("/genres/:id", categoryHandler.DeleteGenre)

		orders := admin.Group("/orders")
		{
			orders.GET("", orderHandler.GetAllOrders)
			orders.PUT("/:id/status", orderHandler.UpdateOrderStatus)
		}

		returns := admin.Group("/returns")
		{
			returns.GET("", orderHandler.GetAllReturns)
			returns.PUT("/:id/status", orderHandler.UpdateReturnStatus)
		}

		reviews := admin.Group("/reviews")
		{
			reviews.GET("/reports", reviewHandler.GetModerationQueue)
			reviews.PUT("/:id/moderate", reviewHandler.ModerateReview)
		}

		affiliates := admin.Group("/affiliates")
		{
			affiliates.GET("", affiliateHandler.ListAffiliates)
			affiliates.PUT("/:id/status", affiliateHandler.UpdateAffiliateStatus)
		}

		payouts := admin.Group("/payouts")
		{
			payouts.GET("", affiliateHandler.GetAllPayouts)
			payouts.PUT("/:id/status", affiliateHandler.UpdatePayoutStatus)
		}

		adminAnalytics := admin.Group("/analytics")
		{
			adminAnalytics.GET("/stats", analyticsHandler.GetPlatformStats)
			adminAnalytics.GET("/revenue", analyticsHandler.GetPlatformRevenue)
		}
	}
}

// SetupReferralRoutes registers the public referral redirect at the
// engine root, outside the API prefix, so short links stay short.
func SetupReferralRoutes(engine *gin.Engine, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	referralHandler := handlers.NewReferralHandler(db, redisClient, cfg)
	engine.GET("/ref/:code", referralHandler.HandleReferral)
}
