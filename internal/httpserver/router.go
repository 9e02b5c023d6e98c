package httpserver

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"colognehub/internal/logging"
)

// buildRouter wires routes for the storefront and admin console.
func buildRouter(logger *zap.Logger, deps Deps, opts Options) (*gin.Engine, error) {
	if deps.Session == nil {
		return nil, errors.New("session reader is required")
	}
	logger = logging.OrNop(logger)
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestLogger(logger), recovery(logger), corsMiddleware(opts.CORSOrigins), securityHeaders(opts.Production))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Ready))

	h := &handlers{deps: deps, logger: logger}
	api := router.Group("/api")

	api.GET("/session", h.session)
	api.GET("/notifications", h.listNotifications)
	api.DELETE("/notifications/:id", h.dismissNotification)

	authGroup := api.Group("/auth")
	authGroup.POST("/login", h.login)
	authGroup.POST("/register", h.register)
	authGroup.POST("/logout", h.logout)
	authGroup.POST("/forgot-password", h.forgotPassword)
	authGroup.POST("/reset-password", h.resetPassword)
	authGroup.POST("/verify-email", h.verifyEmail)

	shop := api.Group("/shop")
	shop.GET("", h.shopPage)
	shop.POST("/refresh", h.shopRefresh)
	shop.POST("/hydrate", h.shopHydrate)
	shop.PUT("/filter", h.shopFilter)
	shop.DELETE("/filter", h.shopClearFilter)
	shop.PUT("/search", h.shopSearch)
	shop.PUT("/sort", h.shopSort)
	shop.PUT("/page", h.shopSetPage)
	shop.GET("/query", h.shopQuery)
	api.GET("/products/:id", h.productDetail)

	// Adding goes through the login gate; the rest needs a session.
	api.POST("/cart", h.addToCart)
	api.POST("/wishlist/:productId/toggle", h.toggleWishlist)

	member := api.Group("", requireAuth(deps.Session))
	member.GET("/cart", h.cart)
	member.GET("/cart/count", h.cartCount)
	member.PUT("/cart/:productId", h.updateCartLine)
	member.DELETE("/cart/:productId", h.removeCartLine)
	member.GET("/wishlist", h.wishlist)
	member.POST("/wishlist/:productId/move-to-cart", h.moveToCart)
	member.GET("/checkout", h.checkoutSummary)
	member.POST("/checkout/promo", h.applyPromo)
	member.DELETE("/checkout/promo", h.removePromo)
	member.POST("/checkout", h.placeOrder)
	member.GET("/orders", h.orders)
	member.GET("/orders/:orderId", h.trackOrder)

	adm := api.Group("/admin", requireAdmin(deps.Session))
	adm.GET("/dashboard", h.adminDashboard)
	adm.GET("/products", h.adminProducts)
	adm.POST("/products", h.adminCreateProduct)
	adm.PUT("/products/:productId", h.adminUpdateProduct)
	adm.DELETE("/products/:productId", h.adminDeleteProduct)
	adm.POST("/products/bulk-upload", h.adminBulkUpload)
	adm.GET("/products/bulk-download", h.adminBulkDownload)
	adm.GET("/products/export", h.adminExportProducts)
	adm.GET("/inventory", h.adminInventory)
	adm.PUT("/inventory/:productId", h.adminAdjustStock)
	adm.GET("/brands", h.adminBrands)
	adm.POST("/brands", h.adminSaveBrand)
	adm.PUT("/brands/:id", h.adminSaveBrand)
	adm.DELETE("/brands/:id", h.adminDeleteBrand)
	adm.GET("/users", h.adminUsers)
	adm.GET("/orders", h.adminOrders)
	adm.PUT("/orders/:orderId/status", h.adminUpdateOrderStatus)
	adm.GET("/subscribers", h.adminSubscribers)
	adm.DELETE("/subscribers/:id", h.adminDeleteSubscriber)
	adm.GET("/subscribers/export", h.adminExportSubscribers)

	return router, nil
}
