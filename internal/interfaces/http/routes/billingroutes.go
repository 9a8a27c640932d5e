package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/staffhub/staffhub/internal/infrastructure/permission"
	"github.com/staffhub/staffhub/internal/interfaces/http/handlers"
	"github.com/staffhub/staffhub/internal/interfaces/http/middleware"
)

// BillingRouteConfig holds dependencies for tenant billing routes.
type BillingRouteConfig struct {
	BillingHandler       *handlers.BillingHandler
	AuthMiddleware       *middleware.AuthMiddleware
	PermissionMiddleware *middleware.PermissionMiddleware
	// RateLimiter is nil when redis is disabled.
	RateLimiter *middleware.TenantRateLimiter
}

// SetupBillingRoutes configures the authenticated billing API.
func SetupBillingRoutes(api *gin.RouterGroup, cfg *BillingRouteConfig) {
	billing := api.Group("/billing")
	billing.Use(cfg.AuthMiddleware.RequireAuth())

	read := cfg.PermissionMiddleware.RequirePermission(permission.ResourceSubscription, permission.ActionRead)
	manage := cfg.PermissionMiddleware.RequirePermission(permission.ResourceSubscription, permission.ActionManage)

	checkout := []gin.HandlerFunc{manage}
	if cfg.RateLimiter != nil {
		checkout = append(checkout, cfg.RateLimiter.Limit("checkout"))
	}

	{
		billing.GET("/subscription", read, cfg.BillingHandler.GetCurrentSubscription)
		billing.POST("/orders", append(checkout, cfg.BillingHandler.CreateOrder)...)
		billing.POST("/verify", manage, cfg.BillingHandler.VerifyPayment)
		billing.POST("/change-plan", manage, cfg.BillingHandler.ChangePlan)
		billing.POST("/cancel", manage, cfg.BillingHandler.CancelSubscription)
		billing.POST("/reactivate", manage, cfg.BillingHandler.Reactivate)
		billing.GET("/invoices",
			cfg.PermissionMiddleware.RequirePermission(permission.ResourceInvoice, permission.ActionRead),
			cfg.BillingHandler.ListInvoices,
		)
	}
}
