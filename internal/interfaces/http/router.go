package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/staffhub/staffhub/internal/interfaces/http/middleware"
	"github.com/staffhub/staffhub/internal/interfaces/http/routes"
)

// SetupRoutes configures all HTTP routes
func (c *Container) SetupRoutes() {
	c.engine.Use(middleware.RequestLogger(c.log))
	c.engine.Use(middleware.Recovery(c.log))
	c.engine.Use(c.metrics.Middleware())

	c.engine.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	c.engine.GET("/metrics", gin.WrapH(c.metrics.Handler()))

	api := c.engine.Group("/api/v1")

	routes.SetupPlanRoutes(api, &routes.PlanRouteConfig{
		PlanHandler:          c.hdlrs.plan,
		AuthMiddleware:       c.authMiddleware,
		PermissionMiddleware: c.permissionMiddleware,
	})

	routes.SetupBillingRoutes(api, &routes.BillingRouteConfig{
		BillingHandler:       c.hdlrs.billing,
		AuthMiddleware:       c.authMiddleware,
		PermissionMiddleware: c.permissionMiddleware,
		RateLimiter:          c.rateLimiter,
	})

	routes.SetupWebhookRoutes(api, &routes.WebhookRouteConfig{
		WebhookHandler: c.hdlrs.webhook,
	})

	routes.SetupInternalRoutes(api, &routes.InternalRouteConfig{
		TrialHandler: c.hdlrs.trial,
		ServiceToken: c.cfg.Auth.ServiceToken,
		Logger:       c.log,
	})

	routes.SetupHRRoutes(api, &routes.HRRouteConfig{
		HRHandler:             c.hdlrs.hr,
		AuthMiddleware:        c.authMiddleware,
		EntitlementMiddleware: c.entitlementMiddleware,
	})
}
