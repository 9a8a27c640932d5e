package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/staffhub/staffhub/internal/interfaces/http/handlers"
	"github.com/staffhub/staffhub/internal/interfaces/http/middleware"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

// InternalRouteConfig holds dependencies for service-to-service routes.
type InternalRouteConfig struct {
	TrialHandler *handlers.TrialHandler
	ServiceToken string
	Logger       logger.Interface
}

// SetupInternalRoutes configures routes called by the tenant registration flow.
func SetupInternalRoutes(api *gin.RouterGroup, cfg *InternalRouteConfig) {
	internal := api.Group("/internal")
	internal.Use(middleware.RequireServiceToken(cfg.ServiceToken, cfg.Logger))
	{
		internal.POST("/tenants/:tenant_id/trial", cfg.TrialHandler.RegisterTrial)
	}
}
