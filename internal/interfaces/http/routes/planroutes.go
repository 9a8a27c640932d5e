package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/staffhub/staffhub/internal/infrastructure/permission"
	"github.com/staffhub/staffhub/internal/interfaces/http/handlers"
	"github.com/staffhub/staffhub/internal/interfaces/http/middleware"
)

// PlanRouteConfig holds dependencies for plan routes.
type PlanRouteConfig struct {
	PlanHandler          *handlers.PlanHandler
	AuthMiddleware       *middleware.AuthMiddleware
	PermissionMiddleware *middleware.PermissionMiddleware
}

// SetupPlanRoutes configures the public catalog and its admin surface.
func SetupPlanRoutes(api *gin.RouterGroup, cfg *PlanRouteConfig) {
	plans := api.Group("/plans")
	{
		plans.GET("", cfg.PlanHandler.ListPublicPlans)
		plans.GET("/:id", cfg.PlanHandler.GetPublicPlan)
	}

	admin := api.Group("/admin/plans")
	admin.Use(cfg.AuthMiddleware.RequireAuth())
	admin.Use(cfg.PermissionMiddleware.RequirePermission(permission.ResourcePlan, permission.ActionManage))
	{
		admin.GET("", cfg.PlanHandler.ListAllPlans)
		admin.POST("", cfg.PlanHandler.CreatePlan)
		admin.PUT("/:id", cfg.PlanHandler.UpdatePlan)
		admin.POST("/:id/deactivate", cfg.PlanHandler.DeactivatePlan)
	}
}
