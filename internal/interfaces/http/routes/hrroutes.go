package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/staffhub/staffhub/internal/application/billing/usecases"
	"github.com/staffhub/staffhub/internal/domain/subscription/valueobjects"
	"github.com/staffhub/staffhub/internal/interfaces/http/handlers"
	"github.com/staffhub/staffhub/internal/interfaces/http/middleware"
)

// HRRouteConfig holds dependencies for the entitlement-gated HR probes.
type HRRouteConfig struct {
	HRHandler             *handlers.HRHandler
	AuthMiddleware        *middleware.AuthMiddleware
	EntitlementMiddleware *middleware.EntitlementMiddleware
}

// SetupHRRoutes configures the probes the HR modules call before acting.
func SetupHRRoutes(api *gin.RouterGroup, cfg *HRRouteConfig) {
	hr := api.Group("/hr")
	hr.Use(cfg.AuthMiddleware.RequireAuth())
	{
		hr.GET("/employees/seat-check",
			cfg.EntitlementMiddleware.RequireEntitlement(usecases.Requirement{AddsSeat: true}),
			cfg.HRHandler.SeatCheck,
		)
		hr.GET("/payroll/access",
			cfg.EntitlementMiddleware.RequireEntitlement(usecases.Requirement{Feature: valueobjects.FeaturePayroll}),
			cfg.HRHandler.PayrollAccess,
		)
	}
}
