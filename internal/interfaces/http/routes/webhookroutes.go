package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/staffhub/staffhub/internal/interfaces/http/handlers"
)

// WebhookRouteConfig holds dependencies for provider callbacks.
type WebhookRouteConfig struct {
	WebhookHandler *handlers.WebhookHandler
}

// SetupWebhookRoutes configures provider callbacks. They authenticate by
// signature, not by bearer token.
func SetupWebhookRoutes(api *gin.RouterGroup, cfg *WebhookRouteConfig) {
	webhooks := api.Group("/webhooks")
	{
		webhooks.POST("/payments", cfg.WebhookHandler.HandlePayments)
	}
}
