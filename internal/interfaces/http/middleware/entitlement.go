package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/staffhub/staffhub/internal/application/billing/usecases"
	"github.com/staffhub/staffhub/internal/shared/logger"
	"github.com/staffhub/staffhub/internal/shared/utils"
)

// ContextKeyEntitlement holds the *usecases.Entitlement a request was admitted with.
const ContextKeyEntitlement = "entitlement"

type EntitlementChecker interface {
	Execute(ctx context.Context, tenantID uint, req usecases.Requirement) (*usecases.Entitlement, error)
}

// EntitlementMiddleware puts the subscription guard in front of HR routes.
type EntitlementMiddleware struct {
	checker EntitlementChecker
	logger  logger.Interface
}

func NewEntitlementMiddleware(checker EntitlementChecker, logger logger.Interface) *EntitlementMiddleware {
	return &EntitlementMiddleware{
		checker: checker,
		logger:  logger,
	}
}

// RequireEntitlement must run after RequireAuth. Denials carry the guard's
// code and redirect; payment problems answer 402, ceilings 403.
func (m *EntitlementMiddleware) RequireEntitlement(req usecases.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := utils.GetCaller(c)
		if err != nil {
			utils.AbortWithError(c, err)
			return
		}

		ent, err := m.checker.Execute(c.Request.Context(), caller.TenantID, req)
		if err != nil {
			m.logger.Debugw("entitlement denied",
				"tenant_id", caller.TenantID,
				"path", c.Request.URL.Path,
				"feature", req.Feature,
				"adds_seat", req.AddsSeat,
				"error", err,
			)
			utils.AbortWithError(c, err)
			return
		}

		c.Set(ContextKeyEntitlement, ent)
		c.Next()
	}
}
