package middleware

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/staffhub/staffhub/internal/infrastructure/ratelimit"
	"github.com/staffhub/staffhub/internal/shared/errors"
	"github.com/staffhub/staffhub/internal/shared/logger"
	"github.com/staffhub/staffhub/internal/shared/utils"
)

type Limiter interface {
	Allow(ctx context.Context, key string, config ratelimit.RateLimitConfig) (bool, error)
}

// TenantRateLimiter throttles expensive calls, such as opening gateway orders,
// per tenant. The limiter failing open keeps checkout available when redis is down.
type TenantRateLimiter struct {
	limiter Limiter
	config  ratelimit.RateLimitConfig
	logger  logger.Interface
}

func NewTenantRateLimiter(limiter Limiter, config ratelimit.RateLimitConfig, logger logger.Interface) *TenantRateLimiter {
	return &TenantRateLimiter{
		limiter: limiter,
		config:  config,
		logger:  logger,
	}
}

// Limit must run after RequireAuth; scope separates counters of different routes.
func (rl *TenantRateLimiter) Limit(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := utils.GetCaller(c)
		if err != nil {
			utils.AbortWithError(c, err)
			return
		}

		key := fmt.Sprintf("%s:tenant:%d", scope, caller.TenantID)
		allowed, err := rl.limiter.Allow(c.Request.Context(), key, rl.config)
		if err != nil {
			rl.logger.Warnw("rate limiter unavailable", "key", key, "error", err)
			c.Next()
			return
		}

		if !allowed {
			rl.logger.Warnw("rate limit exceeded", "key", key)
			utils.AbortWithError(c, errors.NewRateLimitError("too many requests, please try again later"))
			return
		}

		c.Next()
	}
}
