package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/staffhub/staffhub/internal/shared/constants"
	"github.com/staffhub/staffhub/internal/shared/errors"
	"github.com/staffhub/staffhub/internal/shared/logger"
	"github.com/staffhub/staffhub/internal/shared/utils"
)

// RequireServiceToken guards internal endpoints called by other platform
// services. An empty configured token closes the endpoints entirely.
func RequireServiceToken(token string, log logger.Interface) gin.HandlerFunc {
	expected := []byte(token)
	return func(c *gin.Context) {
		got := c.GetHeader(constants.HeaderServiceToken)
		if len(expected) == 0 || subtle.ConstantTimeCompare([]byte(got), expected) != 1 {
			log.Warnw("rejected internal call", "path", c.Request.URL.Path, "client_ip", c.ClientIP())
			utils.AbortWithError(c, errors.NewUnauthorizedError("invalid service token"))
			return
		}
		c.Next()
	}
}
