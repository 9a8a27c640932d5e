package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/staffhub/staffhub/internal/shared/errors"
	"github.com/staffhub/staffhub/internal/shared/logger"
	"github.com/staffhub/staffhub/internal/shared/utils"
)

// bindJSON decodes the body into req and answers 400 on failure.
func bindJSON(c *gin.Context, log logger.Interface, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		log.Warnw("invalid request body", "path", c.FullPath(), "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return false
	}
	return true
}
