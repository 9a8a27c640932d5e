package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/staffhub/staffhub/internal/shared/constants"
	"github.com/staffhub/staffhub/internal/shared/errors"
)

// ParseUintParam reads a positive numeric path parameter.
// entityName is used in error messages (e.g., "plan", "tenant").
func ParseUintParam(c *gin.Context, paramName, entityName string) (uint, error) {
	raw := c.Param(paramName)
	if raw == "" {
		return 0, errors.NewValidationError(entityName + " ID is required")
	}

	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, errors.NewValidationError("invalid " + entityName + " ID")
	}
	return uint(n), nil
}

// CallerIdentity is what the auth middleware attached to the request.
type CallerIdentity struct {
	UserID   uint
	TenantID uint
	Role     string
}

// GetCaller returns the authenticated caller or an unauthorized error when
// the auth middleware did not run.
func GetCaller(c *gin.Context) (CallerIdentity, error) {
	userID, ok := c.Get(constants.ContextKeyUserID)
	if !ok {
		return CallerIdentity{}, errors.NewUnauthorizedError("user not authenticated")
	}
	tenantID, ok := c.Get(constants.ContextKeyTenantID)
	if !ok {
		return CallerIdentity{}, errors.NewUnauthorizedError("tenant not resolved")
	}

	caller := CallerIdentity{Role: c.GetString(constants.ContextKeyRole)}
	caller.UserID, _ = userID.(uint)
	caller.TenantID, _ = tenantID.(uint)
	if caller.UserID == 0 || caller.TenantID == 0 {
		return CallerIdentity{}, errors.NewUnauthorizedError("invalid caller identity")
	}
	return caller, nil
}
