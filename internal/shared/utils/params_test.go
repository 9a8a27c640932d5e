package utils

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffhub/staffhub/internal/shared/constants"
	"github.com/staffhub/staffhub/internal/shared/errors"
)

func TestParseUintParam(t *testing.T) {
	tests := []struct {
		raw     string
		want    uint
		wantErr bool
	}{
		{"12", 12, false},
		{"", 0, true},
		{"0", 0, true},
		{"-3", 0, true},
		{"starter", 0, true},
	}

	for _, tt := range tests {
		c := contextWithQuery("")
		c.Params = gin.Params{{Key: "id", Value: tt.raw}}
		got, err := ParseUintParam(c, "id", "plan")
		if tt.wantErr {
			assert.True(t, errors.IsValidationError(err), "raw=%q", tt.raw)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestGetCaller(t *testing.T) {
	c := contextWithQuery("")
	_, err := GetCaller(c)
	assert.Equal(t, errors.ErrorTypeUnauthorized, errors.GetAppError(err).Type)

	c.Set(constants.ContextKeyUserID, uint(7))
	c.Set(constants.ContextKeyTenantID, uint(42))
	c.Set(constants.ContextKeyRole, constants.RoleOwner)
	caller, err := GetCaller(c)
	require.NoError(t, err)
	assert.Equal(t, CallerIdentity{UserID: 7, TenantID: 42, Role: constants.RoleOwner}, caller)
}
