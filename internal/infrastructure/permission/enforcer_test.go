package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/staffhub/staffhub/internal/shared/constants"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

func newEnforcer(t *testing.T) *Enforcer {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	e, err := NewEnforcer(db, "", logger.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, InitBillingPermissions(e, logger.NewNopLogger()))
	return e
}

func TestBillingPermissions(t *testing.T) {
	e := newEnforcer(t)

	tests := []struct {
		role     string
		resource string
		action   string
		allowed  bool
	}{
		{constants.RoleOwner, ResourceSubscription, ActionManage, true},
		{constants.RoleOwner, ResourceInvoice, ActionRead, true},
		{constants.RoleAdmin, ResourceSubscription, ActionManage, false},
		{constants.RoleAdmin, ResourceInvoice, ActionRead, true},
		{constants.RoleMember, ResourceSubscription, ActionRead, true},
		{constants.RoleMember, ResourceInvoice, ActionRead, false},
		{constants.RolePlatformAdmin, ResourcePlan, ActionManage, true},
		{constants.RoleOwner, ResourcePlan, ActionManage, false},
		{"stranger", ResourcePlan, ActionRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.resource+"/"+tt.action, func(t *testing.T) {
			allowed, err := e.Enforce(tt.role, tt.resource, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, allowed)
		})
	}
}

func TestInitBillingPermissionsIsIdempotent(t *testing.T) {
	e := newEnforcer(t)
	require.NoError(t, InitBillingPermissions(e, logger.NewNopLogger()))
	require.NoError(t, e.LoadPolicy())

	allowed, err := e.Enforce(constants.RoleOwner, ResourceSubscription, ActionManage)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestAddAndRemovePolicy(t *testing.T) {
	e := newEnforcer(t)
	require.NoError(t, e.AddPolicy(constants.RoleAdmin, ResourceSubscription, ActionManage))

	allowed, err := e.Enforce(constants.RoleAdmin, ResourceSubscription, ActionManage)
	require.NoError(t, err)
	assert.True(t, allowed)

	require.NoError(t, e.RemovePolicy(constants.RoleAdmin, ResourceSubscription, ActionManage))
	allowed, err = e.Enforce(constants.RoleAdmin, ResourceSubscription, ActionManage)
	require.NoError(t, err)
	assert.False(t, allowed)
}
