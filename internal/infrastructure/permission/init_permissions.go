package permission

import (
	"fmt"

	"github.com/staffhub/staffhub/internal/shared/constants"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

// Resources and actions guarded by the billing API.
const (
	ResourceSubscription = "subscription"
	ResourceInvoice      = "invoice"
	ResourcePlan         = "plan"

	ActionRead   = "read"
	ActionManage = "manage"
)

// InitBillingPermissions installs the default policies. Existing rules are
// left untouched, so it is safe to run on every start.
func InitBillingPermissions(e *Enforcer, log logger.Interface) error {
	policies := [][]string{
		// Members can see where the tenant stands
		{constants.RoleMember, ResourceSubscription, ActionRead},
		{constants.RoleMember, ResourcePlan, ActionRead},

		// Admins can also read invoices; owners pay
		{constants.RoleAdmin, ResourceInvoice, ActionRead},
		{constants.RoleOwner, ResourceSubscription, ActionManage},

		{constants.RolePlatformAdmin, ResourcePlan, "*"},
		{constants.RolePlatformAdmin, ResourceSubscription, ActionRead},
		{constants.RolePlatformAdmin, ResourceInvoice, ActionRead},
	}
	inheritance := [][]string{
		{constants.RoleOwner, constants.RoleAdmin},
		{constants.RoleAdmin, constants.RoleMember},
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, policy := range policies {
		if _, err := e.enforcer.AddPolicy(policy[0], policy[1], policy[2]); err != nil {
			log.Errorw("failed to add billing permission policy",
				"error", err,
				"role", policy[0],
				"resource", policy[1],
				"action", policy[2])
			return fmt.Errorf("failed to add policy [%s, %s, %s]: %w",
				policy[0], policy[1], policy[2], err)
		}
	}
	for _, g := range inheritance {
		if _, err := e.enforcer.AddGroupingPolicy(g[0], g[1]); err != nil {
			return fmt.Errorf("failed to add role inheritance %s -> %s: %w", g[0], g[1], err)
		}
	}

	log.Infow("billing permissions initialized successfully")
	return nil
}
