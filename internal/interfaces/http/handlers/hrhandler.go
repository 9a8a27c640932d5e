package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/staffhub/staffhub/internal/application/billing/usecases"
	"github.com/staffhub/staffhub/internal/interfaces/http/middleware"
	"github.com/staffhub/staffhub/internal/shared/utils"
)

// HRHandler answers the guarded HR probes. The employee and payroll modules
// themselves live in other services; these endpoints let them, and the
// frontend, ask whether an action is currently allowed.
type HRHandler struct{}

func NewHRHandler() *HRHandler {
	return &HRHandler{}
}

// SeatCheck handles POST /hr/employees/seat-check
func (h *HRHandler) SeatCheck(c *gin.Context) {
	ent := entitlementFrom(c)
	if ent == nil {
		utils.SuccessResponse(c, http.StatusOK, "", gin.H{"allowed": true})
		return
	}

	limit := ent.Plan.MaxEmployees()
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"allowed":       true,
		"employees":     ent.Seats,
		"max_employees": limit,
		"unlimited":     ent.Plan.IsUnlimited(),
	})
}

// PayrollAccess handles GET /hr/payroll/access
func (h *HRHandler) PayrollAccess(c *gin.Context) {
	resp := gin.H{"allowed": true}
	if ent := entitlementFrom(c); ent != nil {
		resp["plan"] = ent.Plan.Slug()
		resp["status"] = ent.Subscription.Status().String()
	}
	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

func entitlementFrom(c *gin.Context) *usecases.Entitlement {
	v, ok := c.Get(middleware.ContextKeyEntitlement)
	if !ok {
		return nil
	}
	ent, _ := v.(*usecases.Entitlement)
	if ent == nil || ent.Plan == nil || ent.Subscription == nil {
		return nil
	}
	return ent
}
