package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffhub/staffhub/internal/application/billing/usecases"
	"github.com/staffhub/staffhub/internal/domain/subscription"
	vo "github.com/staffhub/staffhub/internal/domain/subscription/valueobjects"
	"github.com/staffhub/staffhub/internal/interfaces/http/handlers/testutil"
	"github.com/staffhub/staffhub/internal/interfaces/http/middleware"
)

func starterEntitlement(t *testing.T, seats int) *usecases.Entitlement {
	t.Helper()
	now := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	plan, err := subscription.NewPlan(subscription.PlanParams{
		Slug: "starter", Name: "Starter", MonthlyPrice: 49900, YearlyPrice: 499000,
		Currency: "INR", MaxEmployees: 25, TrialDays: 14,
		Features: vo.PlanFeatures{Payroll: true},
	}, now)
	require.NoError(t, err)
	require.NoError(t, plan.SetID(1))
	sub, err := subscription.NewTrialSubscription(42, plan, vo.BillingCycleMonthly, now)
	require.NoError(t, err)
	return &usecases.Entitlement{Subscription: sub, Plan: plan, Seats: seats}
}

func TestSeatCheckReportsUsage(t *testing.T) {
	h := NewHRHandler()
	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/hr/employees/seat-check", nil)
	c.Set(middleware.ContextKeyEntitlement, starterEntitlement(t, 24))
	h.SeatCheck(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var got struct {
		Allowed      bool `json:"allowed"`
		Employees    int  `json:"employees"`
		MaxEmployees int  `json:"max_employees"`
	}
	decode(t, resp.Data, &got)
	assert.True(t, got.Allowed)
	assert.Equal(t, 24, got.Employees)
	assert.Equal(t, 25, got.MaxEmployees)
}

func TestPayrollAccessNamesPlan(t *testing.T) {
	h := NewHRHandler()
	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/hr/payroll/access", nil)
	c.Set(middleware.ContextKeyEntitlement, starterEntitlement(t, 0))
	h.PayrollAccess(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var got map[string]interface{}
	decode(t, resp.Data, &got)
	assert.Equal(t, "starter", got["plan"])
	assert.Equal(t, "trial", got["status"])
}
