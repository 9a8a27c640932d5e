package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	vo "github.com/staffhub/staffhub/internal/domain/subscription/valueobjects"
)

var day0 = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

func starterParams() PlanParams {
	return PlanParams{
		Slug:         "starter",
		Name:         "Starter",
		MonthlyPrice: 49900,
		YearlyPrice:  499000,
		Currency:     "INR",
		MaxEmployees: 25,
		TrialDays:    14,
		SortOrder:    1,
	}
}

func professionalParams() PlanParams {
	return PlanParams{
		Slug:         "professional",
		Name:         "Professional",
		MonthlyPrice: 149900,
		YearlyPrice:  1499000,
		Currency:     "INR",
		MaxEmployees: 200,
		TrialDays:    14,
		Features:     vo.PlanFeatures{Payroll: true, Analytics: true},
		SortOrder:    2,
	}
}

func newPlanWithID(t *testing.T, id uint, params PlanParams) *Plan {
	t.Helper()
	p, err := NewPlan(params, day0)
	require.NoError(t, err)
	require.NoError(t, p.SetID(id))
	return p
}

func newTrial(t *testing.T) *Subscription {
	t.Helper()
	sub, err := NewTrialSubscription(42, newPlanWithID(t, 1, starterParams()), vo.BillingCycleMonthly, day0)
	require.NoError(t, err)
	require.NoError(t, sub.SetID(7))
	return sub
}

func newActive(t *testing.T) *Subscription {
	t.Helper()
	sub := newTrial(t)
	_, _, err := sub.ApplyCapturedPayment(CaptureTerms{PlanID: 2, BillingCycle: vo.BillingCycleMonthly}, day0)
	require.NoError(t, err)
	return sub
}
