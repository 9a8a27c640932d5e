package usecases_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffhub/staffhub/internal/application/billing/usecases"
	vo "github.com/staffhub/staffhub/internal/domain/subscription/valueobjects"
	"github.com/staffhub/staffhub/internal/infrastructure/testutil"
	"github.com/staffhub/staffhub/internal/shared/clock"
	apperrors "github.com/staffhub/staffhub/internal/shared/errors"
)

func requireDenial(t *testing.T, err error, code string) *apperrors.AppError {
	t.Helper()
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr, "expected an AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

func TestRegisterTrialIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.registerUC.Execute(ctx, usecases.RegisterTrialCommand{TenantID: tenantID, PlanSlug: "starter"})
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, "trial", first.Subscription.Status)
	require.NotNil(t, first.Subscription.TrialEnd)
	assert.True(t, fixtureStart.Add(clock.Days(14)).Equal(*first.Subscription.TrialEnd))

	again, err := f.registerUC.Execute(ctx, usecases.RegisterTrialCommand{TenantID: tenantID, PlanSlug: "professional"})
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, first.Subscription.ID, again.Subscription.ID)
	assert.Equal(t, f.starter.ID(), again.Subscription.PlanID)
}

func TestRegisterTrialRejectsCustomPlan(t *testing.T) {
	f := newFixture(t)
	_, err := f.registerUC.Execute(context.Background(), usecases.RegisterTrialCommand{TenantID: tenantID, PlanSlug: "enterprise"})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestTrialExpiresOnDayFifteen(t *testing.T) {
	f := newFixture(t)
	f.startTrial(t)
	ctx := context.Background()

	f.clock.Advance(clock.Days(14))
	_, err := f.guardUC.Execute(ctx, tenantID, usecases.Requirement{})
	require.NoError(t, err, "trial is still valid at its exact end")
	assert.Equal(t, vo.StatusTrial, f.currentSub(t).Status())

	f.clock.Advance(clock.Days(1))
	_, err = f.guardUC.Execute(ctx, tenantID, usecases.Requirement{})
	appErr := requireDenial(t, err, apperrors.CodeTrialExpired)
	assert.Equal(t, http.StatusPaymentRequired, appErr.Status)
	assert.Equal(t, apperrors.RedirectPlans, appErr.Redirect)

	assert.Equal(t, vo.StatusExpired, f.currentSub(t).Status())
}

func TestGraceBoundary(t *testing.T) {
	tests := []struct {
		name     string
		after    time.Duration
		status   vo.SubscriptionStatus
		denyCode string
	}{
		{"at period end", 0, vo.StatusActive, ""},
		{"one second after period end", time.Second, vo.StatusPastDue, apperrors.CodeSubscriptionPastDue},
		{"exactly 72 hours after", 72 * time.Hour, vo.StatusPastDue, apperrors.CodeSubscriptionPastDue},
		{"72 hours and one second after", 72*time.Hour + time.Second, vo.StatusSuspended, apperrors.CodeSubscriptionSuspended},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.startTrial(t)
			f.activate(t, f.professional, "order_grace")

			periodEnd := f.currentSub(t).CurrentPeriodEnd()
			require.NotNil(t, periodEnd)
			f.clock.Set(periodEnd.Add(tt.after))

			_, err := f.guardUC.Execute(context.Background(), tenantID, usecases.Requirement{})
			if tt.denyCode == "" {
				require.NoError(t, err)
			} else {
				requireDenial(t, err, tt.denyCode)
			}
			assert.Equal(t, tt.status, f.currentSub(t).Status())
		})
	}
}

func TestReadRepairPersistsEveryDueTransition(t *testing.T) {
	f := newFixture(t)
	f.startTrial(t)
	f.activate(t, f.professional, "order_repair")

	// Long after the grace period, a single read applies both transitions.
	f.clock.Advance(clock.Days(60))
	current, err := f.currentUC.Execute(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Equal(t, "suspended", current.Subscription.Status)
	assert.Equal(t, vo.StatusSuspended, f.currentSub(t).Status())
}

func TestSeatLimit(t *testing.T) {
	f := newFixture(t)
	f.startTrial(t)
	ctx := context.Background()

	testutil.AddEmployees(t, f.db, tenantID, 24)
	ent, err := f.guardUC.Execute(ctx, tenantID, usecases.Requirement{AddsSeat: true})
	require.NoError(t, err)
	assert.Equal(t, 24, ent.Seats)

	testutil.AddEmployees(t, f.db, tenantID, 1)
	_, err = f.guardUC.Execute(ctx, tenantID, usecases.Requirement{AddsSeat: true})
	appErr := requireDenial(t, err, apperrors.CodeEmployeeLimitReached)
	assert.Equal(t, http.StatusForbidden, appErr.Status)

	// Reads that add no seat are unaffected.
	_, err = f.guardUC.Execute(ctx, tenantID, usecases.Requirement{})
	assert.NoError(t, err)
}

func TestFeatureGate(t *testing.T) {
	f := newFixture(t)
	f.startTrial(t)
	ctx := context.Background()

	_, err := f.guardUC.Execute(ctx, tenantID, usecases.Requirement{Feature: vo.FeaturePayroll})
	require.NoError(t, err)

	_, err = f.guardUC.Execute(ctx, tenantID, usecases.Requirement{Feature: vo.FeatureAnalytics})
	requireDenial(t, err, apperrors.CodeFeatureNotAvailable)
}

func TestGuardWithoutSubscription(t *testing.T) {
	f := newFixture(t)
	_, err := f.guardUC.Execute(context.Background(), tenantID, usecases.Requirement{})
	requireDenial(t, err, apperrors.CodeNoSubscription)
}

func TestCurrentSubscriptionReportsUsage(t *testing.T) {
	f := newFixture(t)
	f.startTrial(t)
	testutil.AddEmployees(t, f.db, tenantID, 5)
	f.clock.Advance(clock.Days(4))

	current, err := f.currentUC.Execute(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Equal(t, "starter", current.Plan.Slug)
	assert.Equal(t, 5, current.Usage.Employees)
	assert.Equal(t, 25, current.Usage.MaxEmployees)
	assert.InDelta(t, 20.0, current.Usage.PercentUsed, 0.01)
	assert.Equal(t, 10, current.DaysRemaining)
	assert.Empty(t, current.RecentPayments)
}
