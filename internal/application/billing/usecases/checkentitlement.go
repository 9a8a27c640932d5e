package usecases

import (
	"context"
	"fmt"
	"net/http"

	"github.com/staffhub/staffhub/internal/domain/subscription"
	vo "github.com/staffhub/staffhub/internal/domain/subscription/valueobjects"
	apperrors "github.com/staffhub/staffhub/internal/shared/errors"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

// Requirement is what a guarded operation needs from the tenant's plan.
type Requirement struct {
	AddsSeat bool
	Feature  string
}

// Entitlement is the state a granted request was checked against.
type Entitlement struct {
	Subscription *subscription.Subscription
	Plan         *subscription.Plan
	// Seats is only populated when the requirement adds a seat.
	Seats int
}

// CheckEntitlementUseCase decides whether a tenant may use a feature or add
// an employee. Denials are AppErrors carrying a code and a redirect.
type CheckEntitlementUseCase struct {
	lifecycle *Lifecycle
	logger    logger.Interface
}

func NewCheckEntitlementUseCase(lifecycle *Lifecycle, logger logger.Interface) *CheckEntitlementUseCase {
	return &CheckEntitlementUseCase{
		lifecycle: lifecycle,
		logger:    logger,
	}
}

func (uc *CheckEntitlementUseCase) Execute(ctx context.Context, tenantID uint, req Requirement) (*Entitlement, error) {
	sub, err := uc.lifecycle.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, uc.deny(tenantID, apperrors.CodeNoSubscription,
			"no subscription found for this organisation", apperrors.RedirectPlans, http.StatusPaymentRequired)
	}

	if denial := uc.statusDenial(sub); denial != nil {
		return nil, denial
	}

	plan, err := uc.lifecycle.resolvePlan(ctx, sub.PlanID())
	if err != nil {
		return nil, err
	}

	ent := &Entitlement{Subscription: sub, Plan: plan}

	if req.AddsSeat && !plan.IsUnlimited() {
		seats, err := uc.lifecycle.countSeats(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		ent.Seats = seats
		if !plan.CanAddSeat(seats) {
			return nil, uc.deny(tenantID, apperrors.CodeEmployeeLimitReached,
				fmt.Sprintf("your %s plan allows %d employees, upgrade to add more", plan.Name(), plan.MaxEmployees()),
				apperrors.RedirectPlans, http.StatusForbidden)
		}
	}

	if req.Feature != "" && !plan.HasFeature(req.Feature) {
		return nil, uc.deny(tenantID, apperrors.CodeFeatureNotAvailable,
			fmt.Sprintf("%s is not included in your %s plan", req.Feature, plan.Name()),
			apperrors.RedirectPlans, http.StatusForbidden)
	}

	return ent, nil
}

func (uc *CheckEntitlementUseCase) statusDenial(sub *subscription.Subscription) error {
	if sub.Status().CanUseService() {
		return nil
	}
	tenantID := sub.TenantID()
	switch sub.Status() {
	case vo.StatusPastDue:
		return uc.deny(tenantID, apperrors.CodeSubscriptionPastDue,
			"your last billing period has ended, renew to keep access", apperrors.RedirectCheckout, http.StatusPaymentRequired)
	case vo.StatusSuspended:
		return uc.deny(tenantID, apperrors.CodeSubscriptionSuspended,
			"your subscription is suspended for non-payment", apperrors.RedirectCheckout, http.StatusPaymentRequired)
	case vo.StatusExpired:
		if !sub.HasPaidPeriod() {
			return uc.deny(tenantID, apperrors.CodeTrialExpired,
				"your free trial has ended, choose a plan to continue", apperrors.RedirectPlans, http.StatusPaymentRequired)
		}
		return uc.deny(tenantID, apperrors.CodeSubscriptionInactive,
			"your subscription has expired", apperrors.RedirectPlans, http.StatusPaymentRequired)
	default:
		return uc.deny(tenantID, apperrors.CodeSubscriptionInactive,
			"your subscription is no longer active", apperrors.RedirectPlans, http.StatusPaymentRequired)
	}
}

func (uc *CheckEntitlementUseCase) deny(tenantID uint, code, message, redirect string, status int) error {
	uc.lifecycle.metrics.RecordEntitlementDenial(code)
	uc.logger.Debugw("entitlement denied", "tenant_id", tenantID, "code", code)
	return apperrors.NewEntitlementDenied(code, message, redirect, status)
}
