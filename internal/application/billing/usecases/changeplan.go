package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/staffhub/staffhub/internal/application/billing/dto"
	"github.com/staffhub/staffhub/internal/domain/subscription"
	vo "github.com/staffhub/staffhub/internal/domain/subscription/valueobjects"
	apperrors "github.com/staffhub/staffhub/internal/shared/errors"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

// Plan change outcomes.
const (
	ChangeApplied         = "applied"
	ChangeRequiresPayment = "requires_payment"
	ChangeScheduled       = "scheduled"
)

type ChangePlanCommand struct {
	TenantID     uint
	ActorUserID  uint
	PlanID       uint
	BillingCycle string
}

type ChangePlanUseCase struct {
	sideEffects
	lifecycle *Lifecycle
	logger    logger.Interface
}

func NewChangePlanUseCase(lifecycle *Lifecycle, logger logger.Interface) *ChangePlanUseCase {
	return &ChangePlanUseCase{
		sideEffects: sideEffects{logger: logger},
		lifecycle:   lifecycle,
		logger:      logger,
	}
}

func (uc *ChangePlanUseCase) Execute(ctx context.Context, cmd ChangePlanCommand) (*dto.ChangePlanDTO, error) {
	if cmd.PlanID == 0 {
		return nil, apperrors.NewValidationError("plan id is required")
	}

	sub, err := uc.lifecycle.requireSubscription(ctx, cmd.TenantID)
	if err != nil {
		return nil, err
	}

	cycle, err := parseCycleOr(cmd.BillingCycle, sub.BillingCycle())
	if err != nil {
		return nil, apperrors.NewValidationError("invalid billing cycle", cmd.BillingCycle)
	}

	target, err := uc.lifecycle.resolvePlan(ctx, cmd.PlanID)
	if err != nil {
		return nil, err
	}
	if target.IsCustom() {
		return nil, apperrors.NewValidationError("custom plans are arranged through sales")
	}
	if !target.IsActive() {
		return nil, apperrors.NewValidationError("plan is no longer available")
	}

	seats, err := uc.lifecycle.countSeats(ctx, cmd.TenantID)
	if err != nil {
		return nil, err
	}
	if !target.AdmitsSeats(seats) {
		uc.logger.Infow("plan change rejected, headcount exceeds target plan",
			"tenant_id", cmd.TenantID,
			"plan_id", target.ID(),
			"seats", seats,
			"max_employees", target.MaxEmployees(),
		)
		return nil, apperrors.NewLimitExceededError(
			fmt.Sprintf("%s allows %d employees but you have %d", target.Name(), target.MaxEmployees(), seats),
			"remove employees or choose a larger plan",
		)
	}

	out := &dto.ChangePlanDTO{
		PlanID:       target.ID(),
		BillingCycle: cycle.String(),
	}

	err = uc.lifecycle.Mutate(ctx, sub.ID(), func(txCtx context.Context, s *subscription.Subscription) (bool, error) {
		now := uc.lifecycle.Now()

		switch s.Status() {
		case vo.StatusTrial, vo.StatusActive:
		default:
			out.Result = ChangeRequiresPayment
			return false, nil
		}

		if target.ID() == s.PlanID() && cycle == s.BillingCycle() {
			return false, apperrors.NewValidationError(subscription.ErrSamePlan.Error())
		}

		if s.Status() == vo.StatusTrial {
			if err := s.SwitchTrialPlan(target.ID(), cycle, now); err != nil {
				return false, apperrors.NewStateConflictError("plan cannot be switched").WithCause(err)
			}
			out.Result = ChangeApplied
			out.EffectiveDate = &now
			return true, nil
		}

		current, err := uc.lifecycle.planRepo.GetByID(txCtx, s.PlanID())
		if err != nil {
			return false, fmt.Errorf("failed to load current plan: %w", err)
		}
		if isUpgrade(current, s.BillingCycle(), target, cycle) {
			out.Result = ChangeRequiresPayment
			return false, nil
		}

		pending, err := s.SchedulePlanChange(target.ID(), cycle, now)
		if err != nil {
			if errors.Is(err, subscription.ErrCancellationPending) {
				return false, apperrors.NewStateConflictError("subscription is set to cancel, reactivate it before changing plans")
			}
			return false, apperrors.NewStateConflictError("plan change cannot be scheduled").WithCause(err)
		}
		effective := pending.EffectiveAt
		out.Result = ChangeScheduled
		out.EffectiveDate = &effective
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("plan change processed",
		"tenant_id", cmd.TenantID,
		"subscription_id", sub.ID(),
		"plan_id", target.ID(),
		"billing_cycle", cycle,
		"result", out.Result,
	)
	uc.announce(cmd, target, out)
	return out, nil
}

func (uc *ChangePlanUseCase) announce(cmd ChangePlanCommand, target *subscription.Plan, out *dto.ChangePlanDTO) {
	var (
		kind    NotificationKind
		action  string
		message string
	)
	switch out.Result {
	case ChangeApplied:
		kind, action = NotificationPlanChanged, AuditPlanChanged
		message = fmt.Sprintf("Your trial is now on the %s plan.", target.Name())
	case ChangeScheduled:
		kind, action = NotificationPlanScheduled, AuditPlanChangeScheduled
		message = fmt.Sprintf("Your plan will change to %s on %s.", target.Name(), out.EffectiveDate.Format(time.DateOnly))
	default:
		return
	}

	uc.notify(Notification{
		UserID:   cmd.ActorUserID,
		TenantID: cmd.TenantID,
		Kind:     kind,
		Title:    "Plan change",
		Message:  message,
		Link:     apperrors.RedirectBilling,
	})
	uc.record(AuditEntry{
		ActorUserID: cmd.ActorUserID,
		TenantID:    cmd.TenantID,
		Action:      action,
		EntityType:  "plan",
		EntityID:    target.ID(),
		Description: fmt.Sprintf("%s to %s (%s)", out.Result, target.Slug(), out.BillingCycle),
	})
}
