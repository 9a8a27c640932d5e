package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/staffhub/staffhub/internal/application/billing/dto"
	"github.com/staffhub/staffhub/internal/domain/subscription"
	vo "github.com/staffhub/staffhub/internal/domain/subscription/valueobjects"
	apperrors "github.com/staffhub/staffhub/internal/shared/errors"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

type RegisterTrialCommand struct {
	TenantID uint
	// PlanID wins over PlanSlug when both are set.
	PlanID       uint
	PlanSlug     string
	BillingCycle string
}

type RegisterTrialResult struct {
	Subscription *dto.SubscriptionDTO
	Created      bool
}

// RegisterTrialUseCase starts the trial for a newly registered tenant.
// Repeating the call returns the existing subscription.
type RegisterTrialUseCase struct {
	sideEffects
	subscriptionRepo subscription.SubscriptionRepository
	planRepo         subscription.PlanRepository
	lifecycle        *Lifecycle
	logger           logger.Interface
}

func NewRegisterTrialUseCase(
	subscriptionRepo subscription.SubscriptionRepository,
	planRepo subscription.PlanRepository,
	lifecycle *Lifecycle,
	logger logger.Interface,
) *RegisterTrialUseCase {
	return &RegisterTrialUseCase{
		sideEffects:      sideEffects{logger: logger},
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		lifecycle:        lifecycle,
		logger:           logger,
	}
}

func (uc *RegisterTrialUseCase) Execute(ctx context.Context, cmd RegisterTrialCommand) (*RegisterTrialResult, error) {
	if cmd.TenantID == 0 {
		return nil, apperrors.NewValidationError("tenant id is required")
	}
	cycle, err := parseCycleOr(cmd.BillingCycle, vo.BillingCycleMonthly)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid billing cycle", cmd.BillingCycle)
	}

	existing, err := uc.subscriptionRepo.GetByTenantID(ctx, cmd.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing subscription: %w", err)
	}
	if existing != nil {
		return &RegisterTrialResult{Subscription: dto.ToSubscriptionDTO(existing)}, nil
	}

	plan, err := uc.findPlan(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if !plan.IsPurchasable() {
		return nil, apperrors.NewValidationError("plan is not available for trials")
	}

	sub, err := subscription.NewTrialSubscription(cmd.TenantID, plan, cycle, uc.lifecycle.Now())
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := uc.subscriptionRepo.Create(ctx, sub); err != nil {
		if errors.Is(err, subscription.ErrSubscriptionExists) {
			winner, gerr := uc.subscriptionRepo.GetByTenantID(ctx, cmd.TenantID)
			if gerr != nil || winner == nil {
				return nil, fmt.Errorf("failed to load concurrently created subscription: %w", err)
			}
			return &RegisterTrialResult{Subscription: dto.ToSubscriptionDTO(winner)}, nil
		}
		uc.logger.Errorw("failed to create trial subscription", "tenant_id", cmd.TenantID, "error", err)
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	uc.logger.Infow("trial started",
		"tenant_id", cmd.TenantID,
		"subscription_id", sub.ID(),
		"plan", plan.Slug(),
		"trial_end", sub.TrialEnd(),
	)
	uc.record(AuditEntry{
		TenantID:    cmd.TenantID,
		Action:      AuditTrialStarted,
		EntityType:  "subscription",
		EntityID:    sub.ID(),
		Description: fmt.Sprintf("%d-day trial on %s", plan.TrialDays(), plan.Slug()),
	})

	return &RegisterTrialResult{Subscription: dto.ToSubscriptionDTO(sub), Created: true}, nil
}

func (uc *RegisterTrialUseCase) findPlan(ctx context.Context, cmd RegisterTrialCommand) (*subscription.Plan, error) {
	switch {
	case cmd.PlanID != 0:
		return uc.lifecycle.resolvePlan(ctx, cmd.PlanID)
	case cmd.PlanSlug != "":
		plan, err := uc.planRepo.GetBySlug(ctx, cmd.PlanSlug)
		if err != nil {
			return nil, fmt.Errorf("failed to load plan: %w", err)
		}
		if plan == nil {
			return nil, apperrors.NewNotFoundError("plan not found", cmd.PlanSlug)
		}
		return plan, nil
	default:
		return nil, apperrors.NewValidationError("plan id or slug is required")
	}
}
