package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/staffhub/staffhub/internal/application/billing/dto"
	"github.com/staffhub/staffhub/internal/domain/subscription"
	"github.com/staffhub/staffhub/internal/shared/clock"
	apperrors "github.com/staffhub/staffhub/internal/shared/errors"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

// DeactivatePlanUseCase withdraws a plan from sale. Tenants already on it keep it.
type DeactivatePlanUseCase struct {
	planRepo subscription.PlanRepository
	clock    clock.Clock
	logger   logger.Interface
}

func NewDeactivatePlanUseCase(planRepo subscription.PlanRepository, clk clock.Clock, logger logger.Interface) *DeactivatePlanUseCase {
	return &DeactivatePlanUseCase{planRepo: planRepo, clock: clk, logger: logger}
}

func (uc *DeactivatePlanUseCase) Execute(ctx context.Context, planID uint) (*dto.PlanDTO, error) {
	plan, err := uc.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	if plan == nil {
		return nil, apperrors.NewNotFoundError("plan not found")
	}

	if err := plan.Deactivate(uc.clock.Now()); err != nil {
		if errors.Is(err, subscription.ErrPlanInactive) {
			return dto.ToPlanDTO(plan), nil
		}
		return nil, err
	}
	if err := uc.planRepo.Update(ctx, plan); err != nil {
		uc.logger.Errorw("failed to deactivate plan", "plan_id", planID, "error", err)
		return nil, err
	}

	uc.logger.Infow("plan deactivated", "plan_id", planID, "slug", plan.Slug())
	return dto.ToPlanDTO(plan), nil
}
