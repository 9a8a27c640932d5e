package usecases

import (
	"context"
	"fmt"

	"github.com/staffhub/staffhub/internal/application/billing/dto"
	"github.com/staffhub/staffhub/internal/domain/subscription"
	"github.com/staffhub/staffhub/internal/shared/clock"
	apperrors "github.com/staffhub/staffhub/internal/shared/errors"
	"github.com/staffhub/staffhub/internal/shared/logger"
	"github.com/staffhub/staffhub/internal/shared/utils"
)

// UpdatePlanUseCase edits an existing plan. Slugs cannot be changed, and
// existing subscriptions pick up the new limits on their next check.
type UpdatePlanUseCase struct {
	planRepo subscription.PlanRepository
	clock    clock.Clock
	logger   logger.Interface
}

func NewUpdatePlanUseCase(planRepo subscription.PlanRepository, clk clock.Clock, logger logger.Interface) *UpdatePlanUseCase {
	return &UpdatePlanUseCase{planRepo: planRepo, clock: clk, logger: logger}
}

func (uc *UpdatePlanUseCase) Execute(ctx context.Context, planID uint, in PlanInput) (*dto.PlanDTO, error) {
	plan, err := uc.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	if plan == nil {
		return nil, apperrors.NewNotFoundError("plan not found")
	}

	// The slug is fixed, so an omitted slug in the payload is fine.
	in.Slug = plan.Slug()
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	if err := plan.Update(in.toParams(), uc.clock.Now()); err != nil {
		return nil, apperrors.NewValidationError("invalid plan", err.Error())
	}

	if err := uc.planRepo.Update(ctx, plan); err != nil {
		uc.logger.Errorw("failed to update plan", "plan_id", planID, "error", err)
		return nil, err
	}

	uc.logger.Infow("plan updated", "plan_id", planID, "version", plan.Version())
	return dto.ToPlanDTO(plan), nil
}
