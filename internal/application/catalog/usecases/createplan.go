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
	"github.com/staffhub/staffhub/internal/shared/utils"
)

type CreatePlanUseCase struct {
	planRepo subscription.PlanRepository
	clock    clock.Clock
	logger   logger.Interface
}

func NewCreatePlanUseCase(planRepo subscription.PlanRepository, clk clock.Clock, logger logger.Interface) *CreatePlanUseCase {
	return &CreatePlanUseCase{planRepo: planRepo, clock: clk, logger: logger}
}

func (uc *CreatePlanUseCase) Execute(ctx context.Context, in PlanInput) (*dto.PlanDTO, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	plan, err := subscription.NewPlan(in.toParams(), uc.clock.Now())
	if err != nil {
		return nil, apperrors.NewValidationError("invalid plan", err.Error())
	}

	if err := uc.planRepo.Create(ctx, plan); err != nil {
		if errors.Is(err, subscription.ErrPlanSlugExists) {
			return nil, apperrors.NewConflictError("plan slug already exists", plan.Slug())
		}
		uc.logger.Errorw("failed to create plan", "slug", plan.Slug(), "error", err)
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}

	uc.logger.Infow("plan created", "plan_id", plan.ID(), "slug", plan.Slug())
	return dto.ToPlanDTO(plan), nil
}
