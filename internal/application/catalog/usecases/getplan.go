package usecases

import (
	"context"
	"fmt"
	"strconv"

	"github.com/staffhub/staffhub/internal/application/billing/dto"
	"github.com/staffhub/staffhub/internal/domain/subscription"
	apperrors "github.com/staffhub/staffhub/internal/shared/errors"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

type GetPlanUseCase struct {
	planRepo subscription.PlanRepository
	logger   logger.Interface
}

func NewGetPlanUseCase(planRepo subscription.PlanRepository, logger logger.Interface) *GetPlanUseCase {
	return &GetPlanUseCase{planRepo: planRepo, logger: logger}
}

// Execute accepts either a numeric id or a slug. Inactive plans are hidden
// unless includeInactive is set.
func (uc *GetPlanUseCase) Execute(ctx context.Context, ref string, includeInactive bool) (*dto.PlanDTO, error) {
	plan, err := uc.lookup(ctx, ref)
	if err != nil {
		return nil, err
	}
	if plan == nil || (!plan.IsActive() && !includeInactive) {
		return nil, apperrors.NewNotFoundError("plan not found", ref)
	}
	return dto.ToPlanDTO(plan), nil
}

func (uc *GetPlanUseCase) lookup(ctx context.Context, ref string) (*subscription.Plan, error) {
	if ref == "" {
		return nil, apperrors.NewValidationError("plan id or slug is required")
	}
	var (
		plan *subscription.Plan
		err  error
	)
	if id, perr := strconv.ParseUint(ref, 10, 64); perr == nil {
		plan, err = uc.planRepo.GetByID(ctx, uint(id))
	} else {
		plan, err = uc.planRepo.GetBySlug(ctx, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	return plan, nil
}
