package usecases

import (
	"context"
	"fmt"

	"github.com/staffhub/staffhub/internal/application/billing/dto"
	"github.com/staffhub/staffhub/internal/domain/subscription"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

// ListPlansUseCase returns the catalog. Public callers only see active plans.
type ListPlansUseCase struct {
	planRepo subscription.PlanRepository
	logger   logger.Interface
}

func NewListPlansUseCase(planRepo subscription.PlanRepository, logger logger.Interface) *ListPlansUseCase {
	return &ListPlansUseCase{planRepo: planRepo, logger: logger}
}

func (uc *ListPlansUseCase) Execute(ctx context.Context, includeInactive bool) ([]*dto.PlanDTO, error) {
	var (
		plans []*subscription.Plan
		err   error
	)
	if includeInactive {
		plans, err = uc.planRepo.List(ctx)
	} else {
		plans, err = uc.planRepo.ListActive(ctx)
	}
	if err != nil {
		uc.logger.Errorw("failed to list plans", "include_inactive", includeInactive, "error", err)
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return dto.ToPlanDTOList(plans), nil
}
