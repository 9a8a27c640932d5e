package handlers

import (
	"context"

	"github.com/staffhub/staffhub/internal/application/billing/dto"
	catalog "github.com/staffhub/staffhub/internal/application/catalog/usecases"
)

// Use case interfaces for PlanHandler

type listPlansUseCase interface {
	Execute(ctx context.Context, includeInactive bool) ([]*dto.PlanDTO, error)
}

type getPlanUseCase interface {
	Execute(ctx context.Context, ref string, includeInactive bool) (*dto.PlanDTO, error)
}

type createPlanUseCase interface {
	Execute(ctx context.Context, in catalog.PlanInput) (*dto.PlanDTO, error)
}

type updatePlanUseCase interface {
	Execute(ctx context.Context, planID uint, in catalog.PlanInput) (*dto.PlanDTO, error)
}

type deactivatePlanUseCase interface {
	Execute(ctx context.Context, planID uint) (*dto.PlanDTO, error)
}
