package usecases

import (
	"context"
	"fmt"
	"reflect"

	"github.com/staffhub/staffhub/internal/domain/subscription"
	"github.com/staffhub/staffhub/internal/shared/clock"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

type SeedResult struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
}

// SeedPlansUseCase upserts catalog entries by slug. Running it twice with the
// same input changes nothing the second time.
type SeedPlansUseCase struct {
	planRepo subscription.PlanRepository
	clock    clock.Clock
	logger   logger.Interface
}

func NewSeedPlansUseCase(planRepo subscription.PlanRepository, clk clock.Clock, logger logger.Interface) *SeedPlansUseCase {
	return &SeedPlansUseCase{planRepo: planRepo, clock: clk, logger: logger}
}

func (uc *SeedPlansUseCase) Execute(ctx context.Context, seeds []subscription.PlanParams) (*SeedResult, error) {
	result := &SeedResult{}
	now := uc.clock.Now()

	for _, params := range seeds {
		existing, err := uc.planRepo.GetBySlug(ctx, params.Slug)
		if err != nil {
			return result, fmt.Errorf("failed to look up plan %s: %w", params.Slug, err)
		}

		if existing == nil {
			plan, err := subscription.NewPlan(params, now)
			if err != nil {
				return result, fmt.Errorf("invalid seed plan %s: %w", params.Slug, err)
			}
			if err := uc.planRepo.Create(ctx, plan); err != nil {
				return result, fmt.Errorf("failed to create plan %s: %w", params.Slug, err)
			}
			result.Created++
			continue
		}

		if reflect.DeepEqual(existing.Params(), params) {
			result.Unchanged++
			continue
		}
		if err := existing.Update(params, now); err != nil {
			return result, fmt.Errorf("invalid seed plan %s: %w", params.Slug, err)
		}
		if err := uc.planRepo.Update(ctx, existing); err != nil {
			return result, fmt.Errorf("failed to update plan %s: %w", params.Slug, err)
		}
		result.Updated++
	}

	uc.logger.Infow("plan catalog seeded",
		"created", result.Created,
		"updated", result.Updated,
		"unchanged", result.Unchanged,
	)
	return result, nil
}
