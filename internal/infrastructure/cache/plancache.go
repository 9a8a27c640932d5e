package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/staffhub/staffhub/internal/domain/subscription"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

const (
	defaultPlanCacheSize = 256
	defaultPlanCacheTTL  = 5 * time.Minute
	activePlansKey       = "active"
)

// CachedPlanRepository serves plan reads from an in-process LRU. Plans change
// rarely and every guarded request resolves one, so entries live for a few
// minutes and writes through this repository purge the cache.
//
// Hits are rebuilt into fresh aggregates so callers can mutate what they get.
type CachedPlanRepository struct {
	next   subscription.PlanRepository
	byID   *expirable.LRU[uint, *subscription.Plan]
	bySlug *expirable.LRU[string, uint]
	lists  *expirable.LRU[string, []*subscription.Plan]
	logger logger.Interface
}

func NewCachedPlanRepository(next subscription.PlanRepository, size int, ttl time.Duration, logger logger.Interface) *CachedPlanRepository {
	if size <= 0 {
		size = defaultPlanCacheSize
	}
	if ttl <= 0 {
		ttl = defaultPlanCacheTTL
	}
	return &CachedPlanRepository{
		next:   next,
		byID:   expirable.NewLRU[uint, *subscription.Plan](size, nil, ttl),
		bySlug: expirable.NewLRU[string, uint](size, nil, ttl),
		lists:  expirable.NewLRU[string, []*subscription.Plan](4, nil, ttl),
		logger: logger,
	}
}

func (c *CachedPlanRepository) Create(ctx context.Context, plan *subscription.Plan) error {
	if err := c.next.Create(ctx, plan); err != nil {
		return err
	}
	c.Purge()
	return nil
}

func (c *CachedPlanRepository) Update(ctx context.Context, plan *subscription.Plan) error {
	if err := c.next.Update(ctx, plan); err != nil {
		return err
	}
	c.Purge()
	return nil
}

func (c *CachedPlanRepository) GetByID(ctx context.Context, id uint) (*subscription.Plan, error) {
	if plan, ok := c.byID.Get(id); ok {
		return clonePlan(plan)
	}

	plan, err := c.next.GetByID(ctx, id)
	if err != nil || plan == nil {
		return plan, err
	}
	c.store(plan)
	return clonePlan(plan)
}

func (c *CachedPlanRepository) GetBySlug(ctx context.Context, slug string) (*subscription.Plan, error) {
	if id, ok := c.bySlug.Get(slug); ok {
		return c.GetByID(ctx, id)
	}

	plan, err := c.next.GetBySlug(ctx, slug)
	if err != nil || plan == nil {
		return plan, err
	}
	c.store(plan)
	return clonePlan(plan)
}

func (c *CachedPlanRepository) ListActive(ctx context.Context) ([]*subscription.Plan, error) {
	if plans, ok := c.lists.Get(activePlansKey); ok {
		return clonePlans(plans)
	}

	plans, err := c.next.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	c.lists.Add(activePlansKey, plans)
	return clonePlans(plans)
}

// List is used by administration only and is never cached.
func (c *CachedPlanRepository) List(ctx context.Context) ([]*subscription.Plan, error) {
	return c.next.List(ctx)
}

// Purge drops every cached entry.
func (c *CachedPlanRepository) Purge() {
	c.byID.Purge()
	c.bySlug.Purge()
	c.lists.Purge()
	c.logger.Debugw("plan cache purged")
}

func (c *CachedPlanRepository) store(plan *subscription.Plan) {
	c.byID.Add(plan.ID(), plan)
	c.bySlug.Add(plan.Slug(), plan.ID())
}

func clonePlan(p *subscription.Plan) (*subscription.Plan, error) {
	clone, err := subscription.ReconstructPlan(p.ID(), p.Params(), p.IsActive(), p.Version(), p.CreatedAt(), p.UpdatedAt())
	if err != nil {
		return nil, fmt.Errorf("failed to copy cached plan: %w", err)
	}
	return clone, nil
}

func clonePlans(plans []*subscription.Plan) ([]*subscription.Plan, error) {
	out := make([]*subscription.Plan, 0, len(plans))
	for _, p := range plans {
		clone, err := clonePlan(p)
		if err != nil {
			return nil, err
		}
		out = append(out, clone)
	}
	return out, nil
}
