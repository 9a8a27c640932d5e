package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffhub/staffhub/internal/domain/subscription"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

type countingPlanRepo struct {
	plans map[uint]*subscription.Plan
	reads int
}

func (r *countingPlanRepo) Create(_ context.Context, p *subscription.Plan) error {
	if err := p.SetID(uint(len(r.plans) + 1)); err != nil {
		return err
	}
	r.plans[p.ID()] = p
	return nil
}

func (r *countingPlanRepo) GetByID(_ context.Context, id uint) (*subscription.Plan, error) {
	r.reads++
	return r.plans[id], nil
}

func (r *countingPlanRepo) GetBySlug(_ context.Context, slug string) (*subscription.Plan, error) {
	r.reads++
	for _, p := range r.plans {
		if p.Slug() == slug {
			return p, nil
		}
	}
	return nil, nil
}

func (r *countingPlanRepo) Update(_ context.Context, p *subscription.Plan) error {
	r.plans[p.ID()] = p
	return nil
}

func (r *countingPlanRepo) ListActive(ctx context.Context) ([]*subscription.Plan, error) {
	r.reads++
	var out []*subscription.Plan
	for _, p := range r.plans {
		if p.IsActive() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *countingPlanRepo) List(context.Context) ([]*subscription.Plan, error) {
	r.reads++
	out := make([]*subscription.Plan, 0, len(r.plans))
	for _, p := range r.plans {
		out = append(out, p)
	}
	return out, nil
}

func newCachedRepo(t *testing.T) (*CachedPlanRepository, *countingPlanRepo) {
	t.Helper()
	backing := &countingPlanRepo{plans: map[uint]*subscription.Plan{}}
	cached := NewCachedPlanRepository(backing, 8, time.Minute, logger.NewNopLogger())
	plan, err := subscription.NewPlan(subscription.PlanParams{
		Slug: "starter", Name: "Starter", MonthlyPrice: 49900, YearlyPrice: 499000,
		Currency: "INR", MaxEmployees: 25, TrialDays: 14,
	}, time.Now())
	require.NoError(t, err)
	require.NoError(t, cached.Create(context.Background(), plan))
	return cached, backing
}

func TestPlanCacheServesRepeatReads(t *testing.T) {
	cached, backing := newCachedRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		p, err := cached.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "starter", p.Slug())
	}
	p, err := cached.GetBySlug(ctx, "starter")
	require.NoError(t, err)
	assert.Equal(t, uint(1), p.ID())
	assert.Equal(t, 1, backing.reads)

	for i := 0; i < 2; i++ {
		_, err := cached.ListActive(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, backing.reads)
}

func TestPlanCacheReturnsCopies(t *testing.T) {
	cached, _ := newCachedRepo(t)
	ctx := context.Background()

	first, err := cached.GetByID(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, first.Deactivate(time.Now()))

	second, err := cached.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, second.IsActive(), "mutating a hit must not leak into the cache")
}

func TestPlanCachePurgesOnWrite(t *testing.T) {
	cached, backing := newCachedRepo(t)
	ctx := context.Background()

	p, err := cached.GetByID(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, p.Deactivate(time.Now()))
	require.NoError(t, cached.Update(ctx, p))

	active, err := cached.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	reloaded, err := cached.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive())
	assert.Equal(t, 3, backing.reads)
}

func TestPlanCacheDoesNotCacheMisses(t *testing.T) {
	cached, backing := newCachedRepo(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		p, err := cached.GetBySlug(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, p)
	}
	assert.Equal(t, 2, backing.reads)
}
