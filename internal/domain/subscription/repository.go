package subscription

import (
	"context"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *Subscription) error
	GetByID(ctx context.Context, id uint) (*Subscription, error)
	GetByTenantID(ctx context.Context, tenantID uint) (*Subscription, error)
	// GetByIDForUpdate row-locks the subscription inside the caller's transaction.
	GetByIDForUpdate(ctx context.Context, id uint) (*Subscription, error)
	// Update persists the aggregate if its version is unchanged since it was
	// loaded, returning ErrConcurrentModification otherwise.
	Update(ctx context.Context, subscription *Subscription) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type PlanRepository interface {
	Create(ctx context.Context, plan *Plan) error
	GetByID(ctx context.Context, id uint) (*Plan, error)
	GetBySlug(ctx context.Context, slug string) (*Plan, error)
	Update(ctx context.Context, plan *Plan) error
	ListActive(ctx context.Context) ([]*Plan, error)
	List(ctx context.Context) ([]*Plan, error)
}
