package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/staffhub/staffhub/internal/domain/subscription"
	"github.com/staffhub/staffhub/internal/shared/clock"
	apperrors "github.com/staffhub/staffhub/internal/shared/errors"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

// SubscriptionLockKey names the lock guarding every mutation of one subscription.
func SubscriptionLockKey(subscriptionID uint) string {
	return fmt.Sprintf("subscription:%d", subscriptionID)
}

// Lifecycle brings stored subscriptions up to date with the clock before any
// read or mutation uses them, and serializes mutations per subscription.
type Lifecycle struct {
	subscriptionRepo subscription.SubscriptionRepository
	planRepo         subscription.PlanRepository
	seats            SeatCounter
	locker           Locker
	txManager        TransactionManager
	clock            clock.Clock
	grace            time.Duration
	metrics          Metrics
	logger           logger.Interface
}

func NewLifecycle(
	subscriptionRepo subscription.SubscriptionRepository,
	planRepo subscription.PlanRepository,
	seats SeatCounter,
	locker Locker,
	txManager TransactionManager,
	clk clock.Clock,
	grace time.Duration,
	logger logger.Interface,
) *Lifecycle {
	if grace <= 0 {
		grace = subscription.DefaultGracePeriod
	}
	return &Lifecycle{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		seats:            seats,
		locker:           locker,
		txManager:        txManager,
		clock:            clk,
		grace:            grace,
		metrics:          NopMetrics(),
		logger:           logger,
	}
}

func (l *Lifecycle) SetMetrics(m Metrics) {
	if m != nil {
		l.metrics = m
	}
}

func (l *Lifecycle) Now() time.Time {
	return l.clock.Now()
}

// Load returns the tenant's subscription with every due transition applied
// and persisted. A concurrent writer causes a single reload; if that also
// loses the race the repaired view is returned without being stored, since
// it is fully determined by the clock.
func (l *Lifecycle) Load(ctx context.Context, tenantID uint) (*subscription.Subscription, error) {
	for attempt := 0; ; attempt++ {
		sub, err := l.subscriptionRepo.GetByTenantID(ctx, tenantID)
		if err != nil {
			l.logger.Errorw("failed to load subscription", "tenant_id", tenantID, "error", err)
			return nil, fmt.Errorf("failed to load subscription: %w", err)
		}
		if sub == nil {
			return nil, nil
		}

		changes, changed, err := l.repair(ctx, sub)
		if err != nil {
			return nil, err
		}
		if !changed {
			return sub, nil
		}

		err = l.subscriptionRepo.Update(ctx, sub)
		if err == nil {
			l.recordChanges(sub, changes)
			return sub, nil
		}
		if !errors.Is(err, subscription.ErrConcurrentModification) {
			l.logger.Errorw("failed to persist repaired subscription", "subscription_id", sub.ID(), "error", err)
			return nil, fmt.Errorf("failed to persist subscription: %w", err)
		}
		if attempt > 0 {
			l.logger.Warnw("repaired subscription lost a second write race, serving unsaved view",
				"subscription_id", sub.ID(),
			)
			return sub, nil
		}
	}
}

// mutateFunc changes a locked subscription. It reports whether the
// subscription itself must be written back.
type mutateFunc func(ctx context.Context, sub *subscription.Subscription) (bool, error)

// Mutate locks the subscription, reloads it with a row lock inside a
// transaction, repairs it, runs fn and persists the result atomically.
func (l *Lifecycle) Mutate(ctx context.Context, subscriptionID uint, fn mutateFunc) error {
	release, err := l.locker.Acquire(ctx, SubscriptionLockKey(subscriptionID))
	if err != nil {
		l.logger.Errorw("failed to acquire subscription lock", "subscription_id", subscriptionID, "error", err)
		return apperrors.NewInternalError("subscription is busy, please retry").WithCause(err)
	}
	defer release()

	var (
		sub     *subscription.Subscription
		changes []subscription.StatusChange
	)
	err = l.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		var err error
		sub, err = l.subscriptionRepo.GetByIDForUpdate(txCtx, subscriptionID)
		if err != nil {
			return fmt.Errorf("failed to lock subscription: %w", err)
		}
		if sub == nil {
			return apperrors.NewNotFoundError("subscription not found")
		}

		var repaired bool
		changes, repaired, err = l.repair(txCtx, sub)
		if err != nil {
			return err
		}

		dirty, err := fn(txCtx, sub)
		if err != nil {
			return err
		}
		if !dirty && !repaired {
			return nil
		}
		return l.subscriptionRepo.Update(txCtx, sub)
	})
	if err != nil {
		return err
	}

	l.recordChanges(sub, changes)
	return nil
}

// repair applies due status transitions, then a pending plan change that has
// come due, provided the tenant's current headcount fits the new plan.
func (l *Lifecycle) repair(ctx context.Context, sub *subscription.Subscription) ([]subscription.StatusChange, bool, error) {
	now := l.clock.Now()
	changes := sub.Refresh(now, l.grace)
	changed := len(changes) > 0

	pending := sub.PendingPlanChange()
	if !pending.IsDue(now) {
		return changes, changed, nil
	}

	plan, err := l.planRepo.GetByID(ctx, pending.PlanID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load scheduled plan: %w", err)
	}
	if plan == nil || !plan.IsActive() {
		l.logger.Warnw("scheduled plan is no longer available, keeping current plan",
			"subscription_id", sub.ID(),
			"plan_id", pending.PlanID,
		)
		return changes, changed, nil
	}

	seats, err := l.seats.CountActiveSeats(ctx, sub.TenantID())
	if err != nil {
		return nil, false, fmt.Errorf("failed to count seats: %w", err)
	}
	if !plan.AdmitsSeats(seats) {
		l.logger.Warnw("scheduled downgrade deferred, headcount exceeds plan",
			"subscription_id", sub.ID(),
			"plan_id", plan.ID(),
			"seats", seats,
			"max_employees", plan.MaxEmployees(),
		)
		return changes, changed, nil
	}

	if sub.ApplyPendingPlanChange(now) {
		l.logger.Infow("scheduled plan change applied",
			"subscription_id", sub.ID(),
			"plan_id", plan.ID(),
		)
		changed = true
	}
	return changes, changed, nil
}

func (l *Lifecycle) recordChanges(sub *subscription.Subscription, changes []subscription.StatusChange) {
	for _, c := range changes {
		l.metrics.RecordTransition(c.From.String(), c.To.String())
		l.logger.Infow("subscription status changed",
			"subscription_id", sub.ID(),
			"tenant_id", sub.TenantID(),
			"from", c.From,
			"to", c.To,
		)
	}
}

// resolvePlan loads a plan, mapping absence to a not-found error.
func (l *Lifecycle) resolvePlan(ctx context.Context, planID uint) (*subscription.Plan, error) {
	plan, err := l.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	if plan == nil {
		return nil, apperrors.NewNotFoundError("plan not found")
	}
	return plan, nil
}

func (l *Lifecycle) countSeats(ctx context.Context, tenantID uint) (int, error) {
	seats, err := l.seats.CountActiveSeats(ctx, tenantID)
	if err != nil {
		l.logger.Errorw("failed to count seats", "tenant_id", tenantID, "error", err)
		return 0, fmt.Errorf("failed to count seats: %w", err)
	}
	return seats, nil
}

// requireSubscription loads the tenant's repaired subscription or fails with not found.
func (l *Lifecycle) requireSubscription(ctx context.Context, tenantID uint) (*subscription.Subscription, error) {
	sub, err := l.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperrors.NewNotFoundError("subscription not found")
	}
	return sub, nil
}
