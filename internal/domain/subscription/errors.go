package subscription

import (
	"errors"
	"fmt"
)

var (
	ErrSubscriptionExists      = errors.New("tenant already has a subscription")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrConcurrentModification  = errors.New("subscription was modified concurrently")
	ErrPlanInactive            = errors.New("plan inactive")
	ErrPlanSlugExists          = errors.New("plan slug already exists")
	ErrInvalidBillingCycle     = errors.New("invalid billing cycle")
	ErrInvalidPrice            = errors.New("invalid price")
	ErrNotCancellable          = errors.New("subscription cannot be cancelled")
	ErrSamePlan                = errors.New("subscription is already on this plan and cycle")
	ErrCancellationPending     = errors.New("subscription is scheduled to cancel at period end")
)

func ErrInvalidTransition(from, to string) error {
	return fmt.Errorf("%w: from %s to %s", ErrInvalidStatusTransition, from, to)
}
