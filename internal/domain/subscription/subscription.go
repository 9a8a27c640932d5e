package subscription

import (
	"fmt"
	"time"

	vo "github.com/staffhub/staffhub/internal/domain/subscription/valueobjects"
	"github.com/staffhub/staffhub/internal/shared/clock"
)

// DefaultGracePeriod is how long a lapsed paid period stays past_due before suspension.
const DefaultGracePeriod = 3 * 24 * time.Hour

// Subscription is the per-tenant aggregate root. Status and period fields are
// only changed through its methods, each of which consults the transition table.
type Subscription struct {
	id                 uint
	tenantID           uint
	planID             uint
	status             vo.SubscriptionStatus
	billingCycle       vo.BillingCycle
	trialStart         *time.Time
	trialEnd           *time.Time
	currentPeriodStart *time.Time
	currentPeriodEnd   *time.Time
	autoRenew          bool
	cancellation       *vo.Cancellation
	pendingChange      *vo.PendingPlanChange
	version            int
	createdAt          time.Time
	updatedAt          time.Time
}

// StatusChange describes one applied transition.
type StatusChange struct {
	From vo.SubscriptionStatus
	To   vo.SubscriptionStatus
}

// Period is a half-open billing interval [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

// CaptureTerms describes what a captured payment bought.
type CaptureTerms struct {
	PlanID       uint
	BillingCycle vo.BillingCycle
	// ExtendCurrent continues an active period from its end instead of starting fresh.
	ExtendCurrent bool
}

// ReactivateResult is the outcome of a reactivation request.
type ReactivateResult string

const (
	ReactivateSuccess         ReactivateResult = "success"
	ReactivateRequiresPayment ReactivateResult = "requires_payment"
)

// Snapshot is the persisted form used to rebuild the aggregate.
type Snapshot struct {
	ID                 uint
	TenantID           uint
	PlanID             uint
	Status             vo.SubscriptionStatus
	BillingCycle       vo.BillingCycle
	TrialStart         *time.Time
	TrialEnd           *time.Time
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	AutoRenew          bool
	Cancellation       *vo.Cancellation
	PendingChange      *vo.PendingPlanChange
	Version            int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewTrialSubscription starts a tenant on plan with trial_end = now + trial days.
func NewTrialSubscription(tenantID uint, plan *Plan, cycle vo.BillingCycle, now time.Time) (*Subscription, error) {
	if tenantID == 0 {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if plan == nil || plan.ID() == 0 {
		return nil, fmt.Errorf("plan is required")
	}
	if !plan.IsActive() {
		return nil, ErrPlanInactive
	}
	if !cycle.IsValid() {
		return nil, ErrInvalidBillingCycle
	}

	trialStart := now
	trialEnd := now.Add(clock.Days(plan.TrialDays()))
	return &Subscription{
		tenantID:     tenantID,
		planID:       plan.ID(),
		status:       vo.StatusTrial,
		billingCycle: cycle,
		trialStart:   &trialStart,
		trialEnd:     &trialEnd,
		autoRenew:    true,
		version:      1,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

func ReconstructSubscription(s Snapshot) (*Subscription, error) {
	if s.ID == 0 {
		return nil, fmt.Errorf("subscription ID cannot be zero")
	}
	if s.TenantID == 0 {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if !s.Status.IsValid() {
		return nil, fmt.Errorf("invalid subscription status: %s", s.Status)
	}
	if !s.BillingCycle.IsValid() {
		return nil, ErrInvalidBillingCycle
	}

	return &Subscription{
		id:                 s.ID,
		tenantID:           s.TenantID,
		planID:             s.PlanID,
		status:             s.Status,
		billingCycle:       s.BillingCycle,
		trialStart:         s.TrialStart,
		trialEnd:           s.TrialEnd,
		currentPeriodStart: s.CurrentPeriodStart,
		currentPeriodEnd:   s.CurrentPeriodEnd,
		autoRenew:          s.AutoRenew,
		cancellation:       s.Cancellation,
		pendingChange:      s.PendingChange,
		version:            s.Version,
		createdAt:          s.CreatedAt,
		updatedAt:          s.UpdatedAt,
	}, nil
}

// Snapshot exports the aggregate state for persistence.
func (s *Subscription) Snapshot() Snapshot {
	return Snapshot{
		ID:                 s.id,
		TenantID:           s.tenantID,
		PlanID:             s.planID,
		Status:             s.status,
		BillingCycle:       s.billingCycle,
		TrialStart:         s.trialStart,
		TrialEnd:           s.trialEnd,
		CurrentPeriodStart: s.currentPeriodStart,
		CurrentPeriodEnd:   s.currentPeriodEnd,
		AutoRenew:          s.autoRenew,
		Cancellation:       s.cancellation,
		PendingChange:      s.pendingChange,
		Version:            s.version,
		CreatedAt:          s.createdAt,
		UpdatedAt:          s.updatedAt,
	}
}

func (s *Subscription) ID() uint { return s.id }
func (s *Subscription) TenantID() uint { return s.tenantID }
func (s *Subscription) PlanID() uint { return s.planID }
func (s *Subscription) Status() vo.SubscriptionStatus { return s.status }
func (s *Subscription) BillingCycle() vo.BillingCycle { return s.billingCycle }
func (s *Subscription) TrialStart() *time.Time { return s.trialStart }
func (s *Subscription) TrialEnd() *time.Time { return s.trialEnd }
func (s *Subscription) CurrentPeriodStart() *time.Time { return s.currentPeriodStart }
func (s *Subscription) CurrentPeriodEnd() *time.Time { return s.currentPeriodEnd }
func (s *Subscription) AutoRenew() bool { return s.autoRenew }
func (s *Subscription) Cancellation() *vo.Cancellation { return s.cancellation }
func (s *Subscription) PendingPlanChange() *vo.PendingPlanChange { return s.pendingChange }
func (s *Subscription) Version() int { return s.version }
func (s *Subscription) CreatedAt() time.Time { return s.createdAt }
func (s *Subscription) UpdatedAt() time.Time { return s.updatedAt }

func (s *Subscription) SetID(id uint) error {
	if s.id != 0 {
		return fmt.Errorf("subscription ID already set")
	}
	if id == 0 {
		return fmt.Errorf("subscription ID cannot be zero")
	}
	s.id = id
	return nil
}

// SetVersion is called by the repository after a successful optimistic write.
func (s *Subscription) SetVersion(v int) {
	s.version = v
}

// HasPaidPeriod reports whether the subscription was ever activated by a payment.
func (s *Subscription) HasPaidPeriod() bool {
	return s.currentPeriodEnd != nil
}

// CancelsAtPeriodEnd reports a scheduled, not yet effective, cancellation.
func (s *Subscription) CancelsAtPeriodEnd() bool {
	return s.cancellation != nil && s.cancellation.CancelsAtPeriodEnd
}

// DaysRemaining counts whole days left in the trial or the paid period.
func (s *Subscription) DaysRemaining(now time.Time) int {
	switch s.status {
	case vo.StatusTrial:
		if s.trialEnd != nil {
			return clock.DaysUntil(now, *s.trialEnd)
		}
	case vo.StatusActive:
		if s.currentPeriodEnd != nil {
			return clock.DaysUntil(now, *s.currentPeriodEnd)
		}
	}
	return 0
}

func (s *Subscription) transition(to vo.SubscriptionStatus, now time.Time) (StatusChange, error) {
	from := s.status
	if !from.CanTransitionTo(to) {
		return StatusChange{}, ErrInvalidTransition(from.String(), to.String())
	}
	s.status = to
	s.updatedAt = now
	return StatusChange{From: from, To: to}, nil
}

// Refresh applies every time-driven transition that is due at now and returns
// them in order. An empty result means the stored state is already current.
func (s *Subscription) Refresh(now time.Time, grace time.Duration) []StatusChange {
	var changes []StatusChange
	for {
		next, ok := s.dueTransition(now, grace)
		if !ok {
			return changes
		}
		change, err := s.transition(next, now)
		if err != nil {
			// dueTransition only proposes table-permitted moves
			return changes
		}
		if next == vo.StatusCancelled && s.cancellation != nil {
			at := *s.currentPeriodEnd
			s.cancellation.CancelledAt = &at
			s.cancellation.CancelsAtPeriodEnd = false
		}
		changes = append(changes, change)
	}
}

func (s *Subscription) dueTransition(now time.Time, grace time.Duration) (vo.SubscriptionStatus, bool) {
	switch s.status {
	case vo.StatusTrial:
		if s.trialEnd != nil && now.After(*s.trialEnd) {
			return vo.StatusExpired, true
		}
	case vo.StatusActive:
		if s.currentPeriodEnd != nil && now.After(*s.currentPeriodEnd) {
			if s.CancelsAtPeriodEnd() {
				return vo.StatusCancelled, true
			}
			return vo.StatusPastDue, true
		}
	case vo.StatusPastDue:
		if s.currentPeriodEnd != nil && now.After(s.currentPeriodEnd.Add(grace)) {
			return vo.StatusSuspended, true
		}
	}
	return "", false
}

// ApplyCapturedPayment moves the subscription to active for the purchased plan
// and returns the period the payment pays for.
//
// An active renewal extends from the current period end. A past_due
// subscription is charged from its old period end, so the grace days are part
// of the new period. Every other case starts a fresh period at now.
func (s *Subscription) ApplyCapturedPayment(terms CaptureTerms, now time.Time) (Period, StatusChange, error) {
	if terms.PlanID == 0 {
		return Period{}, StatusChange{}, fmt.Errorf("plan ID is required")
	}
	if !terms.BillingCycle.IsValid() {
		return Period{}, StatusChange{}, ErrInvalidBillingCycle
	}

	start := now
	extend := false
	switch s.status {
	case vo.StatusActive:
		if terms.ExtendCurrent && s.currentPeriodEnd != nil && s.currentPeriodEnd.After(now) {
			start = *s.currentPeriodEnd
			extend = true
		}
	case vo.StatusPastDue:
		if s.currentPeriodEnd != nil {
			start = *s.currentPeriodEnd
		}
	}

	change, err := s.transition(vo.StatusActive, now)
	if err != nil {
		return Period{}, StatusChange{}, err
	}

	end := terms.BillingCycle.NextBillingDate(start)
	if !extend {
		periodStart := start
		s.currentPeriodStart = &periodStart
	}
	s.currentPeriodEnd = &end
	s.planID = terms.PlanID
	s.billingCycle = terms.BillingCycle
	s.autoRenew = true
	s.cancellation = nil
	s.pendingChange = nil

	return Period{Start: start, End: end}, change, nil
}

// Cancel either ends the subscription now or schedules it for the period end.
// Trials and lapsed subscriptions have no paid time left, so they always cancel now.
func (s *Subscription) Cancel(reason string, immediate bool, now time.Time) (*StatusChange, error) {
	if s.status.IsTerminal() {
		return nil, ErrNotCancellable
	}
	if s.CancelsAtPeriodEnd() && !immediate {
		return nil, nil
	}

	c := &vo.Cancellation{
		RequestedAt: now,
		Reason:      reason,
		Immediate:   immediate,
	}

	s.autoRenew = false
	s.pendingChange = nil

	if immediate || s.status != vo.StatusActive || s.currentPeriodEnd == nil {
		change, err := s.transition(vo.StatusCancelled, now)
		if err != nil {
			return nil, err
		}
		cancelledAt := now
		c.CancelledAt = &cancelledAt
		c.EffectiveAt = now
		s.cancellation = c
		return &change, nil
	}

	c.CancelsAtPeriodEnd = true
	c.EffectiveAt = *s.currentPeriodEnd
	s.cancellation = c
	s.updatedAt = now
	return nil, nil
}

// Reactivate withdraws a scheduled cancellation while paid time remains.
// Anything that has already lapsed needs a new payment.
func (s *Subscription) Reactivate(now time.Time) ReactivateResult {
	if s.status.RequiresPayment() {
		return ReactivateRequiresPayment
	}
	if s.CancelsAtPeriodEnd() && s.currentPeriodEnd != nil && now.Before(*s.currentPeriodEnd) {
		s.cancellation = nil
		s.autoRenew = true
		s.updatedAt = now
	}
	return ReactivateSuccess
}

// SwitchTrialPlan moves a trial to another plan without touching the trial window.
func (s *Subscription) SwitchTrialPlan(planID uint, cycle vo.BillingCycle, now time.Time) error {
	if s.status != vo.StatusTrial {
		return ErrInvalidTransition(s.status.String(), s.status.String())
	}
	if !cycle.IsValid() {
		return ErrInvalidBillingCycle
	}
	s.planID = planID
	s.billingCycle = cycle
	s.updatedAt = now
	return nil
}

// SchedulePlanChange records a downgrade effective at the current period end.
func (s *Subscription) SchedulePlanChange(planID uint, cycle vo.BillingCycle, now time.Time) (*vo.PendingPlanChange, error) {
	if s.status != vo.StatusActive || s.currentPeriodEnd == nil {
		return nil, ErrInvalidTransition(s.status.String(), s.status.String())
	}
	if s.CancelsAtPeriodEnd() {
		return nil, ErrCancellationPending
	}
	if !cycle.IsValid() {
		return nil, ErrInvalidBillingCycle
	}

	s.pendingChange = &vo.PendingPlanChange{
		PlanID:       planID,
		BillingCycle: cycle,
		EffectiveAt:  *s.currentPeriodEnd,
		RequestedAt:  now,
	}
	s.updatedAt = now
	return s.pendingChange, nil
}

// ApplyPendingPlanChange switches to the scheduled plan once it is due.
func (s *Subscription) ApplyPendingPlanChange(now time.Time) bool {
	if !s.pendingChange.IsDue(now) {
		return false
	}
	s.planID = s.pendingChange.PlanID
	s.billingCycle = s.pendingChange.BillingCycle
	s.pendingChange = nil
	s.updatedAt = now
	return true
}
