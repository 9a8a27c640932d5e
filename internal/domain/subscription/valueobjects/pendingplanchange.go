package valueobjects

import "time"

// PendingPlanChange is a downgrade that waits for the current period to end.
type PendingPlanChange struct {
	PlanID       uint
	BillingCycle BillingCycle
	EffectiveAt  time.Time
	RequestedAt  time.Time
}

// IsDue reports whether the change should be applied at now.
func (p *PendingPlanChange) IsDue(now time.Time) bool {
	return p != nil && !now.Before(p.EffectiveAt)
}
