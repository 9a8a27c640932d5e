package valueobjects

import "time"

// Cancellation records a cancel request. CancelledAt is set once the
// subscription actually reaches the cancelled status.
type Cancellation struct {
	RequestedAt        time.Time
	CancelledAt        *time.Time
	Reason             string
	EffectiveAt        time.Time
	Immediate          bool
	CancelsAtPeriodEnd bool
}
