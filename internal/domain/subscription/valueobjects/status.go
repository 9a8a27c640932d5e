package valueobjects

import "fmt"

// SubscriptionStatus is the closed set of lifecycle states.
type SubscriptionStatus string

const (
	StatusTrial     SubscriptionStatus = "trial"
	StatusActive    SubscriptionStatus = "active"
	StatusPastDue   SubscriptionStatus = "past_due"
	StatusSuspended SubscriptionStatus = "suspended"
	StatusExpired   SubscriptionStatus = "expired"
	StatusCancelled SubscriptionStatus = "cancelled"
)

var ValidStatuses = map[SubscriptionStatus]bool{
	StatusTrial:     true,
	StatusActive:    true,
	StatusPastDue:   true,
	StatusSuspended: true,
	StatusExpired:   true,
	StatusCancelled: true,
}

// transitions lists every permitted status write. Terminal states leave only
// through a captured payment, which always lands in active.
var transitions = map[SubscriptionStatus][]SubscriptionStatus{
	StatusTrial:     {StatusActive, StatusExpired, StatusCancelled},
	StatusActive:    {StatusActive, StatusPastDue, StatusCancelled},
	StatusPastDue:   {StatusActive, StatusSuspended, StatusCancelled},
	StatusSuspended: {StatusActive, StatusCancelled},
	StatusExpired:   {StatusActive},
	StatusCancelled: {StatusActive},
}

func ParseSubscriptionStatus(s string) (SubscriptionStatus, error) {
	status := SubscriptionStatus(s)
	if !ValidStatuses[status] {
		return "", fmt.Errorf("invalid subscription status: %q", s)
	}
	return status, nil
}

func (s SubscriptionStatus) String() string {
	return string(s)
}

func (s SubscriptionStatus) IsValid() bool {
	return ValidStatuses[s]
}

// IsTerminal reports expired and cancelled.
func (s SubscriptionStatus) IsTerminal() bool {
	return s == StatusExpired || s == StatusCancelled
}

// CanUseService reports whether the status grants access at all. Plan limits
// are checked separately.
func (s SubscriptionStatus) CanUseService() bool {
	return s == StatusActive || s == StatusTrial
}

// RequiresPayment reports statuses that only a captured payment can resolve.
func (s SubscriptionStatus) RequiresPayment() bool {
	return s == StatusPastDue || s == StatusSuspended || s.IsTerminal()
}

func (s SubscriptionStatus) CanTransitionTo(target SubscriptionStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}
