package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from SubscriptionStatus
		to   SubscriptionStatus
		want bool
	}{
		{StatusTrial, StatusActive, true},
		{StatusTrial, StatusExpired, true},
		{StatusTrial, StatusCancelled, true},
		{StatusTrial, StatusPastDue, false},
		{StatusActive, StatusActive, true},
		{StatusActive, StatusPastDue, true},
		{StatusActive, StatusSuspended, false},
		{StatusActive, StatusExpired, false},
		{StatusPastDue, StatusSuspended, true},
		{StatusPastDue, StatusActive, true},
		{StatusPastDue, StatusTrial, false},
		{StatusSuspended, StatusActive, true},
		{StatusSuspended, StatusPastDue, false},
		{StatusExpired, StatusActive, true},
		{StatusExpired, StatusTrial, false},
		{StatusExpired, StatusCancelled, false},
		{StatusCancelled, StatusActive, true},
		{StatusCancelled, StatusTrial, false},
		{StatusCancelled, StatusPastDue, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTerminalStatusesOnlyLeaveToActive(t *testing.T) {
	for _, terminal := range []SubscriptionStatus{StatusExpired, StatusCancelled} {
		for target := range ValidStatuses {
			allowed := terminal.CanTransitionTo(target)
			assert.Equal(t, target == StatusActive, allowed, "%s -> %s", terminal, target)
		}
	}
}

func TestEveryStatusHasTransitionEntry(t *testing.T) {
	for status := range ValidStatuses {
		_, ok := transitions[status]
		assert.True(t, ok, "missing transition row for %s", status)
	}
}

func TestParseSubscriptionStatus(t *testing.T) {
	s, err := ParseSubscriptionStatus("past_due")
	assert.NoError(t, err)
	assert.Equal(t, StatusPastDue, s)

	_, err = ParseSubscriptionStatus("PAST_DUE")
	assert.Error(t, err)
}

func TestBillingCycle(t *testing.T) {
	cycle, err := ParseBillingCycle(" Yearly ")
	assert.NoError(t, err)
	assert.Equal(t, BillingCycleYearly, cycle)

	_, err = ParseBillingCycle("weekly")
	assert.Error(t, err)
	_, err = ParseBillingCycle("")
	assert.Error(t, err)
}
