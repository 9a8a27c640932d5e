package valueobjects

import (
	"fmt"
	"strings"
	"time"
)

type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

var ValidBillingCycles = map[BillingCycle]bool{
	BillingCycleMonthly: true,
	BillingCycleYearly:  true,
}

func ParseBillingCycle(value string) (BillingCycle, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "", fmt.Errorf("billing cycle cannot be empty")
	}

	cycle := BillingCycle(normalized)
	if !ValidBillingCycles[cycle] {
		return "", fmt.Errorf("invalid billing cycle: %s", value)
	}
	return cycle, nil
}

func (b BillingCycle) String() string {
	return string(b)
}

func (b BillingCycle) IsValid() bool {
	return ValidBillingCycles[b]
}

// NextBillingDate returns the end of a period that starts at from.
func (b BillingCycle) NextBillingDate(from time.Time) time.Time {
	switch b {
	case BillingCycleMonthly:
		return from.AddDate(0, 1, 0)
	case BillingCycleYearly:
		return from.AddDate(1, 0, 0)
	default:
		return time.Time{}
	}
}
