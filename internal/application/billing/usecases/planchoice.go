package usecases

import (
	"github.com/staffhub/staffhub/internal/domain/subscription"
	vo "github.com/staffhub/staffhub/internal/domain/subscription/valueobjects"
)

// isUpgrade reports whether moving from current/currentCycle to
// target/targetCycle raises the tier. Switching cycle on the same plan counts
// as an upgrade when the new cycle costs more per period.
func isUpgrade(current *subscription.Plan, currentCycle vo.BillingCycle, target *subscription.Plan, targetCycle vo.BillingCycle) bool {
	if current == nil {
		return true
	}
	if current.ID() != target.ID() {
		return target.CompareTier(current) > 0
	}
	currentPrice, err := current.PriceFor(currentCycle)
	if err != nil {
		return true
	}
	targetPrice, err := target.PriceFor(targetCycle)
	if err != nil {
		return false
	}
	return targetPrice > currentPrice
}

// parseCycleOr parses raw, falling back to def when raw is empty.
func parseCycleOr(raw string, def vo.BillingCycle) (vo.BillingCycle, error) {
	if raw == "" {
		return def, nil
	}
	return vo.ParseBillingCycle(raw)
}
