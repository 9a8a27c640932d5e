package valueobjects

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor currency units (paise, cents).
type Money struct {
	minor    int64
	currency string
}

func NewMoney(minor int64, currency string) Money {
	return Money{minor: minor, currency: currency}
}

func (m Money) Minor() int64 {
	return m.minor
}

func (m Money) Currency() string {
	return m.currency
}

// Major returns the amount in major units with two decimal places.
func (m Money) Major() decimal.Decimal {
	return decimal.New(m.minor, -2)
}

func (m Money) IsPositive() bool {
	return m.minor > 0
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Major().StringFixed(2), m.currency)
}
