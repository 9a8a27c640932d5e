package subscription

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	vo "github.com/staffhub/staffhub/internal/domain/subscription/valueobjects"
)

// UnlimitedEmployees is the ceiling sentinel that disables seat checks.
const UnlimitedEmployees = -1

var (
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	validCurrencies = map[string]bool{
		"INR": true,
		"USD": true,
		"EUR": true,
		"GBP": true,
	}
)

// PlanParams carries the editable attributes of a plan.
type PlanParams struct {
	Slug         string
	Name         string
	Description  string
	MonthlyPrice int64
	YearlyPrice  int64
	Currency     string
	MaxEmployees int
	TrialDays    int
	Features     vo.PlanFeatures
	IsCustom     bool
	SortOrder    int
}

func (p PlanParams) validate() error {
	if p.Name == "" {
		return fmt.Errorf("plan name is required")
	}
	if len(p.Name) > 100 {
		return fmt.Errorf("plan name too long (max 100 characters)")
	}
	if !slugPattern.MatchString(p.Slug) {
		return fmt.Errorf("invalid plan slug: %q", p.Slug)
	}
	if !validCurrencies[p.Currency] {
		return fmt.Errorf("invalid currency code: %s", p.Currency)
	}
	if p.MonthlyPrice < 0 || p.YearlyPrice < 0 {
		return ErrInvalidPrice
	}
	if !p.IsCustom && (p.MonthlyPrice == 0 || p.YearlyPrice == 0) {
		return fmt.Errorf("%w: purchasable plans need monthly and yearly prices", ErrInvalidPrice)
	}
	if p.MaxEmployees < UnlimitedEmployees || p.MaxEmployees == 0 {
		return fmt.Errorf("max employees must be positive or %d for unlimited", UnlimitedEmployees)
	}
	if p.TrialDays < 0 {
		return fmt.Errorf("trial days cannot be negative")
	}
	return nil
}

// Plan is a purchasable tier. Plans are deactivated, never deleted.
type Plan struct {
	id           uint
	slug         string
	name         string
	description  string
	monthlyPrice int64
	yearlyPrice  int64
	currency     string
	maxEmployees int
	trialDays    int
	features     vo.PlanFeatures
	isCustom     bool
	isActive     bool
	sortOrder    int
	version      int
	createdAt    time.Time
	updatedAt    time.Time
}

func NewPlan(params PlanParams, now time.Time) (*Plan, error) {
	params.Currency = strings.ToUpper(params.Currency)
	if err := params.validate(); err != nil {
		return nil, err
	}

	p := &Plan{
		isActive:  true,
		version:   1,
		createdAt: now,
	}
	p.apply(params, now)
	return p, nil
}

func ReconstructPlan(id uint, params PlanParams, isActive bool, version int, createdAt, updatedAt time.Time) (*Plan, error) {
	if id == 0 {
		return nil, fmt.Errorf("plan ID cannot be zero")
	}

	p := &Plan{
		id:        id,
		isActive:  isActive,
		version:   version,
		createdAt: createdAt,
	}
	p.apply(params, updatedAt)
	return p, nil
}

func (p *Plan) apply(params PlanParams, now time.Time) {
	p.slug = params.Slug
	p.name = params.Name
	p.description = params.Description
	p.monthlyPrice = params.MonthlyPrice
	p.yearlyPrice = params.YearlyPrice
	p.currency = params.Currency
	p.maxEmployees = params.MaxEmployees
	p.trialDays = params.TrialDays
	p.features = params.Features
	p.isCustom = params.IsCustom
	p.sortOrder = params.SortOrder
	p.updatedAt = now
}

// Update replaces the editable attributes. The slug is immutable.
func (p *Plan) Update(params PlanParams, now time.Time) error {
	params.Slug = p.slug
	params.Currency = strings.ToUpper(params.Currency)
	if err := params.validate(); err != nil {
		return err
	}
	p.apply(params, now)
	p.version++
	return nil
}

func (p *Plan) Deactivate(now time.Time) error {
	if !p.isActive {
		return ErrPlanInactive
	}
	p.isActive = false
	p.updatedAt = now
	p.version++
	return nil
}

func (p *Plan) ID() uint { return p.id }

func (p *Plan) SetID(id uint) error {
	if p.id != 0 {
		return fmt.Errorf("plan ID already set")
	}
	if id == 0 {
		return fmt.Errorf("plan ID cannot be zero")
	}
	p.id = id
	return nil
}

func (p *Plan) Slug() string { return p.slug }
func (p *Plan) Name() string { return p.name }
func (p *Plan) Description() string { return p.description }
func (p *Plan) MonthlyPrice() int64 { return p.monthlyPrice }
func (p *Plan) YearlyPrice() int64 { return p.yearlyPrice }
func (p *Plan) Currency() string { return p.currency }
func (p *Plan) MaxEmployees() int { return p.maxEmployees }
func (p *Plan) TrialDays() int { return p.trialDays }
func (p *Plan) Features() vo.PlanFeatures { return p.features }
func (p *Plan) IsCustom() bool { return p.isCustom }
func (p *Plan) IsActive() bool { return p.isActive }
func (p *Plan) SortOrder() int { return p.sortOrder }
func (p *Plan) Version() int { return p.version }
func (p *Plan) CreatedAt() time.Time { return p.createdAt }
func (p *Plan) UpdatedAt() time.Time { return p.updatedAt }
func (p *Plan) HasFeature(name string) bool { return p.features.HasFeature(name) }

// Params returns the editable attributes, for round-tripping through persistence.
func (p *Plan) Params() PlanParams {
	return PlanParams{
		Slug:         p.slug,
		Name:         p.name,
		Description:  p.description,
		MonthlyPrice: p.monthlyPrice,
		YearlyPrice:  p.yearlyPrice,
		Currency:     p.currency,
		MaxEmployees: p.maxEmployees,
		TrialDays:    p.trialDays,
		Features:     p.features,
		IsCustom:     p.isCustom,
		SortOrder:    p.sortOrder,
	}
}

func (p *Plan) IsUnlimited() bool {
	return p.maxEmployees == UnlimitedEmployees
}

// AdmitsSeats reports whether seats employees fit under the ceiling.
func (p *Plan) AdmitsSeats(seats int) bool {
	return p.IsUnlimited() || seats <= p.maxEmployees
}

// CanAddSeat reports whether one more employee fits.
func (p *Plan) CanAddSeat(current int) bool {
	return p.IsUnlimited() || current < p.maxEmployees
}

// PriceFor returns the price in minor units for one period of cycle.
func (p *Plan) PriceFor(cycle vo.BillingCycle) (int64, error) {
	switch cycle {
	case vo.BillingCycleMonthly:
		return p.monthlyPrice, nil
	case vo.BillingCycleYearly:
		return p.yearlyPrice, nil
	default:
		return 0, ErrInvalidBillingCycle
	}
}

// IsPurchasable reports whether the plan can be bought through self-service checkout.
func (p *Plan) IsPurchasable() bool {
	return p.isActive && !p.isCustom
}

// CompareTier orders plans by sort order, breaking ties by monthly price.
// It returns -1 when p is a lower tier than other, 1 when higher, 0 when equal.
func (p *Plan) CompareTier(other *Plan) int {
	switch {
	case p.sortOrder < other.sortOrder:
		return -1
	case p.sortOrder > other.sortOrder:
		return 1
	case p.monthlyPrice < other.monthlyPrice:
		return -1
	case p.monthlyPrice > other.monthlyPrice:
		return 1
	default:
		return 0
	}
}
