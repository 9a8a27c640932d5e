package dto

import (
	"time"

	"github.com/shopspring/decimal"

	vo "github.com/staffhub/staffhub/internal/domain/subscription/valueobjects"
)

type PlanDTO struct {
	ID           uint            `json:"id"`
	Slug         string          `json:"slug"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	MonthlyPrice int64           `json:"monthly_price"`
	YearlyPrice  int64           `json:"yearly_price"`
	Currency     string          `json:"currency"`
	MaxEmployees int             `json:"max_employees"`
	Unlimited    bool            `json:"unlimited"`
	TrialDays    int             `json:"trial_days"`
	Features     vo.PlanFeatures `json:"features"`
	IsCustom     bool            `json:"is_custom"`
	IsActive     bool            `json:"is_active"`
	SortOrder    int             `json:"sort_order"`
}

type PendingPlanChangeDTO struct {
	PlanID       uint      `json:"plan_id"`
	BillingCycle string    `json:"billing_cycle"`
	EffectiveAt  time.Time `json:"effective_at"`
}

type CancellationDTO struct {
	Reason             string     `json:"reason,omitempty"`
	RequestedAt        time.Time  `json:"requested_at"`
	EffectiveAt        time.Time  `json:"effective_at"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancelsAtPeriodEnd bool       `json:"cancels_at_period_end"`
}

type SubscriptionDTO struct {
	ID                 uint                  `json:"id"`
	TenantID           uint                  `json:"tenant_id"`
	PlanID             uint                  `json:"plan_id"`
	Status             string                `json:"status"`
	BillingCycle       string                `json:"billing_cycle"`
	TrialStart         *time.Time            `json:"trial_start,omitempty"`
	TrialEnd           *time.Time            `json:"trial_end,omitempty"`
	CurrentPeriodStart *time.Time            `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time            `json:"current_period_end,omitempty"`
	AutoRenew          bool                  `json:"auto_renew"`
	Cancellation       *CancellationDTO      `json:"cancellation,omitempty"`
	PendingPlanChange  *PendingPlanChangeDTO `json:"pending_plan_change,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

type UsageDTO struct {
	Employees    int     `json:"employees"`
	MaxEmployees int     `json:"max_employees"`
	Unlimited    bool    `json:"unlimited"`
	PercentUsed  float64 `json:"percent_used"`
}

type PaymentDTO struct {
	ID               uint       `json:"id"`
	GatewayOrderID   string     `json:"gateway_order_id"`
	GatewayPaymentID *string    `json:"gateway_payment_id,omitempty"`
	PlanID           uint       `json:"plan_id"`
	BillingCycle     string     `json:"billing_cycle"`
	Purpose          string     `json:"purpose"`
	Amount           int64      `json:"amount"`
	Currency         string     `json:"currency"`
	Status           string     `json:"status"`
	Method           *string    `json:"method,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	CapturedAt       *time.Time `json:"captured_at,omitempty"`
	FailedAt         *time.Time `json:"failed_at,omitempty"`
}

// CurrentSubscriptionDTO is the billing overview shown to tenant admins.
type CurrentSubscriptionDTO struct {
	Subscription   *SubscriptionDTO `json:"subscription"`
	Plan           *PlanDTO         `json:"plan"`
	Usage          UsageDTO         `json:"usage"`
	DaysRemaining  int              `json:"days_remaining"`
	RecentPayments []*PaymentDTO    `json:"recent_payments"`
}

type InvoiceDTO struct {
	ID          uint            `json:"id"`
	Number      string          `json:"number"`
	PaymentID   uint            `json:"payment_id"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
	Currency    string          `json:"currency"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	Status      string          `json:"status"`
	PaidAt      time.Time       `json:"paid_at"`
}

type OrderDTO struct {
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	GatewayPublicKey string `json:"gateway_public_key"`
	Receipt          string `json:"receipt"`
	Purpose          string `json:"purpose"`
}

type VerifyPaymentDTO struct {
	SubscriptionStatus string `json:"subscription_status"`
	InvoiceNumber      string `json:"invoice_number"`
	AlreadyProcessed   bool   `json:"already_processed"`
}

type ChangePlanDTO struct {
	Result        string     `json:"result"`
	PlanID        uint       `json:"plan_id"`
	BillingCycle  string     `json:"billing_cycle"`
	EffectiveDate *time.Time `json:"effective_date,omitempty"`
}

type CancelDTO struct {
	Status             string    `json:"status"`
	EffectiveDate      time.Time `json:"effective_date"`
	CancelsAtPeriodEnd bool      `json:"cancels_at_period_end"`
}

type ReactivateDTO struct {
	Result string `json:"result"`
	Status string `json:"status"`
}
