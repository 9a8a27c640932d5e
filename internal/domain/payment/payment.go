package payment

import (
	"errors"
	"fmt"
	"time"

	vo "github.com/staffhub/staffhub/internal/domain/payment/valueobjects"
	subvo "github.com/staffhub/staffhub/internal/domain/subscription/valueobjects"
	"github.com/staffhub/staffhub/internal/shared/utils/textutil"
)

// MaxErrorDetailLength matches the error_detail column size.
const MaxErrorDetailLength = 500

var (
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrInvalidTransition = errors.New("invalid payment status transition")
	ErrAmountMismatch    = errors.New("captured amount does not match order")
	ErrHeldForReview     = errors.New("payment is held for review")
)

// Payment is one checkout attempt. The gateway order id is fixed at creation
// and status only moves forward.
type Payment struct {
	id               uint
	subscriptionID   uint
	tenantID         uint
	planID           uint
	billingCycle     subvo.BillingCycle
	purpose          vo.Purpose
	amount           vo.Money
	gatewayOrderID   string
	gatewayPaymentID *string
	status           vo.PaymentStatus
	receipt          string
	method           *string
	errorDetail      *string
	heldForReview    bool
	notes            map[string]string
	createdAt        time.Time
	capturedAt       *time.Time
	failedAt         *time.Time
	refundedAt       *time.Time
	updatedAt        time.Time
}

// NewPaymentParams describes a checkout attempt for which a gateway order exists.
type NewPaymentParams struct {
	SubscriptionID uint
	TenantID       uint
	PlanID         uint
	BillingCycle   subvo.BillingCycle
	Purpose        vo.Purpose
	Amount         vo.Money
	GatewayOrderID string
	Receipt        string
	Notes          map[string]string
}

func NewPayment(p NewPaymentParams, now time.Time) (*Payment, error) {
	if p.SubscriptionID == 0 {
		return nil, fmt.Errorf("subscription ID is required")
	}
	if p.TenantID == 0 {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if p.PlanID == 0 {
		return nil, fmt.Errorf("plan ID is required")
	}
	if !p.BillingCycle.IsValid() {
		return nil, fmt.Errorf("invalid billing cycle: %s", p.BillingCycle)
	}
	if _, err := vo.ParsePurpose(string(p.Purpose)); err != nil {
		return nil, err
	}
	if !p.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}
	if p.GatewayOrderID == "" {
		return nil, fmt.Errorf("gateway order ID is required")
	}
	if p.Receipt == "" {
		return nil, fmt.Errorf("receipt is required")
	}

	notes := p.Notes
	if notes == nil {
		notes = map[string]string{}
	}

	return &Payment{
		subscriptionID: p.SubscriptionID,
		tenantID:       p.TenantID,
		planID:         p.PlanID,
		billingCycle:   p.BillingCycle,
		purpose:        p.Purpose,
		amount:         p.Amount,
		gatewayOrderID: p.GatewayOrderID,
		status:         vo.PaymentStatusCreated,
		receipt:        p.Receipt,
		notes:          notes,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

func (p *Payment) transition(to vo.PaymentStatus, now time.Time) error {
	if !p.status.CanTransitionTo(to) {
		return fmt.Errorf("%w: from %s to %s", ErrInvalidTransition, p.status, to)
	}
	p.status = to
	p.updatedAt = now
	return nil
}

// MarkCaptured records the capture. Callers check IsCaptured first; a second
// capture is an invalid transition. A payment held for review is settled by
// an operator, never here.
func (p *Payment) MarkCaptured(gatewayPaymentID string, now time.Time) error {
	if gatewayPaymentID == "" {
		return fmt.Errorf("gateway payment ID is required")
	}
	if p.heldForReview {
		return ErrHeldForReview
	}
	if err := p.transition(vo.PaymentStatusCaptured, now); err != nil {
		return err
	}
	p.gatewayPaymentID = &gatewayPaymentID
	p.capturedAt = &now
	return nil
}

// MarkFailed returns false without error when the payment already failed.
func (p *Payment) MarkFailed(detail string, now time.Time) (bool, error) {
	if p.status == vo.PaymentStatusFailed {
		return false, nil
	}
	if err := p.transition(vo.PaymentStatusFailed, now); err != nil {
		return false, err
	}
	detail = textutil.TruncateRunes(detail, MaxErrorDetailLength)
	p.errorDetail = &detail
	p.failedAt = &now
	return true, nil
}

// HoldForReview parks a created payment whose capture cannot be applied
// automatically. The payment stays created until an operator resolves it.
// Returns false when the payment is already held.
func (p *Payment) HoldForReview(detail string, now time.Time) (bool, error) {
	if !p.status.IsCreated() {
		return false, fmt.Errorf("%w: cannot hold %s payment", ErrInvalidTransition, p.status)
	}
	if p.heldForReview {
		return false, nil
	}
	detail = textutil.TruncateRunes(detail, MaxErrorDetailLength)
	p.heldForReview = true
	p.errorDetail = &detail
	p.updatedAt = now
	return true, nil
}

// MarkRefunded returns false without error when the payment is already refunded.
func (p *Payment) MarkRefunded(now time.Time) (bool, error) {
	if p.status == vo.PaymentStatusRefunded {
		return false, nil
	}
	if err := p.transition(vo.PaymentStatusRefunded, now); err != nil {
		return false, err
	}
	p.refundedAt = &now
	return true, nil
}

// ValidateCapturedAmount checks a provider-reported amount against the order.
func (p *Payment) ValidateCapturedAmount(amount int64, currency string) error {
	if p.amount.Minor() != amount {
		return fmt.Errorf("%w: expected %d, got %d", ErrAmountMismatch, p.amount.Minor(), amount)
	}
	if currency != "" && p.amount.Currency() != currency {
		return fmt.Errorf("%w: expected %s, got %s", ErrAmountMismatch, p.amount.Currency(), currency)
	}
	return nil
}

// IsStale reports a created payment older than maxAge. Held payments are
// never stale.
func (p *Payment) IsStale(now time.Time, maxAge time.Duration) bool {
	return p.status.IsCreated() && !p.heldForReview && now.Sub(p.createdAt) > maxAge
}

func (p *Payment) ID() uint { return p.id }
func (p *Payment) SubscriptionID() uint { return p.subscriptionID }
func (p *Payment) TenantID() uint { return p.tenantID }
func (p *Payment) PlanID() uint { return p.planID }
func (p *Payment) BillingCycle() subvo.BillingCycle { return p.billingCycle }
func (p *Payment) Purpose() vo.Purpose { return p.purpose }
func (p *Payment) Amount() vo.Money { return p.amount }
func (p *Payment) GatewayOrderID() string { return p.gatewayOrderID }
func (p *Payment) GatewayPaymentID() *string { return p.gatewayPaymentID }
func (p *Payment) Status() vo.PaymentStatus { return p.status }
func (p *Payment) Receipt() string { return p.receipt }
func (p *Payment) Method() *string { return p.method }
func (p *Payment) ErrorDetail() *string { return p.errorDetail }
func (p *Payment) HeldForReview() bool { return p.heldForReview }
func (p *Payment) Notes() map[string]string { return p.notes }
func (p *Payment) CreatedAt() time.Time { return p.createdAt }
func (p *Payment) CapturedAt() *time.Time { return p.capturedAt }
func (p *Payment) FailedAt() *time.Time { return p.failedAt }
func (p *Payment) RefundedAt() *time.Time { return p.refundedAt }
func (p *Payment) UpdatedAt() time.Time { return p.updatedAt }

// SetID sets the payment ID after persistence (used by repository after Create)
func (p *Payment) SetID(id uint) {
	p.id = id
}

// ReconstructParams is the persisted form of a payment.
type ReconstructParams struct {
	ID               uint
	SubscriptionID   uint
	TenantID         uint
	PlanID           uint
	BillingCycle     subvo.BillingCycle
	Purpose          vo.Purpose
	Amount           vo.Money
	GatewayOrderID   string
	GatewayPaymentID *string
	Status           vo.PaymentStatus
	Receipt          string
	Method           *string
	ErrorDetail      *string
	HeldForReview    bool
	Notes            map[string]string
	CreatedAt        time.Time
	CapturedAt       *time.Time
	FailedAt         *time.Time
	RefundedAt       *time.Time
	UpdatedAt        time.Time
}

func ReconstructPayment(p ReconstructParams) (*Payment, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("payment ID cannot be zero")
	}
	if !p.Status.IsValid() {
		return nil, fmt.Errorf("invalid payment status: %s", p.Status)
	}
	notes := p.Notes
	if notes == nil {
		notes = map[string]string{}
	}
	return &Payment{
		id:               p.ID,
		subscriptionID:   p.SubscriptionID,
		tenantID:         p.TenantID,
		planID:           p.PlanID,
		billingCycle:     p.BillingCycle,
		purpose:          p.Purpose,
		amount:           p.Amount,
		gatewayOrderID:   p.GatewayOrderID,
		gatewayPaymentID: p.GatewayPaymentID,
		status:           p.Status,
		receipt:          p.Receipt,
		method:           p.Method,
		errorDetail:      p.ErrorDetail,
		heldForReview:    p.HeldForReview,
		notes:            notes,
		createdAt:        p.CreatedAt,
		capturedAt:       p.CapturedAt,
		failedAt:         p.FailedAt,
		refundedAt:       p.RefundedAt,
		updatedAt:        p.UpdatedAt,
	}, nil
}
