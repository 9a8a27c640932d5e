package payment

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/staffhub/staffhub/internal/domain/payment/valueobjects"
	subvo "github.com/staffhub/staffhub/internal/domain/subscription/valueobjects"
)

var created = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

func validParams() NewPaymentParams {
	return NewPaymentParams{
		SubscriptionID: 1,
		TenantID:       9,
		PlanID:         2,
		BillingCycle:   subvo.BillingCycleMonthly,
		Purpose:        vo.PurposeActivation,
		Amount:         vo.NewMoney(149900, "INR"),
		GatewayOrderID: "order_Nx1",
		Receipt:        "rcpt_1",
	}
}

func newPayment(t *testing.T) *Payment {
	t.Helper()
	p, err := NewPayment(validParams(), created)
	require.NoError(t, err)
	p.SetID(5)
	return p
}

func TestNewPayment_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *NewPaymentParams)
	}{
		{"zero amount", func(p *NewPaymentParams) { p.Amount = vo.NewMoney(0, "INR") }},
		{"negative amount", func(p *NewPaymentParams) { p.Amount = vo.NewMoney(-5, "INR") }},
		{"missing order id", func(p *NewPaymentParams) { p.GatewayOrderID = "" }},
		{"missing receipt", func(p *NewPaymentParams) { p.Receipt = "" }},
		{"bad purpose", func(p *NewPaymentParams) { p.Purpose = "gift" }},
		{"bad cycle", func(p *NewPaymentParams) { p.BillingCycle = "weekly" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validParams()
			tt.mutate(&params)
			_, err := NewPayment(params, created)
			assert.Error(t, err)
		})
	}
}

func TestMarkCaptured(t *testing.T) {
	p := newPayment(t)
	at := created.Add(time.Minute)

	require.NoError(t, p.MarkCaptured("pay_A", at))
	assert.Equal(t, vo.PaymentStatusCaptured, p.Status())
	assert.Equal(t, "pay_A", *p.GatewayPaymentID())
	assert.Equal(t, at, *p.CapturedAt())

	err := p.MarkCaptured("pay_A", at)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMarkFailed(t *testing.T) {
	p := newPayment(t)

	changed, err := p.MarkFailed("card declined", created)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "card declined", *p.ErrorDetail())

	changed, err = p.MarkFailed("again", created)
	require.NoError(t, err)
	assert.False(t, changed)

	assert.Error(t, p.MarkCaptured("pay_late", created))
}

func TestMarkFailedTruncatesDetail(t *testing.T) {
	p := newPayment(t)

	_, err := p.MarkFailed(strings.Repeat("é", 600), created)
	require.NoError(t, err)
	assert.Equal(t, MaxErrorDetailLength, utf8.RuneCountInString(*p.ErrorDetail()))
	assert.True(t, utf8.ValidString(*p.ErrorDetail()))
}

func TestHoldForReview(t *testing.T) {
	p := newPayment(t)

	held, err := p.HoldForReview("amount mismatch: expected 149900, got 100", created.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, held)
	assert.True(t, p.HeldForReview())
	assert.Equal(t, vo.PaymentStatusCreated, p.Status())
	assert.Equal(t, "amount mismatch: expected 149900, got 100", *p.ErrorDetail())
	assert.Equal(t, created.Add(time.Minute), p.UpdatedAt())

	held, err = p.HoldForReview("again", created.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, held)
	assert.Equal(t, "amount mismatch: expected 149900, got 100", *p.ErrorDetail())

	assert.ErrorIs(t, p.MarkCaptured("pay_A", created), ErrHeldForReview)
	assert.Equal(t, vo.PaymentStatusCreated, p.Status())
	assert.False(t, p.IsStale(created.Add(72*time.Hour), 24*time.Hour))

	captured := newPayment(t)
	require.NoError(t, captured.MarkCaptured("pay_B", created))
	_, err = captured.HoldForReview("late", created)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.False(t, captured.HeldForReview())
}

func TestMarkFailedAfterCaptureRejected(t *testing.T) {
	p := newPayment(t)
	require.NoError(t, p.MarkCaptured("pay_A", created))

	_, err := p.MarkFailed("late failure", created)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, vo.PaymentStatusCaptured, p.Status())
}

func TestMarkRefunded(t *testing.T) {
	p := newPayment(t)

	_, err := p.MarkRefunded(created)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, p.MarkCaptured("pay_A", created))
	changed, err := p.MarkRefunded(created.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = p.MarkRefunded(created.Add(2 * time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestValidateCapturedAmount(t *testing.T) {
	p := newPayment(t)

	assert.NoError(t, p.ValidateCapturedAmount(149900, "INR"))
	assert.NoError(t, p.ValidateCapturedAmount(149900, ""))
	assert.ErrorIs(t, p.ValidateCapturedAmount(100, "INR"), ErrAmountMismatch)
	assert.ErrorIs(t, p.ValidateCapturedAmount(149900, "USD"), ErrAmountMismatch)
}

func TestIsStale(t *testing.T) {
	p := newPayment(t)

	assert.False(t, p.IsStale(created.Add(24*time.Hour), 24*time.Hour))
	assert.True(t, p.IsStale(created.Add(24*time.Hour+time.Second), 24*time.Hour))

	require.NoError(t, p.MarkCaptured("pay_A", created))
	assert.False(t, p.IsStale(created.Add(48*time.Hour), 24*time.Hour))
}

func TestPaymentStatusTransitions(t *testing.T) {
	all := []vo.PaymentStatus{vo.PaymentStatusCreated, vo.PaymentStatusCaptured, vo.PaymentStatusFailed, vo.PaymentStatusRefunded}
	allowed := map[[2]vo.PaymentStatus]bool{
		{vo.PaymentStatusCreated, vo.PaymentStatusCaptured}:  true,
		{vo.PaymentStatusCreated, vo.PaymentStatusFailed}:    true,
		{vo.PaymentStatusCaptured, vo.PaymentStatusRefunded}: true,
	}
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]vo.PaymentStatus{from, to}], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestMoneyMajor(t *testing.T) {
	m := vo.NewMoney(149900, "INR")
	assert.Equal(t, "1499.00", m.Major().StringFixed(2))
	assert.Equal(t, "1499.00 INR", m.String())
}
