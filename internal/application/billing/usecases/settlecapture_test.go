package usecases_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffhub/staffhub/internal/application/billing/usecases"
	"github.com/staffhub/staffhub/internal/domain/payment"
	paymentvo "github.com/staffhub/staffhub/internal/domain/payment/valueobjects"
	vo "github.com/staffhub/staffhub/internal/domain/subscription/valueobjects"
	"github.com/staffhub/staffhub/internal/domain/webhook"
	apperrors "github.com/staffhub/staffhub/internal/shared/errors"
)

// webhookBody builds a signed-shape event around a hand-written payment entity.
func webhookBody(t *testing.T, eventID, event string, entity map[string]any) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id":      eventID,
		"event":   event,
		"payload": map[string]any{"payment": map[string]any{"entity": entity}},
	})
	require.NoError(t, err)
	return raw
}

func (f *fixture) payment(t *testing.T, orderID string) *payment.Payment {
	t.Helper()
	p, err := f.payments.GetByGatewayOrderID(context.Background(), orderID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func TestWebhookCaptureWithoutAmountSettlesAtOrderAmount(t *testing.T) {
	f := newFixture(t)
	f.startTrial(t)
	f.checkout(t, f.professional, "monthly", "order_noamt")

	res := f.deliver(t, webhookBody(t, "evt_noamt", webhook.EventPaymentCaptured, map[string]any{
		"id":       "pay_noamt",
		"order_id": "order_noamt",
		"status":   "captured",
	}))
	assert.Equal(t, webhook.OutcomeApplied, res.Outcome)

	p := f.payment(t, "order_noamt")
	assert.Equal(t, paymentvo.PaymentStatusCaptured, p.Status())
	assert.False(t, p.HeldForReview())
	assert.Equal(t, vo.StatusActive, f.currentSub(t).Status())
	assert.Equal(t, int64(1), f.invoiceCount(t))

	// The client-side verify arriving afterwards is a replay.
	verify, err := f.verifyUC.Execute(context.Background(), usecases.VerifyPaymentCommand{
		TenantID: tenantID, OrderID: "order_noamt", PaymentID: "pay_noamt", Signature: goodSignature,
	})
	require.NoError(t, err)
	assert.True(t, verify.AlreadyProcessed)
}

func TestCaptureAmountMismatchHoldsPaymentForReview(t *testing.T) {
	f := newFixture(t)
	f.startTrial(t)
	f.checkout(t, f.professional, "monthly", "order_short")
	ctx := context.Background()

	res := f.deliver(t, paymentEvent("evt_short", webhook.EventPaymentCaptured, "order_short", "pay_short", 100))
	assert.Equal(t, webhook.OutcomeFailed, res.Outcome)
	assert.NotEmpty(t, f.deliveryRow(t, "evt_short").Error)

	held := f.payment(t, "order_short")
	assert.Equal(t, paymentvo.PaymentStatusCreated, held.Status(), "a paid order is never moved to failed")
	assert.True(t, held.HeldForReview())
	require.NotNil(t, held.ErrorDetail())
	assert.Contains(t, *held.ErrorDetail(), "pay_short")
	assert.Contains(t, *held.ErrorDetail(), "expected 149900, got 100")
	assert.Equal(t, vo.StatusTrial, f.currentSub(t).Status())
	assert.Zero(t, f.invoiceCount(t))

	t.Run("verify is refused while held", func(t *testing.T) {
		_, err := f.verifyUC.Execute(ctx, usecases.VerifyPaymentCommand{
			TenantID: tenantID, OrderID: "order_short", PaymentID: "pay_short", Signature: goodSignature,
		})
		assert.True(t, apperrors.IsStateConflictError(err))
		assert.Contains(t, err.Error(), "held for review")
		assert.Equal(t, vo.StatusTrial, f.currentSub(t).Status())
	})

	t.Run("a matching capture is refused while held", func(t *testing.T) {
		res := f.deliver(t, paymentEvent("evt_short_2", webhook.EventPaymentCaptured, "order_short", "pay_short", 149900))
		assert.Equal(t, webhook.OutcomeFailed, res.Outcome)
		assert.Zero(t, f.invoiceCount(t))
	})

	t.Run("a failure event leaves it held", func(t *testing.T) {
		res := f.deliver(t, paymentEvent("evt_short_fail", webhook.EventPaymentFailed, "order_short", "pay_short", 100))
		assert.Equal(t, webhook.OutcomeIgnored, res.Outcome)
		assert.Equal(t, paymentvo.PaymentStatusCreated, f.payment(t, "order_short").Status())
	})

	t.Run("the reconciler skips it", func(t *testing.T) {
		f.clock.Advance(25 * time.Hour)
		res, err := f.reconcileUC.Execute(ctx)
		require.NoError(t, err)
		assert.Zero(t, res.Examined)

		p := f.payment(t, "order_short")
		assert.Equal(t, paymentvo.PaymentStatusCreated, p.Status())
		assert.True(t, p.HeldForReview())
	})
}

func TestCaptureCurrencyMismatchHoldsPayment(t *testing.T) {
	f := newFixture(t)
	f.startTrial(t)
	f.checkout(t, f.professional, "monthly", "order_usd")

	amount := int64(149900)
	res, err := f.settle.Execute(context.Background(), usecases.SettleCaptureCommand{
		OrderID:          "order_usd",
		PaymentID:        "pay_usd",
		Source:           usecases.SourceWebhook,
		ReportedAmount:   &amount,
		ReportedCurrency: "USD",
	})
	assert.True(t, apperrors.IsStateConflictError(err))
	require.NotNil(t, res)
	assert.Equal(t, vo.StatusTrial, res.Status)
	assert.True(t, f.payment(t, "order_usd").HeldForReview())
}

func TestFailureWebhookTruncatesProviderText(t *testing.T) {
	f := newFixture(t)
	f.startTrial(t)
	f.checkout(t, f.professional, "monthly", "order_verbose")

	res := f.deliver(t, webhookBody(t, "evt_verbose", webhook.EventPaymentFailed, map[string]any{
		"id":                "pay_verbose",
		"order_id":          "order_verbose",
		"status":            "failed",
		"error_description": strings.Repeat("₹", 600),
	}))
	assert.Equal(t, webhook.OutcomeApplied, res.Outcome)

	p := f.payment(t, "order_verbose")
	assert.Equal(t, paymentvo.PaymentStatusFailed, p.Status())
	require.NotNil(t, p.ErrorDetail())
	assert.Equal(t, payment.MaxErrorDetailLength, utf8.RuneCountInString(*p.ErrorDetail()))
	assert.True(t, utf8.ValidString(*p.ErrorDetail()))
}

func TestPastDueCaptureExtendsFromOldPeriodEnd(t *testing.T) {
	f := newFixture(t)
	f.startTrial(t)
	f.activate(t, f.professional, "order_first")
	ctx := context.Background()
	oldEnd := *f.currentSub(t).CurrentPeriodEnd()

	f.clock.Set(oldEnd.Add(36 * time.Hour))
	sub, err := f.lifecycle.Load(ctx, tenantID)
	require.NoError(t, err)
	require.Equal(t, vo.StatusPastDue, sub.Status())

	f.activate(t, f.professional, "order_late")

	sub = f.currentSub(t)
	assert.Equal(t, vo.StatusActive, sub.Status())
	assert.True(t, oldEnd.AddDate(0, 1, 0).Equal(*sub.CurrentPeriodEnd()))
	assert.True(t, oldEnd.Equal(*sub.CurrentPeriodStart()))

	inv, err := f.invoices.GetByPaymentID(ctx, f.payment(t, "order_late").ID())
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.True(t, oldEnd.Equal(inv.PeriodStart()))
	assert.True(t, oldEnd.AddDate(0, 1, 0).Equal(inv.PeriodEnd()))
	assert.Equal(t, int64(2), f.invoiceCount(t))
}
