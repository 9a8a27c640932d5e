package usecases_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/staffhub/staffhub/internal/application/billing/dto"
	"github.com/staffhub/staffhub/internal/application/billing/usecases"
	paymentvo "github.com/staffhub/staffhub/internal/domain/payment/valueobjects"
	vo "github.com/staffhub/staffhub/internal/domain/subscription/valueobjects"
	apperrors "github.com/staffhub/staffhub/internal/shared/errors"
)

func TestCheckoutActivatesAndInvoices(t *testing.T) {
	f := newFixture(t)
	f.startTrial(t)
	ctx := context.Background()

	f.expectOrder("order_pro", 149900)
	order, err := f.orderUC.Execute(ctx, usecases.CreateOrderCommand{
		TenantID: tenantID, PlanID: f.professional.ID(), BillingCycle: "monthly",
	})
	require.NoError(t, err)
	assert.Equal(t, "order_pro", order.OrderID)
	assert.Equal(t, int64(149900), order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "rzp_test_key", order.GatewayPublicKey)
	assert.Equal(t, paymentvo.PurposeActivation.String(), order.Purpose)

	res, err := f.verifyUC.Execute(ctx, usecases.VerifyPaymentCommand{
		TenantID: tenantID, OrderID: "order_pro", PaymentID: "pay_1", Signature: goodSignature,
	})
	require.NoError(t, err)
	assert.Equal(t, "active", res.SubscriptionStatus)
	assert.False(t, res.AlreadyProcessed)
	assert.Regexp(t, `^INV-202601-[0-9a-f]{8}$`, res.InvoiceNumber)

	sub := f.currentSub(t)
	assert.Equal(t, vo.StatusActive, sub.Status())
	assert.Equal(t, f.professional.ID(), sub.PlanID())
	require.NotNil(t, sub.CurrentPeriodEnd())
	assert.True(t, fixtureStart.AddDate(0, 1, 0).Equal(*sub.CurrentPeriodEnd()))

	list, err := f.invoicesUC.Execute(ctx, usecases.ListInvoicesQuery{TenantID: tenantID})
	require.NoError(t, err)
	require.Len(t, list.Invoices, 1)
	inv := list.Invoices[0]
	assert.Equal(t, res.InvoiceNumber, inv.Number)
	assert.Equal(t, "1499.00", inv.Subtotal.StringFixed(2))
	assert.Equal(t, "269.82", inv.Tax.StringFixed(2))
	assert.Equal(t, "1768.82", inv.Total.StringFixed(2))

	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]usecases.NotificationKind{usecases.NotificationPaymentCaptured}, f.notifier.kinds())
	}, waitFor, tick)
}

func TestVerifyReplayIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.startTrial(t)
	f.activate(t, f.professional, "order_once")
	before := f.currentSub(t)

	res, err := f.verifyUC.Execute(context.Background(), usecases.VerifyPaymentCommand{
		TenantID: tenantID, OrderID: "order_once", PaymentID: "pay_order_once", Signature: goodSignature,
	})
	require.NoError(t, err)
	assert.True(t, res.AlreadyProcessed)
	assert.NotEmpty(t, res.InvoiceNumber)

	after := f.currentSub(t)
	assert.Equal(t, before.Version(), after.Version())
	assert.True(t, before.CurrentPeriodEnd().Equal(*after.CurrentPeriodEnd()))
	assert.Equal(t, int64(1), f.invoiceCount(t))
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	f := newFixture(t)
	f.startTrial(t)
	f.checkout(t, f.professional, "monthly", "order_forged")

	_, err := f.verifyUC.Execute(context.Background(), usecases.VerifyPaymentCommand{
		TenantID: tenantID, OrderID: "order_forged", PaymentID: "pay_x", Signature: "forged",
	})
	assert.True(t, apperrors.IsSignatureError(err))
	assert.Equal(t, vo.StatusTrial, f.currentSub(t).Status())
	assert.Zero(t, f.invoiceCount(t))
}

func TestVerifyRejectsOtherTenantsOrder(t *testing.T) {
	f := newFixture(t)
	f.startTrial(t)
	f.checkout(t, f.professional, "monthly", "order_mine")

	_, err := f.verifyUC.Execute(context.Background(), usecases.VerifyPaymentCommand{
		TenantID: tenantID + 1, OrderID: "order_mine", PaymentID: "pay_x", Signature: goodSignature,
	})
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestConcurrentVerifyAndWebhookSettleOnce(t *testing.T) {
	f := newFixture(t)
	f.startTrial(t)
	f.checkout(t, f.professional, "monthly", "order_race")
	ctx := context.Background()
	settledAt := f.clock.Now()

	var (
		wg        sync.WaitGroup
		verifyRes *dto.VerifyPaymentDTO
		verifyErr error
		hookRes   *usecases.IngestWebhookResult
		hookErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		verifyRes, verifyErr = f.verifyUC.Execute(ctx, usecases.VerifyPaymentCommand{
			TenantID: tenantID, OrderID: "order_race", PaymentID: "pay_race", Signature: goodSignature,
		})
	}()
	go func() {
		defer wg.Done()
		hookRes, hookErr = f.webhookUC.Execute(ctx, usecases.IngestWebhookCommand{
			RawBody:   paymentEvent("evt_race", "payment.captured", "order_race", "pay_race", 149900),
			Signature: goodSignature,
		})
	}()
	wg.Wait()

	require.NoError(t, verifyErr)
	require.NoError(t, hookErr)

	// Exactly one of the two paths applies the capture.
	verifyApplied := !verifyRes.AlreadyProcessed
	hookApplied := hookRes.Outcome == "applied"
	assert.NotEqual(t, verifyApplied, hookApplied)

	sub := f.currentSub(t)
	assert.Equal(t, vo.StatusActive, sub.Status())
	assert.Equal(t, int64(1), f.invoiceCount(t))

	// One application gives exactly one month from settlement.
	require.NotNil(t, sub.CurrentPeriodEnd())
	assert.True(t, settledAt.AddDate(0, 1, 0).Equal(*sub.CurrentPeriodEnd()),
		"period end %s", sub.CurrentPeriodEnd())
	assert.True(t, settledAt.Equal(*sub.CurrentPeriodStart()))
}

func TestCreateOrderRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.orderUC.Execute(ctx, usecases.CreateOrderCommand{
		TenantID: tenantID, PlanID: f.professional.ID(), BillingCycle: "monthly",
	})
	assert.True(t, apperrors.IsNotFoundError(err), "no subscription yet")

	f.startTrial(t)

	_, err = f.orderUC.Execute(ctx, usecases.CreateOrderCommand{
		TenantID: tenantID, PlanID: f.enterprise.ID(), BillingCycle: "monthly",
	})
	assert.True(t, apperrors.IsValidationError(err), "custom plans are not sold through checkout")

	_, err = f.orderUC.Execute(ctx, usecases.CreateOrderCommand{
		TenantID: tenantID, PlanID: f.professional.ID(), BillingCycle: "weekly",
	})
	assert.True(t, apperrors.IsValidationError(err))

	f.gateway.On("CreateOrder", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewGatewayError("provider down")).Once()
	_, err = f.orderUC.Execute(ctx, usecases.CreateOrderCommand{
		TenantID: tenantID, PlanID: f.starter.ID(), BillingCycle: "yearly",
	})
	assert.True(t, apperrors.IsGatewayError(err))
}

func TestActiveDowngradeThroughCheckoutIsRejected(t *testing.T) {
	f := newFixture(t)
	f.startTrial(t)
	f.activate(t, f.professional, "order_pro")

	_, err := f.orderUC.Execute(context.Background(), usecases.CreateOrderCommand{
		TenantID: tenantID, PlanID: f.starter.ID(), BillingCycle: "monthly",
	})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestRenewalExtendsCurrentPeriod(t *testing.T) {
	f := newFixture(t)
	f.startTrial(t)
	f.activate(t, f.professional, "order_first")
	firstEnd := *f.currentSub(t).CurrentPeriodEnd()

	f.activate(t, f.professional, "order_renew")

	sub := f.currentSub(t)
	assert.True(t, firstEnd.AddDate(0, 1, 0).Equal(*sub.CurrentPeriodEnd()))
	assert.Equal(t, int64(2), f.invoiceCount(t))
}

// scriptedNumbers hands out invoice numbers in order, repeating the last one.
type scriptedNumbers struct {
	mu   sync.Mutex
	next []string
}

func (s *scriptedNumbers) Generate(time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.next[0]
	if len(s.next) > 1 {
		s.next = s.next[1:]
	}
	return n
}

func TestInvoiceNumberCollisionDrawsNewNumber(t *testing.T) {
	f := newFixture(t)
	f.startTrial(t)
	f.settle.SetNumberGenerator(&scriptedNumbers{next: []string{
		"INV-202601-aaaaaaaa",
		"INV-202601-aaaaaaaa",
		"INV-202601-bbbbbbbb",
	}})

	f.activate(t, f.professional, "order_first")
	f.activate(t, f.professional, "order_renew")

	list, err := f.invoicesUC.Execute(context.Background(), usecases.ListInvoicesQuery{TenantID: tenantID})
	require.NoError(t, err)
	numbers := make([]string, 0, len(list.Invoices))
	for _, inv := range list.Invoices {
		numbers = append(numbers, inv.Number)
	}
	assert.ElementsMatch(t, []string{"INV-202601-aaaaaaaa", "INV-202601-bbbbbbbb"}, numbers)
}
