package usecases_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/staffhub/staffhub/internal/application/billing/paymentgateway"
	"github.com/staffhub/staffhub/internal/application/billing/usecases"
	"github.com/staffhub/staffhub/internal/domain/invoice"
	"github.com/staffhub/staffhub/internal/domain/payment"
	"github.com/staffhub/staffhub/internal/domain/subscription"
	vo "github.com/staffhub/staffhub/internal/domain/subscription/valueobjects"
	"github.com/staffhub/staffhub/internal/infrastructure/adapters"
	"github.com/staffhub/staffhub/internal/infrastructure/lock"
	"github.com/staffhub/staffhub/internal/infrastructure/repository"
	"github.com/staffhub/staffhub/internal/infrastructure/testutil"
	"github.com/staffhub/staffhub/internal/shared/clock"
	"github.com/staffhub/staffhub/internal/shared/db"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

const (
	goodSignature = "sig-ok"
	tenantID      = uint(42)

	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateOrder(ctx context.Context, req paymentgateway.CreateOrderRequest) (*paymentgateway.Order, error) {
	args := m.Called(ctx, req)
	order, _ := args.Get(0).(*paymentgateway.Order)
	return order, args.Error(1)
}

func (m *mockGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return m.Called(orderID, paymentID, signature).Bool(0)
}

func (m *mockGateway) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	return m.Called(rawBody, signature).Bool(0)
}

func (m *mockGateway) FetchPayment(ctx context.Context, paymentID string) (*paymentgateway.PaymentDetails, error) {
	args := m.Called(ctx, paymentID)
	details, _ := args.Get(0).(*paymentgateway.PaymentDetails)
	return details, args.Error(1)
}

func (m *mockGateway) PublicKey() string {
	return m.Called().String(0)
}

// recordingNotifier collects notifications sent from background goroutines.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []usecases.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, msg usecases.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) kinds() []usecases.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]usecases.NotificationKind, 0, len(n.sent))
	for _, s := range n.sent {
		out = append(out, s.Kind)
	}
	return out
}

type fixture struct {
	db       *gorm.DB
	clock    *clock.Fake
	gateway  *mockGateway
	notifier *recordingNotifier

	plans    subscription.PlanRepository
	subs     subscription.SubscriptionRepository
	payments payment.PaymentRepository
	invoices invoice.InvoiceRepository

	lifecycle    *usecases.Lifecycle
	settle       *usecases.SettleCaptureUseCase
	registerUC   *usecases.RegisterTrialUseCase
	currentUC    *usecases.GetCurrentSubscriptionUseCase
	orderUC      *usecases.CreateOrderUseCase
	verifyUC     *usecases.VerifyPaymentUseCase
	webhookUC    *usecases.IngestWebhookUseCase
	changeUC     *usecases.ChangePlanUseCase
	cancelUC     *usecases.CancelSubscriptionUseCase
	reactivateUC *usecases.ReactivateUseCase
	guardUC      *usecases.CheckEntitlementUseCase
	invoicesUC   *usecases.ListInvoicesUseCase
	reconcileUC  *usecases.ReconcilePaymentsUseCase

	starter      *subscription.Plan
	professional *subscription.Plan
	enterprise   *subscription.Plan
}

var fixtureStart = time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewNopLogger()
	gdb := testutil.NewSQLiteDB(t)

	f := &fixture{
		db:       gdb,
		clock:    clock.NewFake(fixtureStart),
		gateway:  &mockGateway{},
		notifier: &recordingNotifier{},
		plans:    repository.NewPlanRepository(gdb, log),
		subs:     repository.NewSubscriptionRepository(gdb, log),
		payments: repository.NewPaymentRepository(gdb, log),
		invoices: repository.NewInvoiceRepository(gdb, log),
	}
	f.gateway.On("PublicKey").Return("rzp_test_key").Maybe()
	f.gateway.On("FetchPayment", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("details unavailable")).Maybe()
	f.gateway.On("VerifySignature", mock.Anything, mock.Anything, goodSignature).Return(true).Maybe()
	f.gateway.On("VerifySignature", mock.Anything, mock.Anything, mock.Anything).Return(false).Maybe()
	f.gateway.On("VerifyWebhookSignature", mock.Anything, goodSignature).Return(true).Maybe()
	f.gateway.On("VerifyWebhookSignature", mock.Anything, mock.Anything).Return(false).Maybe()

	f.lifecycle = usecases.NewLifecycle(
		f.subs,
		f.plans,
		adapters.NewEmployeeSeatCounter(gdb, log),
		lock.NewKeyedMutex(),
		db.NewTransactionManager(gdb),
		f.clock,
		subscription.DefaultGracePeriod,
		log,
	)

	settle := usecases.NewSettleCaptureUseCase(f.lifecycle, f.payments, f.invoices, f.gateway, log)
	settle.SetNotifier(f.notifier)
	f.settle = settle

	f.registerUC = usecases.NewRegisterTrialUseCase(f.subs, f.plans, f.lifecycle, log)
	f.currentUC = usecases.NewGetCurrentSubscriptionUseCase(f.lifecycle, f.payments, 5, log)
	f.orderUC = usecases.NewCreateOrderUseCase(f.lifecycle, f.payments, f.gateway, log)
	f.verifyUC = usecases.NewVerifyPaymentUseCase(f.gateway, f.payments, settle, log)
	f.webhookUC = usecases.NewIngestWebhookUseCase(f.gateway, f.lifecycle, f.payments,
		repository.NewWebhookEventRepository(gdb, log), settle, log)
	f.webhookUC.SetNotifier(f.notifier)
	f.changeUC = usecases.NewChangePlanUseCase(f.lifecycle, log)
	f.cancelUC = usecases.NewCancelSubscriptionUseCase(f.lifecycle, log)
	f.reactivateUC = usecases.NewReactivateUseCase(f.lifecycle, log)
	f.guardUC = usecases.NewCheckEntitlementUseCase(f.lifecycle, log)
	f.invoicesUC = usecases.NewListInvoicesUseCase(f.invoices, log)
	f.reconcileUC = usecases.NewReconcilePaymentsUseCase(f.lifecycle, f.payments, 24*time.Hour, log)

	f.starter = f.createPlan(t, subscription.PlanParams{
		Slug: "starter", Name: "Starter", MonthlyPrice: 49900, YearlyPrice: 499000,
		Currency: "INR", MaxEmployees: 25, TrialDays: 14, SortOrder: 1,
		Features: vo.PlanFeatures{Payroll: true},
	})
	f.professional = f.createPlan(t, subscription.PlanParams{
		Slug: "professional", Name: "Professional", MonthlyPrice: 149900, YearlyPrice: 1499000,
		Currency: "INR", MaxEmployees: 200, TrialDays: 14, SortOrder: 2,
		Features: vo.PlanFeatures{Payroll: true, Analytics: true},
	})
	f.enterprise = f.createPlan(t, subscription.PlanParams{
		Slug: "enterprise", Name: "Enterprise", Currency: "INR",
		MaxEmployees: subscription.UnlimitedEmployees, IsCustom: true, SortOrder: 3,
	})
	return f
}

func (f *fixture) createPlan(t *testing.T, params subscription.PlanParams) *subscription.Plan {
	t.Helper()
	plan, err := subscription.NewPlan(params, f.clock.Now())
	require.NoError(t, err)
	require.NoError(t, f.plans.Create(context.Background(), plan))
	return plan
}

func (f *fixture) startTrial(t *testing.T) {
	t.Helper()
	_, err := f.registerUC.Execute(context.Background(), usecases.RegisterTrialCommand{TenantID: tenantID, PlanSlug: "starter"})
	require.NoError(t, err)
}

// expectOrder makes the next gateway order for amount come back as orderID.
func (f *fixture) expectOrder(orderID string, amount int64) {
	f.gateway.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req paymentgateway.CreateOrderRequest) bool {
		return req.Amount == amount
	})).Return(&paymentgateway.Order{ID: orderID, Amount: amount, Currency: "INR", Status: "created"}, nil).Once()
}

func (f *fixture) checkout(t *testing.T, plan *subscription.Plan, cycle, orderID string) {
	t.Helper()
	amount := plan.MonthlyPrice()
	if cycle == "yearly" {
		amount = plan.YearlyPrice()
	}
	f.expectOrder(orderID, amount)
	_, err := f.orderUC.Execute(context.Background(), usecases.CreateOrderCommand{
		TenantID: tenantID, PlanID: plan.ID(), BillingCycle: cycle,
	})
	require.NoError(t, err)
}

// activate takes the tenant from trial to a paid monthly period on plan.
func (f *fixture) activate(t *testing.T, plan *subscription.Plan, orderID string) {
	t.Helper()
	f.checkout(t, plan, "monthly", orderID)
	_, err := f.verifyUC.Execute(context.Background(), usecases.VerifyPaymentCommand{
		TenantID: tenantID, OrderID: orderID, PaymentID: "pay_" + orderID, Signature: goodSignature,
	})
	require.NoError(t, err)
}

func (f *fixture) currentSub(t *testing.T) *subscription.Subscription {
	t.Helper()
	sub, err := f.subs.GetByTenantID(context.Background(), tenantID)
	require.NoError(t, err)
	require.NotNil(t, sub)
	return sub
}

func (f *fixture) invoiceCount(t *testing.T) int64 {
	t.Helper()
	_, total, err := f.invoices.ListByTenant(context.Background(), tenantID, 1, 50)
	require.NoError(t, err)
	return total
}

func paymentEvent(eventID, event, orderID, paymentID string, amount int64) []byte {
	body := map[string]any{
		"id":    eventID,
		"event": event,
		"payload": map[string]any{
			"payment": map[string]any{
				"entity": map[string]any{
					"id":                paymentID,
					"order_id":          orderID,
					"amount":            amount,
					"currency":          "INR",
					"status":            "captured",
					"error_description": "card declined",
				},
			},
		},
	}
	raw, _ := json.Marshal(body)
	return raw
}

func refundEvent(eventID, paymentID string, amount int64) []byte {
	body := map[string]any{
		"id":    eventID,
		"event": "refund.created",
		"payload": map[string]any{
			"refund": map[string]any{
				"entity": map[string]any{
					"id":         "rfnd_" + paymentID,
					"payment_id": paymentID,
					"amount":     amount,
					"currency":   "INR",
				},
			},
		},
	}
	raw, _ := json.Marshal(body)
	return raw
}
