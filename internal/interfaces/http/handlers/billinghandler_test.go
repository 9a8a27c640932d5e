package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffhub/staffhub/internal/application/billing/dto"
	"github.com/staffhub/staffhub/internal/application/billing/usecases"
	"github.com/staffhub/staffhub/internal/domain/subscription"
	"github.com/staffhub/staffhub/internal/interfaces/http/handlers/testutil"
	"github.com/staffhub/staffhub/internal/shared/constants"
	"github.com/staffhub/staffhub/internal/shared/errors"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

// =====================================================================
// Mock use cases
// =====================================================================

type mockCurrentUC struct {
	result   *dto.CurrentSubscriptionDTO
	err      error
	tenantID uint
}

func (m *mockCurrentUC) Execute(_ context.Context, tenantID uint) (*dto.CurrentSubscriptionDTO, error) {
	m.tenantID = tenantID
	return m.result, m.err
}

type mockCreateOrderUC struct {
	result *dto.OrderDTO
	err    error
	cmd    usecases.CreateOrderCommand
}

func (m *mockCreateOrderUC) Execute(_ context.Context, cmd usecases.CreateOrderCommand) (*dto.OrderDTO, error) {
	m.cmd = cmd
	return m.result, m.err
}

type mockVerifyUC struct {
	result *dto.VerifyPaymentDTO
	err    error
	cmd    usecases.VerifyPaymentCommand
}

func (m *mockVerifyUC) Execute(_ context.Context, cmd usecases.VerifyPaymentCommand) (*dto.VerifyPaymentDTO, error) {
	m.cmd = cmd
	return m.result, m.err
}

type mockChangePlanUC struct {
	result *dto.ChangePlanDTO
	err    error
	cmd    usecases.ChangePlanCommand
}

func (m *mockChangePlanUC) Execute(_ context.Context, cmd usecases.ChangePlanCommand) (*dto.ChangePlanDTO, error) {
	m.cmd = cmd
	return m.result, m.err
}

type mockCancelUC struct {
	result *dto.CancelDTO
	err    error
	cmd    usecases.CancelSubscriptionCommand
}

func (m *mockCancelUC) Execute(_ context.Context, cmd usecases.CancelSubscriptionCommand) (*dto.CancelDTO, error) {
	m.cmd = cmd
	return m.result, m.err
}

type mockReactivateUC struct {
	result *dto.ReactivateDTO
	err    error
}

func (m *mockReactivateUC) Execute(_ context.Context, _ usecases.ReactivateCommand) (*dto.ReactivateDTO, error) {
	return m.result, m.err
}

type mockInvoicesUC struct {
	result *usecases.ListInvoicesResult
	err    error
	query  usecases.ListInvoicesQuery
}

func (m *mockInvoicesUC) Execute(_ context.Context, query usecases.ListInvoicesQuery) (*usecases.ListInvoicesResult, error) {
	m.query = query
	return m.result, m.err
}

type billingMocks struct {
	current    *mockCurrentUC
	order      *mockCreateOrderUC
	verify     *mockVerifyUC
	change     *mockChangePlanUC
	cancel     *mockCancelUC
	reactivate *mockReactivateUC
	invoices   *mockInvoicesUC
}

func newBillingHandler() (*BillingHandler, *billingMocks) {
	m := &billingMocks{
		current:    &mockCurrentUC{},
		order:      &mockCreateOrderUC{},
		verify:     &mockVerifyUC{},
		change:     &mockChangePlanUC{},
		cancel:     &mockCancelUC{},
		reactivate: &mockReactivateUC{},
		invoices:   &mockInvoicesUC{},
	}
	h := NewBillingHandler(m.current, m.order, m.verify, m.change, m.cancel, m.reactivate, m.invoices, logger.NewNopLogger())
	return h, m
}

func decode(t *testing.T, raw json.RawMessage, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, target))
}

// =====================================================================
// Tests
// =====================================================================

func TestGetCurrentSubscriptionUsesTokenTenant(t *testing.T) {
	h, m := newBillingHandler()
	m.current.result = &dto.CurrentSubscriptionDTO{
		Subscription:  &dto.SubscriptionDTO{Status: "trial"},
		Usage:         dto.UsageDTO{Employees: 5, MaxEmployees: 25, PercentUsed: 20},
		DaysRemaining: 10,
	}

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/billing/subscription?tenant_id=99", nil)
	testutil.SetCaller(c, 7, 42, constants.RoleMember)
	h.GetCurrentSubscription(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(42), m.current.tenantID)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var got dto.CurrentSubscriptionDTO
	decode(t, resp.Data, &got)
	assert.Equal(t, "trial", got.Subscription.Status)
	assert.Equal(t, 20.0, got.Usage.PercentUsed)
}

func TestGetCurrentSubscriptionWithoutCaller(t *testing.T) {
	h, _ := newBillingHandler()
	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/billing/subscription", nil)
	h.GetCurrentSubscription(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetCurrentSubscriptionNoSubscription(t *testing.T) {
	h, m := newBillingHandler()
	m.current.err = errors.NewEntitlementDenied(errors.CodeNoSubscription, "no subscription", errors.RedirectPlans, http.StatusPaymentRequired)

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/billing/subscription", nil)
	testutil.SetCaller(c, 7, 42, constants.RoleMember)
	h.GetCurrentSubscription(c)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.Equal(t, errors.CodeNoSubscription, resp.Error.Code)
	assert.Equal(t, errors.RedirectPlans, resp.Error.Redirect)
}

func TestCreateOrder(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h, m := newBillingHandler()
		m.order.result = &dto.OrderDTO{OrderID: "order_1", Amount: 149900, Currency: "INR", GatewayPublicKey: "rzp_test_key"}

		c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/billing/orders", map[string]interface{}{
			"plan_id": 2, "billing_cycle": "monthly",
		})
		testutil.SetCaller(c, 7, 42, constants.RoleOwner)
		h.CreateOrder(c)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, usecases.CreateOrderCommand{TenantID: 42, ActorUserID: 7, PlanID: 2, BillingCycle: "monthly"}, m.order.cmd)

		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		var got dto.OrderDTO
		decode(t, resp.Data, &got)
		assert.Equal(t, int64(149900), got.Amount)
		assert.Equal(t, "rzp_test_key", got.GatewayPublicKey)
	})

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing plan", map[string]interface{}{"billing_cycle": "monthly"}},
		{"bad cycle", map[string]interface{}{"plan_id": 2, "billing_cycle": "weekly"}},
		{"not json", []byte("plan=2")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := newBillingHandler()
			c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/billing/orders", tt.body)
			testutil.SetCaller(c, 7, 42, constants.RoleOwner)
			h.CreateOrder(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Zero(t, m.order.cmd.TenantID, "use case must not run")
		})
	}

	t.Run("gateway down", func(t *testing.T) {
		h, m := newBillingHandler()
		m.order.err = errors.NewGatewayError("payment provider unreachable")

		c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/billing/orders", map[string]interface{}{"plan_id": 2})
		testutil.SetCaller(c, 7, 42, constants.RoleOwner)
		h.CreateOrder(c)

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestVerifyPayment(t *testing.T) {
	body := map[string]interface{}{
		"razorpay_order_id":   "order_1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  "abc",
	}

	t.Run("applied", func(t *testing.T) {
		h, m := newBillingHandler()
		m.verify.result = &dto.VerifyPaymentDTO{SubscriptionStatus: "active", InvoiceNumber: "INV-202601-0a1b2c3d"}

		c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/billing/payments/verify", body)
		testutil.SetCaller(c, 7, 42, constants.RoleOwner)
		h.VerifyPayment(c)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "order_1", m.verify.cmd.OrderID)
		assert.Equal(t, "pay_1", m.verify.cmd.PaymentID)
		assert.Equal(t, uint(42), m.verify.cmd.TenantID)

		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		assert.Equal(t, "payment verified", resp.Message)
	})

	t.Run("replay", func(t *testing.T) {
		h, m := newBillingHandler()
		m.verify.result = &dto.VerifyPaymentDTO{SubscriptionStatus: "active", AlreadyProcessed: true}

		c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/billing/payments/verify", body)
		testutil.SetCaller(c, 7, 42, constants.RoleOwner)
		h.VerifyPayment(c)

		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "payment already processed", resp.Message)
	})

	t.Run("bad signature", func(t *testing.T) {
		h, m := newBillingHandler()
		m.verify.err = errors.NewSignatureError("payment signature verification failed")

		c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/billing/payments/verify", body)
		testutil.SetCaller(c, 7, 42, constants.RoleOwner)
		h.VerifyPayment(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		assert.Equal(t, errors.CodeInvalidSignature, resp.Error.Code)
	})
}

func TestChangePlan(t *testing.T) {
	t.Run("scheduled", func(t *testing.T) {
		h, m := newBillingHandler()
		effective := time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC)
		m.change.result = &dto.ChangePlanDTO{Result: usecases.ChangeScheduled, PlanID: 1, EffectiveDate: &effective}

		c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/billing/subscription/change-plan", map[string]interface{}{"plan_id": 1})
		testutil.SetCaller(c, 7, 42, constants.RoleOwner)
		h.ChangePlan(c)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, uint(1), m.change.cmd.PlanID)

		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		var got dto.ChangePlanDTO
		decode(t, resp.Data, &got)
		assert.Equal(t, usecases.ChangeScheduled, got.Result)
		require.NotNil(t, got.EffectiveDate)
		assert.True(t, effective.Equal(*got.EffectiveDate))
	})

	t.Run("seat ceiling", func(t *testing.T) {
		h, m := newBillingHandler()
		m.change.err = errors.NewLimitExceededError("30 active employees exceed the plan limit of 25")

		c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/billing/subscription/change-plan", map[string]interface{}{"plan_id": 1})
		testutil.SetCaller(c, 7, 42, constants.RoleOwner)
		h.ChangePlan(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		assert.Equal(t, errors.CodeSeatLimitExceeded, resp.Error.Code)
		assert.Equal(t, errors.RedirectPlans, resp.Error.Redirect)
	})
}

func TestCancelAndReactivate(t *testing.T) {
	h, m := newBillingHandler()
	m.cancel.result = &dto.CancelDTO{Status: "active", CancelsAtPeriodEnd: true}

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/billing/subscription/cancel", map[string]interface{}{
		"reason": "moving to another tool",
	})
	testutil.SetCaller(c, 7, 42, constants.RoleOwner)
	h.CancelSubscription(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "moving to another tool", m.cancel.cmd.Reason)
	assert.False(t, m.cancel.cmd.Immediate)

	m.reactivate.result = &dto.ReactivateDTO{Result: string(subscription.ReactivateSuccess), Status: "active"}
	c, w = testutil.NewTestContext(http.MethodPost, "/api/v1/billing/subscription/reactivate", nil)
	testutil.SetCaller(c, 7, 42, constants.RoleOwner)
	h.Reactivate(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var got dto.ReactivateDTO
	decode(t, resp.Data, &got)
	assert.Equal(t, string(subscription.ReactivateSuccess), got.Result)
}

func TestCancelStateConflict(t *testing.T) {
	h, m := newBillingHandler()
	m.cancel.err = errors.NewStateConflictError("subscription is already cancelled")

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/billing/subscription/cancel", map[string]interface{}{"immediate": true})
	testutil.SetCaller(c, 7, 42, constants.RoleOwner)
	h.CancelSubscription(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.True(t, m.cancel.cmd.Immediate)
}

func TestListInvoicesPaginates(t *testing.T) {
	h, m := newBillingHandler()
	m.invoices.result = &usecases.ListInvoicesResult{
		Invoices: []*dto.InvoiceDTO{{Number: "INV-202601-0a1b2c3d", Total: decimal.RequireFromString("1768.82")}},
		Total:    1,
		Page:     2,
		PageSize: 5,
	}

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/billing/invoices", nil)
	testutil.SetQueryParams(c, map[string]string{"page": "2", "page_size": "5"})
	testutil.SetCaller(c, 7, 42, constants.RoleAdmin)
	h.ListInvoices(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, usecases.ListInvoicesQuery{TenantID: 42, Page: 2, PageSize: 5}, m.invoices.query)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var page struct {
		Items []dto.InvoiceDTO `json:"items"`
		Total int64            `json:"total"`
	}
	decode(t, resp.Data, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "1768.82", page.Items[0].Total.StringFixed(2))
}
