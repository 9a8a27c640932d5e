package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/staffhub/staffhub/internal/application/billing/usecases"
	"github.com/staffhub/staffhub/internal/shared/logger"
	"github.com/staffhub/staffhub/internal/shared/utils"
)

// BillingHandler serves the tenant-facing subscription endpoints. The tenant
// always comes from the caller's token, never from the request.
type BillingHandler struct {
	currentUC    getCurrentSubscriptionUseCase
	createOrder  createOrderUseCase
	verifyUC     verifyPaymentUseCase
	changePlanUC changePlanUseCase
	cancelUC     cancelSubscriptionUseCase
	reactivateUC reactivateUseCase
	invoicesUC   listInvoicesUseCase
	logger       logger.Interface
}

func NewBillingHandler(
	currentUC getCurrentSubscriptionUseCase,
	createOrder createOrderUseCase,
	verifyUC verifyPaymentUseCase,
	changePlanUC changePlanUseCase,
	cancelUC cancelSubscriptionUseCase,
	reactivateUC reactivateUseCase,
	invoicesUC listInvoicesUseCase,
	logger logger.Interface,
) *BillingHandler {
	return &BillingHandler{
		currentUC:    currentUC,
		createOrder:  createOrder,
		verifyUC:     verifyUC,
		changePlanUC: changePlanUC,
		cancelUC:     cancelUC,
		reactivateUC: reactivateUC,
		invoicesUC:   invoicesUC,
		logger:       logger,
	}
}

type CreateOrderRequest struct {
	PlanID       uint   `json:"plan_id" binding:"required"`
	BillingCycle string `json:"billing_cycle" binding:"omitempty,oneof=monthly yearly"`
}

type VerifyPaymentRequest struct {
	OrderID      string `json:"razorpay_order_id" binding:"required"`
	PaymentID    string `json:"razorpay_payment_id" binding:"required"`
	Signature    string `json:"razorpay_signature" binding:"required"`
	PlanID       uint   `json:"plan_id"`
	BillingCycle string `json:"billing_cycle" binding:"omitempty,oneof=monthly yearly"`
}

type ChangePlanRequest struct {
	PlanID       uint   `json:"plan_id" binding:"required"`
	BillingCycle string `json:"billing_cycle" binding:"omitempty,oneof=monthly yearly"`
}

type CancelSubscriptionRequest struct {
	Reason    string `json:"reason" binding:"max=2000"`
	Immediate bool   `json:"immediate"`
}

// GetCurrentSubscription handles GET /billing/subscription
func (h *BillingHandler) GetCurrentSubscription(c *gin.Context) {
	caller, err := utils.GetCaller(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.currentUC.Execute(c.Request.Context(), caller.TenantID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// CreateOrder handles POST /billing/orders
func (h *BillingHandler) CreateOrder(c *gin.Context) {
	caller, err := utils.GetCaller(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req CreateOrderRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	result, err := h.createOrder.Execute(c.Request.Context(), usecases.CreateOrderCommand{
		TenantID:     caller.TenantID,
		ActorUserID:  caller.UserID,
		PlanID:       req.PlanID,
		BillingCycle: req.BillingCycle,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "order created")
}

// VerifyPayment handles POST /billing/payments/verify
func (h *BillingHandler) VerifyPayment(c *gin.Context) {
	caller, err := utils.GetCaller(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req VerifyPaymentRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	result, err := h.verifyUC.Execute(c.Request.Context(), usecases.VerifyPaymentCommand{
		TenantID:     caller.TenantID,
		ActorUserID:  caller.UserID,
		OrderID:      req.OrderID,
		PaymentID:    req.PaymentID,
		Signature:    req.Signature,
		PlanID:       req.PlanID,
		BillingCycle: req.BillingCycle,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	message := "payment verified"
	if result.AlreadyProcessed {
		message = "payment already processed"
	}
	utils.SuccessResponse(c, http.StatusOK, message, result)
}

// ChangePlan handles POST /billing/subscription/change-plan
func (h *BillingHandler) ChangePlan(c *gin.Context) {
	caller, err := utils.GetCaller(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req ChangePlanRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	result, err := h.changePlanUC.Execute(c.Request.Context(), usecases.ChangePlanCommand{
		TenantID:     caller.TenantID,
		ActorUserID:  caller.UserID,
		PlanID:       req.PlanID,
		BillingCycle: req.BillingCycle,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// CancelSubscription handles POST /billing/subscription/cancel
func (h *BillingHandler) CancelSubscription(c *gin.Context) {
	caller, err := utils.GetCaller(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req CancelSubscriptionRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	result, err := h.cancelUC.Execute(c.Request.Context(), usecases.CancelSubscriptionCommand{
		TenantID:    caller.TenantID,
		ActorUserID: caller.UserID,
		Reason:      req.Reason,
		Immediate:   req.Immediate,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "subscription cancellation recorded", result)
}

// Reactivate handles POST /billing/subscription/reactivate
func (h *BillingHandler) Reactivate(c *gin.Context) {
	caller, err := utils.GetCaller(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.reactivateUC.Execute(c.Request.Context(), usecases.ReactivateCommand{
		TenantID:    caller.TenantID,
		ActorUserID: caller.UserID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// ListInvoices handles GET /billing/invoices
func (h *BillingHandler) ListInvoices(c *gin.Context) {
	caller, err := utils.GetCaller(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	p := utils.ParsePagination(c)
	result, err := h.invoicesUC.Execute(c.Request.Context(), usecases.ListInvoicesQuery{
		TenantID: caller.TenantID,
		Page:     p.Page,
		PageSize: p.PageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Invoices, result.Total, result.Page, result.PageSize)
}
