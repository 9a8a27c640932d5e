package usecases

import (
	"context"
	"fmt"

	"github.com/staffhub/staffhub/internal/application/billing/dto"
	"github.com/staffhub/staffhub/internal/application/billing/paymentgateway"
	"github.com/staffhub/staffhub/internal/domain/payment"
	vo "github.com/staffhub/staffhub/internal/domain/subscription/valueobjects"
	apperrors "github.com/staffhub/staffhub/internal/shared/errors"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

type VerifyPaymentCommand struct {
	TenantID    uint
	ActorUserID uint
	OrderID     string
	PaymentID   string
	Signature   string
	// PlanID and BillingCycle are optional echoes of the checkout selection.
	PlanID       uint
	BillingCycle string
}

// VerifyPaymentUseCase confirms a checkout completed in the browser.
type VerifyPaymentUseCase struct {
	gateway     paymentgateway.Gateway
	paymentRepo payment.PaymentRepository
	settle      *SettleCaptureUseCase
	metrics     Metrics
	logger      logger.Interface
}

func NewVerifyPaymentUseCase(
	gateway paymentgateway.Gateway,
	paymentRepo payment.PaymentRepository,
	settle *SettleCaptureUseCase,
	logger logger.Interface,
) *VerifyPaymentUseCase {
	return &VerifyPaymentUseCase{
		gateway:     gateway,
		paymentRepo: paymentRepo,
		settle:      settle,
		metrics:     NopMetrics(),
		logger:      logger,
	}
}

func (uc *VerifyPaymentUseCase) SetMetrics(m Metrics) {
	if m != nil {
		uc.metrics = m
	}
}

func (uc *VerifyPaymentUseCase) Execute(ctx context.Context, cmd VerifyPaymentCommand) (*dto.VerifyPaymentDTO, error) {
	if cmd.OrderID == "" || cmd.PaymentID == "" || cmd.Signature == "" {
		return nil, apperrors.NewValidationError("order id, payment id and signature are required")
	}

	if !uc.gateway.VerifySignature(cmd.OrderID, cmd.PaymentID, cmd.Signature) {
		uc.metrics.RecordSettlement(SourceVerify, "bad_signature")
		uc.logger.Warnw("checkout signature rejected",
			"tenant_id", cmd.TenantID,
			"user_id", cmd.ActorUserID,
			"order_id", cmd.OrderID,
			"payment_id", cmd.PaymentID,
		)
		return nil, apperrors.NewSignatureError("payment signature verification failed")
	}

	pay, err := uc.paymentRepo.GetByGatewayOrderID(ctx, cmd.OrderID)
	if err != nil {
		uc.logger.Errorw("failed to load payment", "order_id", cmd.OrderID, "error", err)
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if pay == nil || pay.TenantID() != cmd.TenantID {
		return nil, apperrors.NewNotFoundError("payment order not found")
	}
	if cmd.PlanID != 0 && cmd.PlanID != pay.PlanID() {
		return nil, apperrors.NewValidationError("plan does not match the order")
	}
	if cmd.BillingCycle != "" {
		cycle, err := vo.ParseBillingCycle(cmd.BillingCycle)
		if err != nil || cycle != pay.BillingCycle() {
			return nil, apperrors.NewValidationError("billing cycle does not match the order")
		}
	}

	result, err := uc.settle.Execute(ctx, SettleCaptureCommand{
		OrderID:     cmd.OrderID,
		PaymentID:   cmd.PaymentID,
		Source:      SourceVerify,
		ActorUserID: cmd.ActorUserID,
	})
	if err != nil {
		return nil, err
	}

	return &dto.VerifyPaymentDTO{
		SubscriptionStatus: result.Status.String(),
		InvoiceNumber:      result.InvoiceNumber,
		AlreadyProcessed:   result.AlreadyCaptured,
	}, nil
}
