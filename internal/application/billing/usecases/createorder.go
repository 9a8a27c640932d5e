package usecases

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/staffhub/staffhub/internal/application/billing/dto"
	"github.com/staffhub/staffhub/internal/application/billing/paymentgateway"
	"github.com/staffhub/staffhub/internal/domain/payment"
	paymentvo "github.com/staffhub/staffhub/internal/domain/payment/valueobjects"
	"github.com/staffhub/staffhub/internal/domain/subscription"
	vo "github.com/staffhub/staffhub/internal/domain/subscription/valueobjects"
	apperrors "github.com/staffhub/staffhub/internal/shared/errors"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

type CreateOrderCommand struct {
	TenantID     uint
	ActorUserID  uint
	PlanID       uint
	BillingCycle string
}

// CreateOrderUseCase opens a gateway order for the selected plan and records
// the pending payment.
type CreateOrderUseCase struct {
	sideEffects
	lifecycle   *Lifecycle
	paymentRepo payment.PaymentRepository
	gateway     paymentgateway.Gateway
	logger      logger.Interface
}

func NewCreateOrderUseCase(
	lifecycle *Lifecycle,
	paymentRepo payment.PaymentRepository,
	gateway paymentgateway.Gateway,
	logger logger.Interface,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		sideEffects: sideEffects{logger: logger},
		lifecycle:   lifecycle,
		paymentRepo: paymentRepo,
		gateway:     gateway,
		logger:      logger,
	}
}

func (uc *CreateOrderUseCase) Execute(ctx context.Context, cmd CreateOrderCommand) (*dto.OrderDTO, error) {
	if cmd.PlanID == 0 {
		return nil, apperrors.NewValidationError("plan id is required")
	}
	cycle, err := vo.ParseBillingCycle(cmd.BillingCycle)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid billing cycle", cmd.BillingCycle)
	}

	sub, err := uc.lifecycle.requireSubscription(ctx, cmd.TenantID)
	if err != nil {
		return nil, err
	}

	target, err := uc.lifecycle.resolvePlan(ctx, cmd.PlanID)
	if err != nil {
		return nil, err
	}
	if target.IsCustom() {
		return nil, apperrors.NewValidationError("custom plans are arranged through sales")
	}
	if !target.IsActive() {
		return nil, apperrors.NewValidationError("plan is no longer available")
	}

	seats, err := uc.lifecycle.countSeats(ctx, cmd.TenantID)
	if err != nil {
		return nil, err
	}
	if !target.AdmitsSeats(seats) {
		return nil, apperrors.NewLimitExceededError(
			fmt.Sprintf("%s allows %d employees but you have %d", target.Name(), target.MaxEmployees(), seats),
		)
	}

	current, err := uc.lifecycle.planRepo.GetByID(ctx, sub.PlanID())
	if err != nil {
		return nil, fmt.Errorf("failed to load current plan: %w", err)
	}

	purpose, err := checkoutPurpose(sub, current, target, cycle)
	if err != nil {
		return nil, err
	}

	amount, err := target.PriceFor(cycle)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid billing cycle", cmd.BillingCycle)
	}

	receipt := "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	notes := map[string]string{
		"tenant_id":       strconv.FormatUint(uint64(sub.TenantID()), 10),
		"subscription_id": strconv.FormatUint(uint64(sub.ID()), 10),
		"plan_id":         strconv.FormatUint(uint64(target.ID()), 10),
		"billing_cycle":   cycle.String(),
		"purpose":         purpose.String(),
	}

	order, err := uc.gateway.CreateOrder(ctx, paymentgateway.CreateOrderRequest{
		Amount:   amount,
		Currency: target.Currency(),
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		uc.logger.Errorw("failed to create gateway order",
			"tenant_id", cmd.TenantID,
			"plan_id", target.ID(),
			"error", err,
		)
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.NewGatewayError("payment provider is unavailable, please try again").WithCause(err)
	}

	pay, err := payment.NewPayment(payment.NewPaymentParams{
		SubscriptionID: sub.ID(),
		TenantID:       sub.TenantID(),
		PlanID:         target.ID(),
		BillingCycle:   cycle,
		Purpose:        purpose,
		Amount:         paymentvo.NewMoney(amount, target.Currency()),
		GatewayOrderID: order.ID,
		Receipt:        receipt,
		Notes:          notes,
	}, uc.lifecycle.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to build payment: %w", err)
	}
	if err := uc.paymentRepo.Create(ctx, pay); err != nil {
		uc.logger.Errorw("failed to store payment", "order_id", order.ID, "error", err)
		return nil, fmt.Errorf("failed to store payment: %w", err)
	}

	uc.logger.Infow("checkout order created",
		"tenant_id", sub.TenantID(),
		"subscription_id", sub.ID(),
		"order_id", order.ID,
		"plan_id", target.ID(),
		"billing_cycle", cycle,
		"purpose", purpose,
		"amount", amount,
	)
	uc.record(AuditEntry{
		ActorUserID: cmd.ActorUserID,
		TenantID:    sub.TenantID(),
		Action:      AuditOrderCreated,
		EntityType:  "payment",
		EntityID:    pay.ID(),
		Description: fmt.Sprintf("order %s for %s (%s, %s)", order.ID, target.Slug(), cycle, purpose),
	})

	return &dto.OrderDTO{
		OrderID:          order.ID,
		Amount:           amount,
		Currency:         target.Currency(),
		GatewayPublicKey: uc.gateway.PublicKey(),
		Receipt:          receipt,
		Purpose:          purpose.String(),
	}, nil
}

// checkoutPurpose decides what a checkout for target buys given the current state.
func checkoutPurpose(sub *subscription.Subscription, current, target *subscription.Plan, cycle vo.BillingCycle) (paymentvo.Purpose, error) {
	switch sub.Status() {
	case vo.StatusActive, vo.StatusPastDue:
		if target.ID() == sub.PlanID() && cycle == sub.BillingCycle() {
			return paymentvo.PurposeRenewal, nil
		}
		if isUpgrade(current, sub.BillingCycle(), target, cycle) {
			return paymentvo.PurposeUpgrade, nil
		}
		if sub.Status() == vo.StatusActive {
			return "", apperrors.NewValidationError("downgrades take effect at the end of the current period, use change plan instead")
		}
		return paymentvo.PurposeActivation, nil
	default:
		return paymentvo.PurposeActivation, nil
	}
}
