package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/staffhub/staffhub/internal/application/billing/paymentgateway"
	"github.com/staffhub/staffhub/internal/domain/invoice"
	"github.com/staffhub/staffhub/internal/domain/payment"
	paymentvo "github.com/staffhub/staffhub/internal/domain/payment/valueobjects"
	"github.com/staffhub/staffhub/internal/domain/subscription"
	vo "github.com/staffhub/staffhub/internal/domain/subscription/valueobjects"
	apperrors "github.com/staffhub/staffhub/internal/shared/errors"
	"github.com/staffhub/staffhub/internal/shared/goroutine"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

const (
	maxInvoiceNumberAttempts = 5
	enrichmentTimeout        = 15 * time.Second
)

type SettleCaptureCommand struct {
	OrderID   string
	PaymentID string
	Source    string
	// ReportedAmount is the provider's captured amount in minor units, when known.
	ReportedAmount   *int64
	ReportedCurrency string
	ActorUserID      uint
}

type SettleCaptureResult struct {
	SubscriptionID  uint
	TenantID        uint
	Status          vo.SubscriptionStatus
	InvoiceNumber   string
	AlreadyCaptured bool
}

// SettleCaptureUseCase is the single apply-once path for a captured payment.
// Checkout verification and webhook delivery both end here, so whichever
// arrives second finds the payment captured and changes nothing.
type SettleCaptureUseCase struct {
	sideEffects
	lifecycle   *Lifecycle
	paymentRepo payment.PaymentRepository
	invoiceRepo invoice.InvoiceRepository
	gateway     paymentgateway.Gateway
	numbers     invoice.NumberGenerator
	taxRate     decimal.Decimal
	logger      logger.Interface
}

func NewSettleCaptureUseCase(
	lifecycle *Lifecycle,
	paymentRepo payment.PaymentRepository,
	invoiceRepo invoice.InvoiceRepository,
	gateway paymentgateway.Gateway,
	logger logger.Interface,
) *SettleCaptureUseCase {
	return &SettleCaptureUseCase{
		sideEffects: sideEffects{logger: logger},
		lifecycle:   lifecycle,
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
		gateway:     gateway,
		numbers:     invoice.NewNumberGenerator(),
		taxRate:     invoice.DefaultTaxRate,
		logger:      logger,
	}
}

func (uc *SettleCaptureUseCase) SetNumberGenerator(g invoice.NumberGenerator) {
	if g != nil {
		uc.numbers = g
	}
}

func (uc *SettleCaptureUseCase) SetTaxRate(rate decimal.Decimal) {
	uc.taxRate = rate
}

func (uc *SettleCaptureUseCase) Execute(ctx context.Context, cmd SettleCaptureCommand) (*SettleCaptureResult, error) {
	if cmd.OrderID == "" || cmd.PaymentID == "" {
		return nil, apperrors.NewValidationError("order id and payment id are required")
	}

	pay, err := uc.paymentRepo.GetByGatewayOrderID(ctx, cmd.OrderID)
	if err != nil {
		uc.logger.Errorw("failed to load payment", "order_id", cmd.OrderID, "error", err)
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if pay == nil {
		return nil, apperrors.NewNotFoundError("payment order not found", cmd.OrderID)
	}

	var (
		result   SettleCaptureResult
		captured *payment.Payment
		issued   *invoice.Invoice
		plan     *subscription.Plan
		change   subscription.StatusChange
		rejected error
		// heldForReview is set when this call parked the payment.
		heldForReview *payment.Payment
	)

	err = uc.lifecycle.Mutate(ctx, pay.SubscriptionID(), func(txCtx context.Context, sub *subscription.Subscription) (bool, error) {
		result.SubscriptionID = sub.ID()
		result.TenantID = sub.TenantID()

		p, err := uc.paymentRepo.GetByGatewayOrderIDForUpdate(txCtx, cmd.OrderID)
		if err != nil {
			return false, fmt.Errorf("failed to lock payment: %w", err)
		}
		if p == nil {
			return false, apperrors.NewNotFoundError("payment order not found", cmd.OrderID)
		}

		switch {
		case p.Status().IsCaptured() || p.Status() == paymentvo.PaymentStatusRefunded:
			if gp := p.GatewayPaymentID(); gp != nil && *gp != cmd.PaymentID {
				uc.logger.Warnw("order already captured under a different payment id",
					"order_id", cmd.OrderID,
					"stored_payment_id", *gp,
					"reported_payment_id", cmd.PaymentID,
				)
			}
			existing, err := uc.invoiceRepo.GetByPaymentID(txCtx, p.ID())
			if err != nil {
				return false, fmt.Errorf("failed to load invoice: %w", err)
			}
			if existing != nil {
				result.InvoiceNumber = existing.Number()
			}
			result.AlreadyCaptured = true
			result.Status = sub.Status()
			return false, nil
		case p.HeldForReview():
			uc.logger.Warnw("capture reported for a payment held for review",
				"order_id", cmd.OrderID,
				"payment_id", cmd.PaymentID,
				"source", cmd.Source,
			)
			return false, apperrors.NewStateConflictError("payment is held for review", cmd.OrderID)
		case !p.Status().IsCreated():
			uc.logger.Errorw("capture reported for a payment that already failed, needs manual review",
				"order_id", cmd.OrderID,
				"payment_id", cmd.PaymentID,
				"status", p.Status(),
			)
			return false, apperrors.NewStateConflictError("payment is no longer awaiting capture", p.Status().String())
		}

		now := uc.lifecycle.Now()

		if cmd.ReportedAmount != nil {
			if err := p.ValidateCapturedAmount(*cmd.ReportedAmount, cmd.ReportedCurrency); err != nil {
				uc.logger.Errorw("captured amount does not match order, holding payment for review",
					"order_id", cmd.OrderID,
					"payment_id", cmd.PaymentID,
					"expected", p.Amount().String(),
					"reported_amount", *cmd.ReportedAmount,
					"reported_currency", cmd.ReportedCurrency,
				)
				held, herr := p.HoldForReview(fmt.Sprintf("payment %s: %v", cmd.PaymentID, err), now)
				if herr != nil {
					return false, herr
				}
				if held {
					if err := uc.paymentRepo.Update(txCtx, p); err != nil {
						return false, fmt.Errorf("failed to update payment: %w", err)
					}
					heldForReview = p
				}
				rejected = apperrors.NewStateConflictError("captured amount does not match order, payment held for review").WithCause(err)
				result.Status = sub.Status()
				return false, nil
			}
		}

		if err := p.MarkCaptured(cmd.PaymentID, now); err != nil {
			return false, apperrors.NewStateConflictError("payment cannot be captured").WithCause(err)
		}

		plan, err = uc.lifecycle.resolvePlan(txCtx, p.PlanID())
		if err != nil {
			return false, err
		}

		period, c, err := sub.ApplyCapturedPayment(subscription.CaptureTerms{
			PlanID:        p.PlanID(),
			BillingCycle:  p.BillingCycle(),
			ExtendCurrent: p.Purpose() == paymentvo.PurposeRenewal,
		}, now)
		if err != nil {
			uc.logger.Errorw("captured payment cannot activate subscription, needs manual review",
				"subscription_id", sub.ID(),
				"status", sub.Status(),
				"order_id", cmd.OrderID,
				"error", err,
			)
			return false, apperrors.NewStateConflictError("subscription cannot be activated").WithCause(err)
		}
		change = c

		if err := uc.paymentRepo.Update(txCtx, p); err != nil {
			return false, fmt.Errorf("failed to update payment: %w", err)
		}

		inv, err := uc.issueInvoice(txCtx, p, period, now)
		if err != nil {
			return false, err
		}

		captured = p
		issued = inv
		result.Status = sub.Status()
		result.InvoiceNumber = inv.Number()
		return true, nil
	})
	if err != nil {
		uc.lifecycle.metrics.RecordSettlement(cmd.Source, "error")
		return nil, err
	}
	if rejected != nil {
		uc.lifecycle.metrics.RecordSettlement(cmd.Source, "amount_mismatch")
		if heldForReview != nil {
			uc.record(AuditEntry{
				ActorUserID: cmd.ActorUserID,
				TenantID:    result.TenantID,
				Action:      AuditPaymentHeld,
				EntityType:  "payment",
				EntityID:    heldForReview.ID(),
				Description: fmt.Sprintf("order %s held for review via %s: %s", cmd.OrderID, cmd.Source, *heldForReview.ErrorDetail()),
			})
		}
		return &result, rejected
	}
	if result.AlreadyCaptured {
		uc.lifecycle.metrics.RecordSettlement(cmd.Source, "duplicate")
		uc.logger.Infow("capture already settled",
			"order_id", cmd.OrderID,
			"source", cmd.Source,
		)
		return &result, nil
	}

	uc.lifecycle.metrics.RecordSettlement(cmd.Source, "applied")
	uc.lifecycle.metrics.RecordTransition(change.From.String(), change.To.String())

	uc.logger.Infow("payment captured and subscription activated",
		"order_id", cmd.OrderID,
		"payment_id", cmd.PaymentID,
		"subscription_id", result.SubscriptionID,
		"tenant_id", result.TenantID,
		"from", change.From,
		"invoice_number", issued.Number(),
		"source", cmd.Source,
	)

	uc.enrich(captured)
	uc.notify(Notification{
		UserID:   cmd.ActorUserID,
		TenantID: result.TenantID,
		Kind:     NotificationPaymentCaptured,
		Title:    "Payment received",
		Message: fmt.Sprintf("Your %s subscription is active. Invoice %s for %s %s.",
			plan.Name(), issued.Number(), issued.Total().StringFixed(2), issued.Currency()),
		Link: "/billing/invoices",
	})
	uc.record(AuditEntry{
		ActorUserID: cmd.ActorUserID,
		TenantID:    result.TenantID,
		Action:      AuditPaymentCaptured,
		EntityType:  "payment",
		EntityID:    captured.ID(),
		Description: fmt.Sprintf("order %s captured via %s, invoice %s", cmd.OrderID, cmd.Source, issued.Number()),
	})

	return &result, nil
}

// issueInvoice inserts the invoice, drawing a new number on each collision.
func (uc *SettleCaptureUseCase) issueInvoice(ctx context.Context, p *payment.Payment, period subscription.Period, now time.Time) (*invoice.Invoice, error) {
	inv, err := invoice.NewInvoice(invoice.NewInvoiceParams{
		Number:         uc.numbers.Generate(now),
		SubscriptionID: p.SubscriptionID(),
		TenantID:       p.TenantID(),
		PaymentID:      p.ID(),
		SubtotalMinor:  p.Amount().Minor(),
		TaxRate:        uc.taxRate,
		Currency:       p.Amount().Currency(),
		PeriodStart:    period.Start,
		PeriodEnd:      period.End,
		PaidAt:         now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build invoice: %w", err)
	}

	for attempt := 1; ; attempt++ {
		err := uc.invoiceRepo.Create(ctx, inv)
		if err == nil {
			return inv, nil
		}
		if !errors.Is(err, invoice.ErrDuplicateNumber) || attempt == maxInvoiceNumberAttempts {
			uc.logger.Errorw("failed to create invoice",
				"payment_id", p.ID(),
				"attempt", attempt,
				"error", err,
			)
			return nil, fmt.Errorf("failed to create invoice: %w", err)
		}
		uc.logger.Warnw("invoice number collision, retrying", "number", inv.Number(), "attempt", attempt)
		inv.Renumber(uc.numbers.Generate(now))
	}
}

// enrich records the payment method reported by the gateway. It runs after
// the commit and never affects the settlement.
func (uc *SettleCaptureUseCase) enrich(p *payment.Payment) {
	if uc.gateway == nil || p == nil || p.GatewayPaymentID() == nil {
		return
	}
	paymentID := p.ID()
	gatewayPaymentID := *p.GatewayPaymentID()

	goroutine.SafeGo(uc.logger, "payment-enrich", func() {
		ctx, cancel := context.WithTimeout(context.Background(), enrichmentTimeout)
		defer cancel()

		details, err := uc.gateway.FetchPayment(ctx, gatewayPaymentID)
		if err != nil {
			uc.logger.Warnw("failed to fetch payment details", "payment_id", gatewayPaymentID, "error", err)
			return
		}
		if details == nil || details.Method == "" {
			return
		}
		if err := uc.paymentRepo.UpdateMethod(ctx, paymentID, details.Method); err != nil {
			uc.logger.Warnw("failed to store payment method", "payment_id", paymentID, "error", err)
		}
	})
}
