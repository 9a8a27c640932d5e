package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/staffhub/staffhub/internal/application/billing/paymentgateway"
	"github.com/staffhub/staffhub/internal/domain/payment"
	"github.com/staffhub/staffhub/internal/domain/subscription"
	"github.com/staffhub/staffhub/internal/domain/webhook"
	apperrors "github.com/staffhub/staffhub/internal/shared/errors"
	"github.com/staffhub/staffhub/internal/shared/logger"
	"github.com/staffhub/staffhub/internal/shared/utils/textutil"
)

type IngestWebhookCommand struct {
	RawBody   []byte
	Signature string
	// EventID is the provider's delivery id header, used when the body has none.
	EventID string
}

type IngestWebhookResult struct {
	EventType string
	Outcome   webhook.Outcome
}

type webhookEnvelope struct {
	ID      string `json:"id"`
	Event   string `json:"event"`
	Payload struct {
		Payment *struct {
			Entity webhookPaymentEntity `json:"entity"`
		} `json:"payment"`
		Refund *struct {
			Entity webhookRefundEntity `json:"entity"`
		} `json:"refund"`
	} `json:"payload"`
	CreatedAt int64 `json:"created_at"`
}

type webhookPaymentEntity struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	// Amount is nil when the provider leaves it out; the stored order amount
	// then stands.
	Amount           *int64 `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	Method           string `json:"method"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
}

type webhookRefundEntity struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

// IngestWebhookUseCase applies provider events. Only a bad signature is
// reported to the caller; every other problem is logged and recorded so the
// provider is told the delivery succeeded and stops retrying.
type IngestWebhookUseCase struct {
	sideEffects
	gateway     paymentgateway.Gateway
	lifecycle   *Lifecycle
	paymentRepo payment.PaymentRepository
	deliveries  webhook.Repository
	settle      *SettleCaptureUseCase
	logger      logger.Interface
}

func NewIngestWebhookUseCase(
	gateway paymentgateway.Gateway,
	lifecycle *Lifecycle,
	paymentRepo payment.PaymentRepository,
	deliveries webhook.Repository,
	settle *SettleCaptureUseCase,
	logger logger.Interface,
) *IngestWebhookUseCase {
	return &IngestWebhookUseCase{
		sideEffects: sideEffects{logger: logger},
		gateway:     gateway,
		lifecycle:   lifecycle,
		paymentRepo: paymentRepo,
		deliveries:  deliveries,
		settle:      settle,
		logger:      logger,
	}
}

func (uc *IngestWebhookUseCase) Execute(ctx context.Context, cmd IngestWebhookCommand) (*IngestWebhookResult, error) {
	if !uc.gateway.VerifyWebhookSignature(cmd.RawBody, cmd.Signature) {
		uc.lifecycle.metrics.RecordWebhook("unknown", "bad_signature")
		uc.logger.Warnw("webhook signature rejected",
			"event_id", cmd.EventID,
			"body_size", len(cmd.RawBody),
		)
		return nil, apperrors.NewSignatureError("webhook signature verification failed")
	}

	delivery := &webhook.Delivery{
		SignatureValid: true,
		ReceivedAt:     uc.lifecycle.Now(),
	}

	var env webhookEnvelope
	if err := json.Unmarshal(cmd.RawBody, &env); err != nil {
		uc.logger.Warnw("malformed webhook body", "event_id", cmd.EventID, "error", err)
		delivery.EventType = "unknown"
		delivery.Outcome = webhook.OutcomeIgnored
		delivery.SetError("malformed body")
		uc.finish(ctx, eventIDOf(env, cmd), delivery)
		return &IngestWebhookResult{EventType: delivery.EventType, Outcome: delivery.Outcome}, nil
	}
	delivery.EventType = env.Event

	eventID := eventIDOf(env, cmd)
	if eventID != "" {
		applied, err := uc.deliveries.IsApplied(ctx, eventID)
		if err != nil {
			uc.logger.Warnw("failed to check webhook delivery log", "event_id", eventID, "error", err)
		}
		if applied {
			delivery.Outcome = webhook.OutcomeDuplicate
			uc.finish(ctx, eventID, delivery)
			return &IngestWebhookResult{EventType: env.Event, Outcome: delivery.Outcome}, nil
		}
	}

	outcome, err := uc.dispatch(ctx, env, delivery)
	delivery.Outcome = outcome
	if err != nil {
		delivery.SetError(err.Error())
		uc.logger.Errorw("webhook processing failed",
			"event_id", eventID,
			"event", env.Event,
			"entity_id", delivery.EntityID,
			"error", err,
		)
	}
	uc.finish(ctx, eventID, delivery)

	return &IngestWebhookResult{EventType: env.Event, Outcome: outcome}, nil
}

func eventIDOf(env webhookEnvelope, cmd IngestWebhookCommand) string {
	if env.ID != "" {
		return env.ID
	}
	return cmd.EventID
}

func (uc *IngestWebhookUseCase) finish(ctx context.Context, eventID string, d *webhook.Delivery) {
	if eventID != "" {
		d.ProviderEventID = &eventID
	}
	uc.lifecycle.metrics.RecordWebhook(d.EventType, string(d.Outcome))
	if err := uc.deliveries.Record(ctx, d); err != nil {
		uc.logger.Warnw("failed to record webhook delivery", "event_id", eventID, "error", err)
	}
	uc.logger.Infow("webhook processed",
		"event_id", eventID,
		"event", d.EventType,
		"entity_id", d.EntityID,
		"outcome", d.Outcome,
	)
}

func (uc *IngestWebhookUseCase) dispatch(ctx context.Context, env webhookEnvelope, d *webhook.Delivery) (webhook.Outcome, error) {
	switch env.Event {
	case webhook.EventPaymentCaptured:
		if env.Payload.Payment == nil {
			return webhook.OutcomeIgnored, fmt.Errorf("payment entity missing")
		}
		entity := env.Payload.Payment.Entity
		d.EntityID = entity.ID
		return uc.applyCapture(ctx, entity)
	case webhook.EventPaymentFailed:
		if env.Payload.Payment == nil {
			return webhook.OutcomeIgnored, fmt.Errorf("payment entity missing")
		}
		entity := env.Payload.Payment.Entity
		d.EntityID = entity.ID
		return uc.applyFailure(ctx, entity)
	case webhook.EventRefundCreated:
		if env.Payload.Refund == nil {
			return webhook.OutcomeIgnored, fmt.Errorf("refund entity missing")
		}
		entity := env.Payload.Refund.Entity
		d.EntityID = entity.PaymentID
		return uc.applyRefund(ctx, entity)
	default:
		return webhook.OutcomeIgnored, nil
	}
}

func (uc *IngestWebhookUseCase) applyCapture(ctx context.Context, entity webhookPaymentEntity) (webhook.Outcome, error) {
	result, err := uc.settle.Execute(ctx, SettleCaptureCommand{
		OrderID:          entity.OrderID,
		PaymentID:        entity.ID,
		Source:           SourceWebhook,
		ReportedAmount:   entity.Amount,
		ReportedCurrency: entity.Currency,
	})
	switch {
	case apperrors.IsNotFoundError(err):
		return webhook.OutcomeIgnored, nil
	case err != nil:
		return webhook.OutcomeFailed, err
	case result.AlreadyCaptured:
		return webhook.OutcomeDuplicate, nil
	default:
		return webhook.OutcomeApplied, nil
	}
}

func (uc *IngestWebhookUseCase) applyFailure(ctx context.Context, entity webhookPaymentEntity) (webhook.Outcome, error) {
	pay, err := uc.paymentRepo.GetByGatewayOrderID(ctx, entity.OrderID)
	if err != nil {
		return webhook.OutcomeFailed, fmt.Errorf("failed to load payment: %w", err)
	}
	if pay == nil {
		return webhook.OutcomeIgnored, nil
	}

	detail := entity.ErrorDescription
	if detail == "" {
		detail = entity.ErrorCode
	}
	detail = textutil.TruncateRunes(detail, payment.MaxErrorDetailLength)

	outcome := webhook.OutcomeDuplicate
	err = uc.lifecycle.Mutate(ctx, pay.SubscriptionID(), func(txCtx context.Context, _ *subscription.Subscription) (bool, error) {
		p, err := uc.paymentRepo.GetByGatewayOrderIDForUpdate(txCtx, entity.OrderID)
		if err != nil {
			return false, fmt.Errorf("failed to lock payment: %w", err)
		}
		if p == nil || !p.Status().IsCreated() {
			return false, nil
		}
		if p.HeldForReview() {
			outcome = webhook.OutcomeIgnored
			return false, nil
		}
		if _, err := p.MarkFailed(detail, uc.lifecycle.Now()); err != nil {
			return false, err
		}
		if err := uc.paymentRepo.Update(txCtx, p); err != nil {
			return false, fmt.Errorf("failed to update payment: %w", err)
		}
		outcome = webhook.OutcomeApplied
		return false, nil
	})
	if err != nil {
		return webhook.OutcomeFailed, err
	}

	if outcome == webhook.OutcomeApplied {
		uc.notify(Notification{
			TenantID: pay.TenantID(),
			Kind:     NotificationPaymentFailed,
			Title:    "Payment failed",
			Message:  fmt.Sprintf("Your payment of %s did not go through. Please try again.", pay.Amount().String()),
			Link:     "/billing/checkout",
		})
		uc.record(AuditEntry{
			TenantID:    pay.TenantID(),
			Action:      AuditPaymentFailed,
			EntityType:  "payment",
			EntityID:    pay.ID(),
			Description: fmt.Sprintf("order %s failed: %s", entity.OrderID, detail),
		})
	}
	return outcome, nil
}

func (uc *IngestWebhookUseCase) applyRefund(ctx context.Context, entity webhookRefundEntity) (webhook.Outcome, error) {
	pay, err := uc.paymentRepo.GetByGatewayPaymentID(ctx, entity.PaymentID)
	if err != nil {
		return webhook.OutcomeFailed, fmt.Errorf("failed to load payment: %w", err)
	}
	if pay == nil {
		return webhook.OutcomeIgnored, nil
	}

	outcome := webhook.OutcomeDuplicate
	err = uc.lifecycle.Mutate(ctx, pay.SubscriptionID(), func(txCtx context.Context, _ *subscription.Subscription) (bool, error) {
		p, err := uc.paymentRepo.GetByGatewayOrderIDForUpdate(txCtx, pay.GatewayOrderID())
		if err != nil {
			return false, fmt.Errorf("failed to lock payment: %w", err)
		}
		if p == nil {
			return false, nil
		}
		changed, err := p.MarkRefunded(uc.lifecycle.Now())
		if err != nil {
			return false, err
		}
		if !changed {
			return false, nil
		}
		if err := uc.paymentRepo.Update(txCtx, p); err != nil {
			return false, fmt.Errorf("failed to update payment: %w", err)
		}
		outcome = webhook.OutcomeApplied
		return false, nil
	})
	if err != nil {
		return webhook.OutcomeFailed, err
	}

	if outcome == webhook.OutcomeApplied {
		uc.notify(Notification{
			TenantID: pay.TenantID(),
			Kind:     NotificationPaymentRefunded,
			Title:    "Refund processed",
			Message:  fmt.Sprintf("A refund for %s has been issued.", pay.Amount().String()),
			Link:     "/billing/invoices",
		})
		uc.record(AuditEntry{
			TenantID:    pay.TenantID(),
			Action:      AuditPaymentRefunded,
			EntityType:  "payment",
			EntityID:    pay.ID(),
			Description: fmt.Sprintf("refund %s for payment %s", entity.ID, entity.PaymentID),
		})
	}
	return outcome, nil
}
