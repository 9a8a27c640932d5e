package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/staffhub/staffhub/internal/application/billing/dto"
	"github.com/staffhub/staffhub/internal/domain/subscription"
	apperrors "github.com/staffhub/staffhub/internal/shared/errors"
	"github.com/staffhub/staffhub/internal/shared/logger"
	"github.com/staffhub/staffhub/internal/shared/utils"
)

const maxCancelReasonLength = 500

type CancelSubscriptionCommand struct {
	TenantID    uint
	ActorUserID uint
	Reason      string
	Immediate   bool
}

type CancelSubscriptionUseCase struct {
	sideEffects
	lifecycle *Lifecycle
	logger    logger.Interface
}

func NewCancelSubscriptionUseCase(lifecycle *Lifecycle, logger logger.Interface) *CancelSubscriptionUseCase {
	return &CancelSubscriptionUseCase{
		sideEffects: sideEffects{logger: logger},
		lifecycle:   lifecycle,
		logger:      logger,
	}
}

func (uc *CancelSubscriptionUseCase) Execute(ctx context.Context, cmd CancelSubscriptionCommand) (*dto.CancelDTO, error) {
	reason := utils.SanitizeText(cmd.Reason)
	if utf8.RuneCountInString(reason) > maxCancelReasonLength {
		return nil, apperrors.NewValidationError(fmt.Sprintf("reason must be at most %d characters", maxCancelReasonLength))
	}

	sub, err := uc.lifecycle.requireSubscription(ctx, cmd.TenantID)
	if err != nil {
		return nil, err
	}

	var (
		out    dto.CancelDTO
		change *subscription.StatusChange
	)
	err = uc.lifecycle.Mutate(ctx, sub.ID(), func(_ context.Context, s *subscription.Subscription) (bool, error) {
		c, err := s.Cancel(reason, cmd.Immediate, uc.lifecycle.Now())
		if err != nil {
			if errors.Is(err, subscription.ErrNotCancellable) {
				return false, apperrors.NewStateConflictError("subscription is already inactive", s.Status().String())
			}
			return false, apperrors.NewStateConflictError("subscription cannot be cancelled").WithCause(err)
		}
		change = c
		out.Status = s.Status().String()
		out.CancelsAtPeriodEnd = s.CancelsAtPeriodEnd()
		if cancellation := s.Cancellation(); cancellation != nil {
			out.EffectiveDate = cancellation.EffectiveAt
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if change != nil {
		uc.lifecycle.metrics.RecordTransition(change.From.String(), change.To.String())
	}
	uc.logger.Infow("subscription cancelled",
		"tenant_id", cmd.TenantID,
		"subscription_id", sub.ID(),
		"immediate", cmd.Immediate,
		"status", out.Status,
		"effective_at", out.EffectiveDate,
	)

	message := "Your subscription has been cancelled."
	if out.CancelsAtPeriodEnd {
		message = fmt.Sprintf("Your subscription will end on %s. You can reactivate it until then.", out.EffectiveDate.Format(time.DateOnly))
	}
	uc.notify(Notification{
		UserID:   cmd.ActorUserID,
		TenantID: cmd.TenantID,
		Kind:     NotificationSubscriptionEnds,
		Title:    "Subscription cancelled",
		Message:  message,
		Link:     apperrors.RedirectBilling,
	})
	uc.record(AuditEntry{
		ActorUserID: cmd.ActorUserID,
		TenantID:    cmd.TenantID,
		Action:      AuditCancelled,
		EntityType:  "subscription",
		EntityID:    sub.ID(),
		Description: fmt.Sprintf("immediate=%t reason=%q", cmd.Immediate, reason),
	})

	return &out, nil
}
