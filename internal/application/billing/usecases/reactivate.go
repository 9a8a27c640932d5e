package usecases

import (
	"context"

	"github.com/staffhub/staffhub/internal/application/billing/dto"
	"github.com/staffhub/staffhub/internal/domain/subscription"
	apperrors "github.com/staffhub/staffhub/internal/shared/errors"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

type ReactivateCommand struct {
	TenantID    uint
	ActorUserID uint
}

// ReactivateUseCase withdraws a scheduled cancellation. Lapsed subscriptions
// are told to pay instead.
type ReactivateUseCase struct {
	sideEffects
	lifecycle *Lifecycle
	logger    logger.Interface
}

func NewReactivateUseCase(lifecycle *Lifecycle, logger logger.Interface) *ReactivateUseCase {
	return &ReactivateUseCase{
		sideEffects: sideEffects{logger: logger},
		lifecycle:   lifecycle,
		logger:      logger,
	}
}

func (uc *ReactivateUseCase) Execute(ctx context.Context, cmd ReactivateCommand) (*dto.ReactivateDTO, error) {
	sub, err := uc.lifecycle.requireSubscription(ctx, cmd.TenantID)
	if err != nil {
		return nil, err
	}

	var (
		out       dto.ReactivateDTO
		withdrawn bool
	)
	err = uc.lifecycle.Mutate(ctx, sub.ID(), func(_ context.Context, s *subscription.Subscription) (bool, error) {
		scheduled := s.CancelsAtPeriodEnd()
		result := s.Reactivate(uc.lifecycle.Now())
		out.Result = string(result)
		out.Status = s.Status().String()
		withdrawn = scheduled && !s.CancelsAtPeriodEnd()
		return withdrawn, nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("reactivation requested",
		"tenant_id", cmd.TenantID,
		"subscription_id", sub.ID(),
		"result", out.Result,
		"withdrawn", withdrawn,
	)

	if withdrawn {
		uc.notify(Notification{
			UserID:   cmd.ActorUserID,
			TenantID: cmd.TenantID,
			Kind:     NotificationReactivated,
			Title:    "Subscription reactivated",
			Message:  "Your scheduled cancellation has been withdrawn.",
			Link:     apperrors.RedirectBilling,
		})
		uc.record(AuditEntry{
			ActorUserID: cmd.ActorUserID,
			TenantID:    cmd.TenantID,
			Action:      AuditReactivated,
			EntityType:  "subscription",
			EntityID:    sub.ID(),
			Description: "scheduled cancellation withdrawn",
		})
	}
	return &out, nil
}
