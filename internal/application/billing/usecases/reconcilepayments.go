package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/staffhub/staffhub/internal/domain/payment"
	"github.com/staffhub/staffhub/internal/domain/subscription"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

const (
	defaultStalePaymentAge = 24 * time.Hour
	reconcileBatchSize     = 100
)

type ReconcileResult struct {
	Examined int
	Failed   int
}

// ReconcilePaymentsUseCase fails checkout attempts that never completed.
type ReconcilePaymentsUseCase struct {
	lifecycle   *Lifecycle
	paymentRepo payment.PaymentRepository
	maxAge      time.Duration
	logger      logger.Interface
}

func NewReconcilePaymentsUseCase(
	lifecycle *Lifecycle,
	paymentRepo payment.PaymentRepository,
	maxAge time.Duration,
	logger logger.Interface,
) *ReconcilePaymentsUseCase {
	if maxAge <= 0 {
		maxAge = defaultStalePaymentAge
	}
	return &ReconcilePaymentsUseCase{
		lifecycle:   lifecycle,
		paymentRepo: paymentRepo,
		maxAge:      maxAge,
		logger:      logger,
	}
}

func (uc *ReconcilePaymentsUseCase) Execute(ctx context.Context) (*ReconcileResult, error) {
	cutoff := uc.lifecycle.Now().Add(-uc.maxAge)
	stale, err := uc.paymentRepo.ListStaleCreated(ctx, cutoff, reconcileBatchSize)
	if err != nil {
		uc.logger.Errorw("failed to list stale payments", "error", err)
		return nil, fmt.Errorf("failed to list stale payments: %w", err)
	}

	result := &ReconcileResult{Examined: len(stale)}
	detail := fmt.Sprintf("no capture within %s", uc.maxAge)

	for _, p := range stale {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		orderID := p.GatewayOrderID()
		failed := false
		err := uc.lifecycle.Mutate(ctx, p.SubscriptionID(), func(txCtx context.Context, _ *subscription.Subscription) (bool, error) {
			locked, err := uc.paymentRepo.GetByGatewayOrderIDForUpdate(txCtx, orderID)
			if err != nil {
				return false, err
			}
			if locked == nil || !locked.IsStale(uc.lifecycle.Now(), uc.maxAge) {
				return false, nil
			}
			changed, err := locked.MarkFailed(detail, uc.lifecycle.Now())
			if err != nil || !changed {
				return false, err
			}
			if err := uc.paymentRepo.Update(txCtx, locked); err != nil {
				return false, err
			}
			failed = true
			return false, nil
		})
		if err != nil {
			uc.logger.Warnw("failed to reconcile payment", "order_id", orderID, "error", err)
			continue
		}
		if failed {
			result.Failed++
			uc.logger.Infow("stale payment marked failed", "order_id", orderID, "created_at", p.CreatedAt())
		}
	}

	uc.lifecycle.metrics.RecordReconciled(result.Failed)
	uc.logger.Infow("payment reconciliation finished",
		"examined", result.Examined,
		"failed", result.Failed,
	)
	return result, nil
}
