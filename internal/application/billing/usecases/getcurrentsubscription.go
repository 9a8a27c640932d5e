package usecases

import (
	"context"
	"fmt"

	"github.com/staffhub/staffhub/internal/application/billing/dto"
	"github.com/staffhub/staffhub/internal/domain/payment"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

const defaultRecentPayments = 5

type GetCurrentSubscriptionUseCase struct {
	lifecycle   *Lifecycle
	paymentRepo payment.PaymentRepository
	recentLimit int
	logger      logger.Interface
}

func NewGetCurrentSubscriptionUseCase(
	lifecycle *Lifecycle,
	paymentRepo payment.PaymentRepository,
	recentLimit int,
	logger logger.Interface,
) *GetCurrentSubscriptionUseCase {
	if recentLimit <= 0 {
		recentLimit = defaultRecentPayments
	}
	return &GetCurrentSubscriptionUseCase{
		lifecycle:   lifecycle,
		paymentRepo: paymentRepo,
		recentLimit: recentLimit,
		logger:      logger,
	}
}

func (uc *GetCurrentSubscriptionUseCase) Execute(ctx context.Context, tenantID uint) (*dto.CurrentSubscriptionDTO, error) {
	sub, err := uc.lifecycle.requireSubscription(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	plan, err := uc.lifecycle.resolvePlan(ctx, sub.PlanID())
	if err != nil {
		return nil, err
	}

	seats, err := uc.lifecycle.countSeats(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	payments, err := uc.paymentRepo.ListRecentBySubscription(ctx, sub.ID(), uc.recentLimit)
	if err != nil {
		uc.logger.Errorw("failed to list recent payments", "subscription_id", sub.ID(), "error", err)
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return &dto.CurrentSubscriptionDTO{
		Subscription:   dto.ToSubscriptionDTO(sub),
		Plan:           dto.ToPlanDTO(plan),
		Usage:          dto.ToUsageDTO(plan, seats),
		DaysRemaining:  sub.DaysRemaining(uc.lifecycle.Now()),
		RecentPayments: dto.ToPaymentDTOList(payments),
	}, nil
}
