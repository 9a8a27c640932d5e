package handlers

import (
	"context"

	"github.com/staffhub/staffhub/internal/application/billing/dto"
	"github.com/staffhub/staffhub/internal/application/billing/usecases"
)

// Use case interfaces for BillingHandler

type getCurrentSubscriptionUseCase interface {
	Execute(ctx context.Context, tenantID uint) (*dto.CurrentSubscriptionDTO, error)
}

type createOrderUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreateOrderCommand) (*dto.OrderDTO, error)
}

type verifyPaymentUseCase interface {
	Execute(ctx context.Context, cmd usecases.VerifyPaymentCommand) (*dto.VerifyPaymentDTO, error)
}

type changePlanUseCase interface {
	Execute(ctx context.Context, cmd usecases.ChangePlanCommand) (*dto.ChangePlanDTO, error)
}

type cancelSubscriptionUseCase interface {
	Execute(ctx context.Context, cmd usecases.CancelSubscriptionCommand) (*dto.CancelDTO, error)
}

type reactivateUseCase interface {
	Execute(ctx context.Context, cmd usecases.ReactivateCommand) (*dto.ReactivateDTO, error)
}

type listInvoicesUseCase interface {
	Execute(ctx context.Context, query usecases.ListInvoicesQuery) (*usecases.ListInvoicesResult, error)
}

type registerTrialUseCase interface {
	Execute(ctx context.Context, cmd usecases.RegisterTrialCommand) (*usecases.RegisterTrialResult, error)
}

type ingestWebhookUseCase interface {
	Execute(ctx context.Context, cmd usecases.IngestWebhookCommand) (*usecases.IngestWebhookResult, error)
}
