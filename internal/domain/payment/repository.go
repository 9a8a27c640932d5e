package payment

import (
	"context"
	"time"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	Update(ctx context.Context, payment *Payment) error
	// UpdateMethod writes only the payment method column.
	UpdateMethod(ctx context.Context, id uint, method string) error
	GetByID(ctx context.Context, id uint) (*Payment, error)
	GetByGatewayOrderID(ctx context.Context, orderID string) (*Payment, error)
	// GetByGatewayOrderIDForUpdate row-locks the payment inside the caller's transaction.
	GetByGatewayOrderIDForUpdate(ctx context.Context, orderID string) (*Payment, error)
	GetByGatewayPaymentID(ctx context.Context, paymentID string) (*Payment, error)
	ListRecentBySubscription(ctx context.Context, subscriptionID uint, limit int) ([]*Payment, error)
	ListStaleCreated(ctx context.Context, createdBefore time.Time, limit int) ([]*Payment, error)
}
