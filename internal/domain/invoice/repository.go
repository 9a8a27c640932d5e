package invoice

import "context"

type InvoiceRepository interface {
	// Create returns ErrDuplicateNumber or ErrDuplicatePayment on the
	// corresponding uniqueness violation.
	Create(ctx context.Context, invoice *Invoice) error
	GetByPaymentID(ctx context.Context, paymentID uint) (*Invoice, error)
	ListByTenant(ctx context.Context, tenantID uint, page, pageSize int) ([]*Invoice, int64, error)
}
