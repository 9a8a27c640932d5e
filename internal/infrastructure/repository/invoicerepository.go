package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/staffhub/staffhub/internal/domain/invoice"
	"github.com/staffhub/staffhub/internal/infrastructure/persistence/mappers"
	"github.com/staffhub/staffhub/internal/infrastructure/persistence/models"
	"github.com/staffhub/staffhub/internal/shared/db"
	"github.com/staffhub/staffhub/internal/shared/errors"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

type InvoiceRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewInvoiceRepository(db *gorm.DB, logger logger.Interface) invoice.InvoiceRepository {
	return &InvoiceRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *InvoiceRepositoryImpl) Create(ctx context.Context, inv *invoice.Invoice) error {
	model := mappers.InvoiceToModel(inv)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			if strings.Contains(err.Error(), "payment_id") {
				return invoice.ErrDuplicatePayment
			}
			return invoice.ErrDuplicateNumber
		}
		r.logger.Errorw("failed to create invoice", "number", inv.Number(), "error", err)
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	inv.SetID(model.ID)
	r.logger.Infow("invoice issued", "id", model.ID, "number", model.Number, "payment_id", model.PaymentID)
	return nil
}

func (r *InvoiceRepositoryImpl) GetByPaymentID(ctx context.Context, paymentID uint) (*invoice.Invoice, error) {
	var model models.InvoiceModel
	if err := db.GetTxFromContext(ctx, r.db).Where("payment_id = ?", paymentID).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get invoice by payment", "payment_id", paymentID, "error", err)
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return mappers.InvoiceToDomain(&model), nil
}

func (r *InvoiceRepositoryImpl) ListByTenant(ctx context.Context, tenantID uint, page, pageSize int) ([]*invoice.Invoice, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.InvoiceModel{}).Where("tenant_id = ?", tenantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count invoices", "tenant_id", tenantID, "error", err)
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	var list []*models.InvoiceModel
	if err := query.Order("paid_at DESC, id DESC").Scopes(db.Paginate(page, pageSize)).Find(&list).Error; err != nil {
		r.logger.Errorw("failed to list invoices", "tenant_id", tenantID, "error", err)
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}

	invoices := make([]*invoice.Invoice, 0, len(list))
	for _, m := range list {
		invoices = append(invoices, mappers.InvoiceToDomain(m))
	}
	return invoices, total, nil
}
