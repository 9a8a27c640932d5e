package mappers

import (
	"github.com/staffhub/staffhub/internal/domain/invoice"
	"github.com/staffhub/staffhub/internal/infrastructure/persistence/models"
)

func InvoiceToModel(inv *invoice.Invoice) *models.InvoiceModel {
	return &models.InvoiceModel{
		ID:             inv.ID(),
		Number:         inv.Number(),
		SubscriptionID: inv.SubscriptionID(),
		TenantID:       inv.TenantID(),
		PaymentID:      inv.PaymentID(),
		Subtotal:       inv.Subtotal(),
		Tax:            inv.Tax(),
		Total:          inv.Total(),
		Currency:       inv.Currency(),
		PeriodStart:    inv.PeriodStart(),
		PeriodEnd:      inv.PeriodEnd(),
		Status:         inv.Status(),
		PaidAt:         inv.PaidAt(),
		CreatedAt:      inv.CreatedAt(),
	}
}

func InvoiceToDomain(model *models.InvoiceModel) *invoice.Invoice {
	return invoice.ReconstructInvoice(invoice.ReconstructParams{
		ID:             model.ID,
		Number:         model.Number,
		SubscriptionID: model.SubscriptionID,
		TenantID:       model.TenantID,
		PaymentID:      model.PaymentID,
		Subtotal:       model.Subtotal,
		Tax:            model.Tax,
		Total:          model.Total,
		Currency:       model.Currency,
		PeriodStart:    model.PeriodStart.UTC(),
		PeriodEnd:      model.PeriodEnd.UTC(),
		Status:         model.Status,
		PaidAt:         model.PaidAt.UTC(),
		CreatedAt:      model.CreatedAt.UTC(),
	})
}
