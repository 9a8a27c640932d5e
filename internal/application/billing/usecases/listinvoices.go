package usecases

import (
	"context"
	"fmt"

	"github.com/staffhub/staffhub/internal/application/billing/dto"
	"github.com/staffhub/staffhub/internal/domain/invoice"
	"github.com/staffhub/staffhub/internal/shared/constants"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

type ListInvoicesQuery struct {
	TenantID uint
	Page     int
	PageSize int
}

type ListInvoicesResult struct {
	Invoices []*dto.InvoiceDTO
	Total    int64
	Page     int
	PageSize int
}

type ListInvoicesUseCase struct {
	invoiceRepo invoice.InvoiceRepository
	logger      logger.Interface
}

func NewListInvoicesUseCase(invoiceRepo invoice.InvoiceRepository, logger logger.Interface) *ListInvoicesUseCase {
	return &ListInvoicesUseCase{
		invoiceRepo: invoiceRepo,
		logger:      logger,
	}
}

func (uc *ListInvoicesUseCase) Execute(ctx context.Context, query ListInvoicesQuery) (*ListInvoicesResult, error) {
	if query.Page < 1 {
		query.Page = constants.DefaultPage
	}
	if query.PageSize < 1 || query.PageSize > constants.MaxPageSize {
		query.PageSize = constants.DefaultPageSize
	}

	invoices, total, err := uc.invoiceRepo.ListByTenant(ctx, query.TenantID, query.Page, query.PageSize)
	if err != nil {
		uc.logger.Errorw("failed to list invoices", "tenant_id", query.TenantID, "error", err)
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	return &ListInvoicesResult{
		Invoices: dto.ToInvoiceDTOList(invoices),
		Total:    total,
		Page:     query.Page,
		PageSize: query.PageSize,
	}, nil
}
