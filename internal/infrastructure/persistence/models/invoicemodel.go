package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/staffhub/staffhub/internal/shared/constants"
)

// InvoiceModel is append-only; rows are never updated.
type InvoiceModel struct {
	ID             uint            `gorm:"primaryKey"`
	Number         string          `gorm:"uniqueIndex;size:32;not null"`
	SubscriptionID uint            `gorm:"index;not null"`
	TenantID       uint            `gorm:"index;not null"`
	PaymentID      uint            `gorm:"uniqueIndex;not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Tax            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency       string          `gorm:"size:3;not null"`
	PeriodStart    time.Time       `gorm:"not null"`
	PeriodEnd      time.Time       `gorm:"not null"`
	Status         string          `gorm:"size:16;not null"`
	PaidAt         time.Time       `gorm:"not null"`
	CreatedAt      time.Time
}

func (InvoiceModel) TableName() string {
	return constants.TableInvoices
}
