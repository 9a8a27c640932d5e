package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/staffhub/staffhub/internal/shared/constants"
)

type PaymentModel struct {
	ID               uint    `gorm:"primaryKey"`
	SubscriptionID   uint    `gorm:"index;not null"`
	TenantID         uint    `gorm:"index;not null"`
	PlanID           uint    `gorm:"not null"`
	BillingCycle     string  `gorm:"size:10;not null"`
	Purpose          string  `gorm:"size:20;not null"`
	Amount           int64   `gorm:"not null"`
	Currency         string  `gorm:"size:3;not null"`
	GatewayOrderID   string  `gorm:"uniqueIndex;size:64;not null"`
	GatewayPaymentID *string `gorm:"uniqueIndex;size:64"`
	Status           string  `gorm:"size:20;not null;index:idx_payment_status_created,priority:1"`
	Receipt          string  `gorm:"uniqueIndex;size:40;not null"`
	Method           *string `gorm:"size:32"`
	ErrorDetail      *string `gorm:"size:500"`
	HeldForReview    bool    `gorm:"not null;default:false"`
	Notes            datatypes.JSON
	CreatedAt        time.Time `gorm:"index:idx_payment_status_created,priority:2"`
	CapturedAt       *time.Time
	FailedAt         *time.Time
	RefundedAt       *time.Time
	UpdatedAt        time.Time
}

func (PaymentModel) TableName() string {
	return constants.TablePayments
}
