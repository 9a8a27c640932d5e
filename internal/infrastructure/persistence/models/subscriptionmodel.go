package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/staffhub/staffhub/internal/shared/constants"
)

// SubscriptionModel represents the database persistence model for subscriptions
// Cancellation and the pending plan change are flattened into nullable columns.
type SubscriptionModel struct {
	ID                 uint   `gorm:"primarykey"`
	TenantID           uint   `gorm:"uniqueIndex;not null"`
	PlanID             uint   `gorm:"not null;index"`
	Status             string `gorm:"not null;size:20;index"`
	BillingCycle       string `gorm:"not null;size:10"`
	TrialStart         *time.Time
	TrialEnd           *time.Time
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time `gorm:"index"`
	AutoRenew          bool       `gorm:"not null"`

	CancelRequestedAt  *time.Time
	CancelledAt        *time.Time
	CancelReason       *string `gorm:"size:500"`
	CancelEffectiveAt  *time.Time
	CancelImmediate    bool `gorm:"not null"`
	CancelsAtPeriodEnd bool `gorm:"not null"`

	PendingPlanID       *uint
	PendingBillingCycle *string `gorm:"size:10"`
	PendingEffectiveAt  *time.Time
	PendingRequestedAt  *time.Time

	Version   int `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (SubscriptionModel) TableName() string {
	return constants.TableSubscriptions
}

// BeforeCreate hook for GORM
func (s *SubscriptionModel) BeforeCreate(tx *gorm.DB) error {
	if s.Version == 0 {
		s.Version = 1
	}
	return nil
}
