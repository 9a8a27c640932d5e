package models

import (
	"time"

	"github.com/staffhub/staffhub/internal/shared/constants"
)

// WebhookEventModel logs provider deliveries. Rows without a provider event
// id are never deduplicated.
type WebhookEventModel struct {
	ID              uint    `gorm:"primaryKey"`
	ProviderEventID *string `gorm:"uniqueIndex;size:64"`
	EventType       string  `gorm:"size:64;not null;index"`
	EntityID        string  `gorm:"size:64;index"`
	SignatureValid  bool    `gorm:"not null"`
	Outcome         string  `gorm:"size:16;not null"`
	Error           string  `gorm:"size:500"`
	Attempts        int     `gorm:"not null;default:1"`
	ReceivedAt      time.Time
	UpdatedAt       time.Time
}

func (WebhookEventModel) TableName() string {
	return constants.TableWebhookEvents
}
