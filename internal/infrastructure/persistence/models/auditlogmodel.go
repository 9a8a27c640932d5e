package models

import (
	"time"

	"github.com/staffhub/staffhub/internal/shared/constants"
)

type AuditLogModel struct {
	ID          uint   `gorm:"primaryKey"`
	TenantID    uint   `gorm:"index;not null"`
	ActorUserID uint   `gorm:"index"`
	Action      string `gorm:"size:64;not null"`
	EntityType  string `gorm:"size:32;not null"`
	EntityID    uint
	Description string    `gorm:"size:1000"`
	CreatedAt   time.Time `gorm:"index"`
}

func (AuditLogModel) TableName() string {
	return constants.TableAuditLogs
}
