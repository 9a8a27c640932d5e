package adapters

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/staffhub/staffhub/internal/application/billing/usecases"
	"github.com/staffhub/staffhub/internal/infrastructure/persistence/models"
	"github.com/staffhub/staffhub/internal/shared/logger"
	"github.com/staffhub/staffhub/internal/shared/utils/textutil"
)

type GormAuditRecorder struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewGormAuditRecorder(db *gorm.DB, logger logger.Interface) *GormAuditRecorder {
	return &GormAuditRecorder{db: db, logger: logger}
}

// Record writes outside any caller transaction; audit rows survive rollbacks.
func (r *GormAuditRecorder) Record(ctx context.Context, entry usecases.AuditEntry) error {
	model := &models.AuditLogModel{
		TenantID:    entry.TenantID,
		ActorUserID: entry.ActorUserID,
		Action:      entry.Action,
		EntityType:  entry.EntityType,
		EntityID:    entry.EntityID,
		Description: textutil.TruncateRunes(entry.Description, 1000),
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to write audit log", "action", entry.Action, "tenant_id", entry.TenantID, "error", err)
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
