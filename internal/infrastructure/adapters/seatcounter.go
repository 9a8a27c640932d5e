package adapters

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/staffhub/staffhub/internal/infrastructure/persistence/models"
	"github.com/staffhub/staffhub/internal/shared/db"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

// EmployeeSeatCounter counts active, non-deleted employees as billed seats.
type EmployeeSeatCounter struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewEmployeeSeatCounter(db *gorm.DB, logger logger.Interface) *EmployeeSeatCounter {
	return &EmployeeSeatCounter{db: db, logger: logger}
}

func (c *EmployeeSeatCounter) CountActiveSeats(ctx context.Context, tenantID uint) (int, error) {
	var count int64
	if err := db.GetTxFromContext(ctx, c.db).
		Model(&models.EmployeeModel{}).
		Where("tenant_id = ? AND status = ?", tenantID, models.EmployeeStatusActive).
		Count(&count).Error; err != nil {
		c.logger.Errorw("failed to count active seats", "tenant_id", tenantID, "error", err)
		return 0, fmt.Errorf("failed to count seats: %w", err)
	}
	return int(count), nil
}
