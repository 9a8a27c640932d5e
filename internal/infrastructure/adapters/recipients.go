package adapters

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/staffhub/staffhub/internal/infrastructure/persistence/models"
	"github.com/staffhub/staffhub/internal/shared/constants"
)

// Employee roles that receive tenant-wide billing notices.
var billingRoles = []string{constants.RoleOwner, constants.RoleAdmin}

type Recipient struct {
	Email string
	Name  string
}

// EmployeeRecipientResolver maps a notification target onto mailboxes.
type EmployeeRecipientResolver struct {
	db *gorm.DB
}

func NewEmployeeRecipientResolver(db *gorm.DB) *EmployeeRecipientResolver {
	return &EmployeeRecipientResolver{db: db}
}

// Resolve returns the acting user when known, otherwise the tenant's owners
// and admins.
func (r *EmployeeRecipientResolver) Resolve(ctx context.Context, tenantID, userID uint) ([]Recipient, error) {
	query := r.db.WithContext(ctx).
		Model(&models.EmployeeModel{}).
		Where("tenant_id = ? AND status = ?", tenantID, models.EmployeeStatusActive)
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	} else {
		query = query.Where("role IN ?", billingRoles)
	}

	var rows []models.EmployeeModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve recipients: %w", err)
	}

	out := make([]Recipient, 0, len(rows))
	for _, row := range rows {
		out = append(out, Recipient{Email: row.Email, Name: row.Name})
	}
	return out, nil
}
