package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/staffhub/staffhub/internal/shared/constants"
)

// Employee statuses that matter for seat counting.
const (
	EmployeeStatusActive   = "active"
	EmployeeStatusInactive = "inactive"
)

// EmployeeModel is the slice of the HR directory billing reads: who counts
// as a seat, and who receives billing notices.
type EmployeeModel struct {
	ID        uint   `gorm:"primaryKey"`
	TenantID  uint   `gorm:"not null;index:idx_employee_tenant_status,priority:1"`
	UserID    *uint  `gorm:"index"`
	Email     string `gorm:"size:255;not null"`
	Name      string `gorm:"size:100;not null"`
	Role      string `gorm:"size:20;not null"`
	Status    string `gorm:"size:20;not null;index:idx_employee_tenant_status,priority:2"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (EmployeeModel) TableName() string {
	return constants.TableEmployees
}
