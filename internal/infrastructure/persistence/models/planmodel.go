package models

import (
	"time"

	"gorm.io/datatypes"

	vo "github.com/staffhub/staffhub/internal/domain/subscription/valueobjects"
	"github.com/staffhub/staffhub/internal/shared/constants"
)

// PlanModel represents the database persistence model for catalog plans
// This is the anti-corruption layer between domain and database
type PlanModel struct {
	ID           uint                                `gorm:"primarykey"`
	Slug         string                              `gorm:"uniqueIndex;not null;size:50"`
	Name         string                              `gorm:"not null;size:100"`
	Description  string                              `gorm:"size:500"`
	MonthlyPrice int64                               `gorm:"not null"`
	YearlyPrice  int64                               `gorm:"not null"`
	Currency     string                              `gorm:"not null;size:3"`
	MaxEmployees int                                 `gorm:"not null"`
	TrialDays    int                                 `gorm:"not null"`
	Features     datatypes.JSONType[vo.PlanFeatures] `gorm:"type:json"`
	IsCustom     bool                                `gorm:"not null"`
	IsActive     bool                                `gorm:"not null;index"`
	SortOrder    int                                 `gorm:"not null"`
	Version      int                                 `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the table name for GORM
func (PlanModel) TableName() string {
	return constants.TablePlans
}
