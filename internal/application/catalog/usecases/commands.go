package usecases

import (
	"strings"

	"github.com/staffhub/staffhub/internal/domain/subscription"
	vo "github.com/staffhub/staffhub/internal/domain/subscription/valueobjects"
	"github.com/staffhub/staffhub/internal/shared/utils"
)

// PlanInput is the admin payload for creating or editing a plan.
// Prices are in minor currency units.
type PlanInput struct {
	Slug         string          `json:"slug" validate:"required,max=50"`
	Name         string          `json:"name" validate:"required,max=100"`
	Description  string          `json:"description" validate:"max=1000"`
	MonthlyPrice int64           `json:"monthly_price" validate:"gte=0"`
	YearlyPrice  int64           `json:"yearly_price" validate:"gte=0"`
	Currency     string          `json:"currency" validate:"required,len=3"`
	MaxEmployees int             `json:"max_employees" validate:"gte=-1"`
	TrialDays    int             `json:"trial_days" validate:"gte=0,max=90"`
	Features     vo.PlanFeatures `json:"features"`
	IsCustom     bool            `json:"is_custom"`
	SortOrder    int             `json:"sort_order"`
}

func (in PlanInput) toParams() subscription.PlanParams {
	return subscription.PlanParams{
		Slug:         strings.ToLower(strings.TrimSpace(in.Slug)),
		Name:         strings.TrimSpace(in.Name),
		Description:  utils.SanitizeText(in.Description),
		MonthlyPrice: in.MonthlyPrice,
		YearlyPrice:  in.YearlyPrice,
		Currency:     strings.ToUpper(in.Currency),
		MaxEmployees: in.MaxEmployees,
		TrialDays:    in.TrialDays,
		Features:     in.Features,
		IsCustom:     in.IsCustom,
		SortOrder:    in.SortOrder,
	}
}
