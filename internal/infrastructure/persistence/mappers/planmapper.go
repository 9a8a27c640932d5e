package mappers

import (
	"fmt"

	"gorm.io/datatypes"

	"github.com/staffhub/staffhub/internal/domain/subscription"
	"github.com/staffhub/staffhub/internal/infrastructure/persistence/models"
)

type PlanMapper interface {
	ToEntity(model *models.PlanModel) (*subscription.Plan, error)
	ToModel(entity *subscription.Plan) *models.PlanModel
	ToEntities(models []*models.PlanModel) ([]*subscription.Plan, error)
}

type PlanMapperImpl struct{}

func NewPlanMapper() PlanMapper {
	return &PlanMapperImpl{}
}

func (m *PlanMapperImpl) ToEntity(model *models.PlanModel) (*subscription.Plan, error) {
	if model == nil {
		return nil, nil
	}

	params := subscription.PlanParams{
		Slug:         model.Slug,
		Name:         model.Name,
		Description:  model.Description,
		MonthlyPrice: model.MonthlyPrice,
		YearlyPrice:  model.YearlyPrice,
		Currency:     model.Currency,
		MaxEmployees: model.MaxEmployees,
		TrialDays:    model.TrialDays,
		Features:     model.Features.Data(),
		IsCustom:     model.IsCustom,
		SortOrder:    model.SortOrder,
	}

	plan, err := subscription.ReconstructPlan(model.ID, params, model.IsActive, model.Version, model.CreatedAt, model.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct plan %d: %w", model.ID, err)
	}
	return plan, nil
}

func (m *PlanMapperImpl) ToModel(entity *subscription.Plan) *models.PlanModel {
	if entity == nil {
		return nil
	}
	return &models.PlanModel{
		ID:           entity.ID(),
		Slug:         entity.Slug(),
		Name:         entity.Name(),
		Description:  entity.Description(),
		MonthlyPrice: entity.MonthlyPrice(),
		YearlyPrice:  entity.YearlyPrice(),
		Currency:     entity.Currency(),
		MaxEmployees: entity.MaxEmployees(),
		TrialDays:    entity.TrialDays(),
		Features:     datatypes.NewJSONType(entity.Features()),
		IsCustom:     entity.IsCustom(),
		IsActive:     entity.IsActive(),
		SortOrder:    entity.SortOrder(),
		Version:      entity.Version(),
		CreatedAt:    entity.CreatedAt(),
		UpdatedAt:    entity.UpdatedAt(),
	}
}

func (m *PlanMapperImpl) ToEntities(models []*models.PlanModel) ([]*subscription.Plan, error) {
	entities := make([]*subscription.Plan, 0, len(models))
	for _, model := range models {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
