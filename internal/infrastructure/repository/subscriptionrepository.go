package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/staffhub/staffhub/internal/domain/subscription"
	"github.com/staffhub/staffhub/internal/infrastructure/persistence/mappers"
	"github.com/staffhub/staffhub/internal/infrastructure/persistence/models"
	"github.com/staffhub/staffhub/internal/shared/db"
	"github.com/staffhub/staffhub/internal/shared/errors"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.SubscriptionMapper
	logger logger.Interface
}

func NewSubscriptionRepository(
	db *gorm.DB,
	logger logger.Interface,
) subscription.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mappers.NewSubscriptionMapper(),
		logger: logger,
	}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, sub *subscription.Subscription) error {
	model := r.mapper.ToModel(sub)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return subscription.ErrSubscriptionExists
		}
		r.logger.Errorw("failed to create subscription in database", "error", err)
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	if err := sub.SetID(model.ID); err != nil {
		r.logger.Errorw("failed to set subscription ID", "error", err)
		return fmt.Errorf("failed to set subscription ID: %w", err)
	}

	r.logger.Infow("subscription created successfully", "id", model.ID, "tenant_id", model.TenantID, "plan_id", model.PlanID)
	return nil
}

func (r *SubscriptionRepositoryImpl) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	return r.first(ctx, db.GetTxFromContext(ctx, r.db).Where("id = ?", id), "id", id)
}

func (r *SubscriptionRepositoryImpl) GetByTenantID(ctx context.Context, tenantID uint) (*subscription.Subscription, error) {
	return r.first(ctx, db.GetTxFromContext(ctx, r.db).Where("tenant_id = ?", tenantID), "tenant_id", tenantID)
}

func (r *SubscriptionRepositoryImpl) GetByIDForUpdate(ctx context.Context, id uint) (*subscription.Subscription, error) {
	tx := db.ForUpdate(db.GetTxFromContext(ctx, r.db))
	return r.first(ctx, tx.Where("id = ?", id), "id", id)
}

func (r *SubscriptionRepositoryImpl) first(_ context.Context, query *gorm.DB, key string, value uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	if err := query.First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription", key, value, "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	entity, err := r.mapper.ToEntity(&model)
	if err != nil {
		r.logger.Errorw("failed to map subscription model to entity", key, value, "error", err)
		return nil, fmt.Errorf("failed to map subscription: %w", err)
	}
	return entity, nil
}

func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, sub *subscription.Subscription) error {
	model := r.mapper.ToModel(sub)
	next := model.Version + 1

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version).
		Updates(map[string]interface{}{
			"plan_id":               model.PlanID,
			"status":                model.Status,
			"billing_cycle":         model.BillingCycle,
			"trial_start":           model.TrialStart,
			"trial_end":             model.TrialEnd,
			"current_period_start":  model.CurrentPeriodStart,
			"current_period_end":    model.CurrentPeriodEnd,
			"auto_renew":            model.AutoRenew,
			"cancel_requested_at":   model.CancelRequestedAt,
			"cancelled_at":          model.CancelledAt,
			"cancel_reason":         model.CancelReason,
			"cancel_effective_at":   model.CancelEffectiveAt,
			"cancel_immediate":      model.CancelImmediate,
			"cancels_at_period_end": model.CancelsAtPeriodEnd,
			"pending_plan_id":       model.PendingPlanID,
			"pending_billing_cycle": model.PendingBillingCycle,
			"pending_effective_at":  model.PendingEffectiveAt,
			"pending_requested_at":  model.PendingRequestedAt,
			"version":               next,
			"updated_at":            model.UpdatedAt,
		})

	if result.Error != nil {
		r.logger.Errorw("failed to update subscription", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		r.logger.Warnw("subscription version conflict", "id", model.ID, "version", model.Version)
		return subscription.ErrConcurrentModification
	}

	sub.SetVersion(next)
	r.logger.Debugw("subscription updated", "id", model.ID, "status", model.Status, "version", next)
	return nil
}

func (r *SubscriptionRepositoryImpl) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		r.logger.Errorw("failed to count subscriptions by status", "error", err)
		return nil, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
