package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/staffhub/staffhub/internal/domain/webhook"
	"github.com/staffhub/staffhub/internal/infrastructure/persistence/models"
	"github.com/staffhub/staffhub/internal/shared/db"
	"github.com/staffhub/staffhub/internal/shared/errors"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

type WebhookEventRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewWebhookEventRepository(db *gorm.DB, logger logger.Interface) webhook.Repository {
	return &WebhookEventRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *WebhookEventRepositoryImpl) Record(ctx context.Context, d *webhook.Delivery) error {
	if d.ProviderEventID == nil {
		return r.insert(ctx, d)
	}

	var existing models.WebhookEventModel
	err := db.GetTxFromContext(ctx, r.db).Where("provider_event_id = ?", *d.ProviderEventID).First(&existing).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		err = r.insert(ctx, d)
		if err == nil || !errors.IsDuplicateError(err) {
			return err
		}
		// Lost the insert race to a concurrent redelivery.
		if err := db.GetTxFromContext(ctx, r.db).Where("provider_event_id = ?", *d.ProviderEventID).First(&existing).Error; err != nil {
			return fmt.Errorf("failed to reload webhook event: %w", err)
		}
	case err != nil:
		r.logger.Errorw("failed to look up webhook event", "event_id", *d.ProviderEventID, "error", err)
		return fmt.Errorf("failed to look up webhook event: %w", err)
	}

	return r.bump(ctx, &existing, d)
}

func (r *WebhookEventRepositoryImpl) insert(ctx context.Context, d *webhook.Delivery) error {
	model := &models.WebhookEventModel{
		ProviderEventID: d.ProviderEventID,
		EventType:       d.EventType,
		EntityID:        d.EntityID,
		SignatureValid:  d.SignatureValid,
		Outcome:         string(d.Outcome),
		Error:           d.Error,
		Attempts:        1,
		ReceivedAt:      d.ReceivedAt,
		UpdatedAt:       d.ReceivedAt,
	}
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if !errors.IsDuplicateError(err) {
			r.logger.Errorw("failed to record webhook event", "event_type", d.EventType, "error", err)
		}
		return err
	}
	d.ID = model.ID
	d.Attempts = 1
	return nil
}

// bump counts a redelivery. An applied outcome is final.
func (r *WebhookEventRepositoryImpl) bump(ctx context.Context, existing *models.WebhookEventModel, d *webhook.Delivery) error {
	updates := map[string]interface{}{
		"attempts":   gorm.Expr("attempts + 1"),
		"updated_at": d.ReceivedAt,
	}
	if existing.Outcome != string(webhook.OutcomeApplied) {
		updates["outcome"] = string(d.Outcome)
		updates["error"] = d.Error
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.WebhookEventModel{}).
		Where("id = ?", existing.ID).
		Updates(updates)
	if result.Error != nil {
		r.logger.Errorw("failed to update webhook event", "id", existing.ID, "error", result.Error)
		return fmt.Errorf("failed to update webhook event: %w", result.Error)
	}

	d.ID = existing.ID
	d.Attempts = existing.Attempts + 1
	return nil
}

func (r *WebhookEventRepositoryImpl) IsApplied(ctx context.Context, providerEventID string) (bool, error) {
	var count int64
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.WebhookEventModel{}).
		Where("provider_event_id = ? AND outcome = ?", providerEventID, string(webhook.OutcomeApplied)).
		Count(&count).Error; err != nil {
		r.logger.Errorw("failed to check webhook event", "event_id", providerEventID, "error", err)
		return false, fmt.Errorf("failed to check webhook event: %w", err)
	}
	return count > 0, nil
}
