package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/staffhub/staffhub/internal/domain/payment"
	vo "github.com/staffhub/staffhub/internal/domain/payment/valueobjects"
	"github.com/staffhub/staffhub/internal/infrastructure/persistence/mappers"
	"github.com/staffhub/staffhub/internal/infrastructure/persistence/models"
	"github.com/staffhub/staffhub/internal/shared/db"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

type PaymentRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewPaymentRepository(db *gorm.DB, logger logger.Interface) payment.PaymentRepository {
	return &PaymentRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *PaymentRepositoryImpl) Create(ctx context.Context, p *payment.Payment) error {
	model, err := mappers.PaymentToModel(p)
	if err != nil {
		return err
	}
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create payment", "order_id", p.GatewayOrderID(), "error", err)
		return fmt.Errorf("failed to create payment: %w", err)
	}
	p.SetID(model.ID)
	return nil
}

func (r *PaymentRepositoryImpl) Update(ctx context.Context, p *payment.Payment) error {
	model, err := mappers.PaymentToModel(p)
	if err != nil {
		return err
	}
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"gateway_payment_id": model.GatewayPaymentID,
			"status":             model.Status,
			"method":             model.Method,
			"error_detail":       model.ErrorDetail,
			"captured_at":        model.CapturedAt,
			"failed_at":          model.FailedAt,
			"refunded_at":        model.RefundedAt,
			"updated_at":         model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update payment", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return payment.ErrPaymentNotFound
	}
	return nil
}

func (r *PaymentRepositoryImpl) UpdateMethod(ctx context.Context, id uint, method string) error {
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"method":     method,
			"updated_at": time.Now().UTC(),
		}).Error; err != nil {
		r.logger.Errorw("failed to update payment method", "id", id, "error", err)
		return fmt.Errorf("failed to update payment method: %w", err)
	}
	return nil
}

func (r *PaymentRepositoryImpl) GetByID(ctx context.Context, id uint) (*payment.Payment, error) {
	return r.first(db.GetTxFromContext(ctx, r.db).Where("id = ?", id))
}

func (r *PaymentRepositoryImpl) GetByGatewayOrderID(ctx context.Context, orderID string) (*payment.Payment, error) {
	return r.first(db.GetTxFromContext(ctx, r.db).Where("gateway_order_id = ?", orderID))
}

func (r *PaymentRepositoryImpl) GetByGatewayOrderIDForUpdate(ctx context.Context, orderID string) (*payment.Payment, error) {
	tx := db.ForUpdate(db.GetTxFromContext(ctx, r.db))
	return r.first(tx.Where("gateway_order_id = ?", orderID))
}

func (r *PaymentRepositoryImpl) GetByGatewayPaymentID(ctx context.Context, paymentID string) (*payment.Payment, error) {
	return r.first(db.GetTxFromContext(ctx, r.db).Where("gateway_payment_id = ?", paymentID))
}

func (r *PaymentRepositoryImpl) first(query *gorm.DB) (*payment.Payment, error) {
	var model models.PaymentModel
	if err := query.First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get payment", "error", err)
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return mappers.PaymentToDomain(&model)
}

func (r *PaymentRepositoryImpl) ListRecentBySubscription(ctx context.Context, subscriptionID uint, limit int) ([]*payment.Payment, error) {
	var list []*models.PaymentModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("subscription_id = ?", subscriptionID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		r.logger.Errorw("failed to list payments", "subscription_id", subscriptionID, "error", err)
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return mappers.PaymentsToDomain(list)
}

// ListStaleCreated returns orders still awaiting capture, oldest first.
// Orders held for review are left to an operator.
func (r *PaymentRepositoryImpl) ListStaleCreated(ctx context.Context, createdBefore time.Time, limit int) ([]*payment.Payment, error) {
	var list []*models.PaymentModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND held_for_review = ? AND created_at < ?", string(vo.PaymentStatusCreated), false, createdBefore).
		Order("created_at ASC").
		Limit(limit).
		Find(&list).Error; err != nil {
		r.logger.Errorw("failed to list stale payments", "error", err)
		return nil, fmt.Errorf("failed to list stale payments: %w", err)
	}
	return mappers.PaymentsToDomain(list)
}
