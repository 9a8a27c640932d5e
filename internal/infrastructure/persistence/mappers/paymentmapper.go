package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/staffhub/staffhub/internal/domain/payment"
	vo "github.com/staffhub/staffhub/internal/domain/payment/valueobjects"
	subvo "github.com/staffhub/staffhub/internal/domain/subscription/valueobjects"
	"github.com/staffhub/staffhub/internal/infrastructure/persistence/models"
)

func PaymentToModel(p *payment.Payment) (*models.PaymentModel, error) {
	model := &models.PaymentModel{
		ID:               p.ID(),
		SubscriptionID:   p.SubscriptionID(),
		TenantID:         p.TenantID(),
		PlanID:           p.PlanID(),
		BillingCycle:     p.BillingCycle().String(),
		Purpose:          p.Purpose().String(),
		Amount:           p.Amount().Minor(),
		Currency:         p.Amount().Currency(),
		GatewayOrderID:   p.GatewayOrderID(),
		GatewayPaymentID: p.GatewayPaymentID(),
		Status:           p.Status().String(),
		Receipt:          p.Receipt(),
		Method:           p.Method(),
		ErrorDetail:      p.ErrorDetail(),
		HeldForReview:    p.HeldForReview(),
		CreatedAt:        p.CreatedAt(),
		CapturedAt:       p.CapturedAt(),
		FailedAt:         p.FailedAt(),
		RefundedAt:       p.RefundedAt(),
		UpdatedAt:        p.UpdatedAt(),
	}

	if len(p.Notes()) > 0 {
		raw, err := json.Marshal(p.Notes())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payment notes: %w", err)
		}
		model.Notes = datatypes.JSON(raw)
	}

	return model, nil
}

func PaymentToDomain(model *models.PaymentModel) (*payment.Payment, error) {
	status := vo.PaymentStatus(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid payment status: %s", model.Status)
	}
	purpose, err := vo.ParsePurpose(model.Purpose)
	if err != nil {
		return nil, err
	}
	cycle, err := subvo.ParseBillingCycle(model.BillingCycle)
	if err != nil {
		return nil, err
	}

	notes := map[string]string{}
	if len(model.Notes) > 0 {
		if err := json.Unmarshal(model.Notes, &notes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payment notes: %w", err)
		}
	}

	return payment.ReconstructPayment(payment.ReconstructParams{
		ID:               model.ID,
		SubscriptionID:   model.SubscriptionID,
		TenantID:         model.TenantID,
		PlanID:           model.PlanID,
		BillingCycle:     cycle,
		Purpose:          purpose,
		Amount:           vo.NewMoney(model.Amount, model.Currency),
		GatewayOrderID:   model.GatewayOrderID,
		GatewayPaymentID: model.GatewayPaymentID,
		Status:           status,
		Receipt:          model.Receipt,
		Method:           model.Method,
		ErrorDetail:      model.ErrorDetail,
		HeldForReview:    model.HeldForReview,
		Notes:            notes,
		CreatedAt:        model.CreatedAt.UTC(),
		CapturedAt:       utc(model.CapturedAt),
		FailedAt:         utc(model.FailedAt),
		RefundedAt:       utc(model.RefundedAt),
		UpdatedAt:        model.UpdatedAt.UTC(),
	})
}

func PaymentsToDomain(list []*models.PaymentModel) ([]*payment.Payment, error) {
	out := make([]*payment.Payment, 0, len(list))
	for _, m := range list {
		p, err := PaymentToDomain(m)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
