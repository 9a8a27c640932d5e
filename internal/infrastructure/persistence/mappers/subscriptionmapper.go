package mappers

import (
	"fmt"
	"time"

	"github.com/staffhub/staffhub/internal/domain/subscription"
	vo "github.com/staffhub/staffhub/internal/domain/subscription/valueobjects"
	"github.com/staffhub/staffhub/internal/infrastructure/persistence/models"
)

type SubscriptionMapper interface {
	ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error)
	ToModel(entity *subscription.Subscription) *models.SubscriptionModel
}

type SubscriptionMapperImpl struct{}

func NewSubscriptionMapper() SubscriptionMapper {
	return &SubscriptionMapperImpl{}
}

func (m *SubscriptionMapperImpl) ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error) {
	if model == nil {
		return nil, nil
	}

	status, err := vo.ParseSubscriptionStatus(model.Status)
	if err != nil {
		return nil, fmt.Errorf("invalid subscription status: %w", err)
	}
	cycle, err := vo.ParseBillingCycle(model.BillingCycle)
	if err != nil {
		return nil, fmt.Errorf("invalid billing cycle: %w", err)
	}

	snap := subscription.Snapshot{
		ID:                 model.ID,
		TenantID:           model.TenantID,
		PlanID:             model.PlanID,
		Status:             status,
		BillingCycle:       cycle,
		TrialStart:         utc(model.TrialStart),
		TrialEnd:           utc(model.TrialEnd),
		CurrentPeriodStart: utc(model.CurrentPeriodStart),
		CurrentPeriodEnd:   utc(model.CurrentPeriodEnd),
		AutoRenew:          model.AutoRenew,
		Version:            model.Version,
		CreatedAt:          model.CreatedAt.UTC(),
		UpdatedAt:          model.UpdatedAt.UTC(),
	}

	if model.CancelRequestedAt != nil {
		c := &vo.Cancellation{
			RequestedAt:        model.CancelRequestedAt.UTC(),
			CancelledAt:        utc(model.CancelledAt),
			Immediate:          model.CancelImmediate,
			CancelsAtPeriodEnd: model.CancelsAtPeriodEnd,
		}
		if model.CancelReason != nil {
			c.Reason = *model.CancelReason
		}
		if model.CancelEffectiveAt != nil {
			c.EffectiveAt = model.CancelEffectiveAt.UTC()
		}
		snap.Cancellation = c
	}

	if model.PendingPlanID != nil && model.PendingEffectiveAt != nil && model.PendingBillingCycle != nil {
		pendingCycle, err := vo.ParseBillingCycle(*model.PendingBillingCycle)
		if err != nil {
			return nil, fmt.Errorf("invalid pending billing cycle: %w", err)
		}
		pc := &vo.PendingPlanChange{
			PlanID:       *model.PendingPlanID,
			BillingCycle: pendingCycle,
			EffectiveAt:  model.PendingEffectiveAt.UTC(),
		}
		if model.PendingRequestedAt != nil {
			pc.RequestedAt = model.PendingRequestedAt.UTC()
		}
		snap.PendingChange = pc
	}

	return subscription.ReconstructSubscription(snap)
}

func (m *SubscriptionMapperImpl) ToModel(entity *subscription.Subscription) *models.SubscriptionModel {
	if entity == nil {
		return nil
	}
	snap := entity.Snapshot()

	model := &models.SubscriptionModel{
		ID:                 snap.ID,
		TenantID:           snap.TenantID,
		PlanID:             snap.PlanID,
		Status:             snap.Status.String(),
		BillingCycle:       snap.BillingCycle.String(),
		TrialStart:         snap.TrialStart,
		TrialEnd:           snap.TrialEnd,
		CurrentPeriodStart: snap.CurrentPeriodStart,
		CurrentPeriodEnd:   snap.CurrentPeriodEnd,
		AutoRenew:          snap.AutoRenew,
		Version:            snap.Version,
		CreatedAt:          snap.CreatedAt,
		UpdatedAt:          snap.UpdatedAt,
	}

	if c := snap.Cancellation; c != nil {
		requested := c.RequestedAt
		effective := c.EffectiveAt
		reason := c.Reason
		model.CancelRequestedAt = &requested
		model.CancelledAt = c.CancelledAt
		model.CancelReason = &reason
		model.CancelEffectiveAt = &effective
		model.CancelImmediate = c.Immediate
		model.CancelsAtPeriodEnd = c.CancelsAtPeriodEnd
	}

	if pc := snap.PendingChange; pc != nil {
		planID := pc.PlanID
		cycle := pc.BillingCycle.String()
		effective := pc.EffectiveAt
		requested := pc.RequestedAt
		model.PendingPlanID = &planID
		model.PendingBillingCycle = &cycle
		model.PendingEffectiveAt = &effective
		model.PendingRequestedAt = &requested
	}

	return model
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
