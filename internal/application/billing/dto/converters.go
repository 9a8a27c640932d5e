package dto

import (
	"math"

	"github.com/staffhub/staffhub/internal/domain/invoice"
	"github.com/staffhub/staffhub/internal/domain/payment"
	"github.com/staffhub/staffhub/internal/domain/subscription"
)

func ToPlanDTO(plan *subscription.Plan) *PlanDTO {
	if plan == nil {
		return nil
	}
	return &PlanDTO{
		ID:           plan.ID(),
		Slug:         plan.Slug(),
		Name:         plan.Name(),
		Description:  plan.Description(),
		MonthlyPrice: plan.MonthlyPrice(),
		YearlyPrice:  plan.YearlyPrice(),
		Currency:     plan.Currency(),
		MaxEmployees: plan.MaxEmployees(),
		Unlimited:    plan.IsUnlimited(),
		TrialDays:    plan.TrialDays(),
		Features:     plan.Features(),
		IsCustom:     plan.IsCustom(),
		IsActive:     plan.IsActive(),
		SortOrder:    plan.SortOrder(),
	}
}

func ToPlanDTOList(plans []*subscription.Plan) []*PlanDTO {
	dtos := make([]*PlanDTO, 0, len(plans))
	for _, p := range plans {
		if p != nil {
			dtos = append(dtos, ToPlanDTO(p))
		}
	}
	return dtos
}

func ToSubscriptionDTO(sub *subscription.Subscription) *SubscriptionDTO {
	if sub == nil {
		return nil
	}
	out := &SubscriptionDTO{
		ID:                 sub.ID(),
		TenantID:           sub.TenantID(),
		PlanID:             sub.PlanID(),
		Status:             sub.Status().String(),
		BillingCycle:       sub.BillingCycle().String(),
		TrialStart:         sub.TrialStart(),
		TrialEnd:           sub.TrialEnd(),
		CurrentPeriodStart: sub.CurrentPeriodStart(),
		CurrentPeriodEnd:   sub.CurrentPeriodEnd(),
		AutoRenew:          sub.AutoRenew(),
		CreatedAt:          sub.CreatedAt(),
		UpdatedAt:          sub.UpdatedAt(),
	}
	if c := sub.Cancellation(); c != nil {
		out.Cancellation = &CancellationDTO{
			Reason:             c.Reason,
			RequestedAt:        c.RequestedAt,
			EffectiveAt:        c.EffectiveAt,
			CancelledAt:        c.CancelledAt,
			CancelsAtPeriodEnd: c.CancelsAtPeriodEnd,
		}
	}
	if pc := sub.PendingPlanChange(); pc != nil {
		out.PendingPlanChange = &PendingPlanChangeDTO{
			PlanID:       pc.PlanID,
			BillingCycle: pc.BillingCycle.String(),
			EffectiveAt:  pc.EffectiveAt,
		}
	}
	return out
}

// ToUsageDTO reports seat usage; percent is rounded to one decimal place and
// is zero for unlimited plans.
func ToUsageDTO(plan *subscription.Plan, employees int) UsageDTO {
	usage := UsageDTO{Employees: employees}
	if plan == nil {
		return usage
	}
	usage.MaxEmployees = plan.MaxEmployees()
	usage.Unlimited = plan.IsUnlimited()
	if !usage.Unlimited && usage.MaxEmployees > 0 {
		pct := float64(employees) * 100 / float64(usage.MaxEmployees)
		usage.PercentUsed = math.Round(pct*10) / 10
	}
	return usage
}

func ToPaymentDTO(p *payment.Payment) *PaymentDTO {
	if p == nil {
		return nil
	}
	return &PaymentDTO{
		ID:               p.ID(),
		GatewayOrderID:   p.GatewayOrderID(),
		GatewayPaymentID: p.GatewayPaymentID(),
		PlanID:           p.PlanID(),
		BillingCycle:     p.BillingCycle().String(),
		Purpose:          p.Purpose().String(),
		Amount:           p.Amount().Minor(),
		Currency:         p.Amount().Currency(),
		Status:           p.Status().String(),
		Method:           p.Method(),
		CreatedAt:        p.CreatedAt(),
		CapturedAt:       p.CapturedAt(),
		FailedAt:         p.FailedAt(),
	}
}

func ToPaymentDTOList(payments []*payment.Payment) []*PaymentDTO {
	dtos := make([]*PaymentDTO, 0, len(payments))
	for _, p := range payments {
		if p != nil {
			dtos = append(dtos, ToPaymentDTO(p))
		}
	}
	return dtos
}

func ToInvoiceDTO(inv *invoice.Invoice) *InvoiceDTO {
	if inv == nil {
		return nil
	}
	return &InvoiceDTO{
		ID:          inv.ID(),
		Number:      inv.Number(),
		PaymentID:   inv.PaymentID(),
		Subtotal:    inv.Subtotal(),
		Tax:         inv.Tax(),
		Total:       inv.Total(),
		Currency:    inv.Currency(),
		PeriodStart: inv.PeriodStart(),
		PeriodEnd:   inv.PeriodEnd(),
		Status:      inv.Status(),
		PaidAt:      inv.PaidAt(),
	}
}

func ToInvoiceDTOList(invoices []*invoice.Invoice) []*InvoiceDTO {
	dtos := make([]*InvoiceDTO, 0, len(invoices))
	for _, inv := range invoices {
		if inv != nil {
			dtos = append(dtos, ToInvoiceDTO(inv))
		}
	}
	return dtos
}
