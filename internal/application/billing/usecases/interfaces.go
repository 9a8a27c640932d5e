package usecases

import (
	"context"
)

// SeatCounter reports the number of active employees billed against a plan.
type SeatCounter interface {
	CountActiveSeats(ctx context.Context, tenantID uint) (int, error)
}

type NotificationKind string

const (
	NotificationPaymentCaptured  NotificationKind = "payment_captured"
	NotificationPaymentFailed    NotificationKind = "payment_failed"
	NotificationPaymentRefunded  NotificationKind = "payment_refunded"
	NotificationPlanChanged      NotificationKind = "plan_changed"
	NotificationPlanScheduled    NotificationKind = "plan_change_scheduled"
	NotificationSubscriptionEnds NotificationKind = "subscription_cancelled"
	NotificationReactivated      NotificationKind = "subscription_reactivated"
)

type Notification struct {
	UserID   uint
	TenantID uint
	Kind     NotificationKind
	Title    string
	Message  string
	Link     string
}

// Notifier delivers user-facing notices. Failures are logged, never propagated.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type AuditEntry struct {
	ActorUserID uint
	TenantID    uint
	Action      string
	EntityType  string
	EntityID    uint
	Description string
}

// AuditRecorder writes the audit trail on a best-effort basis.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// Locker serializes mutations per key across goroutines and, when backed by
// redis, across instances.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type TransactionManager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics receives lifecycle counters.
type Metrics interface {
	RecordTransition(from, to string)
	RecordSettlement(source, result string)
	RecordWebhook(eventType, outcome string)
	RecordEntitlementDenial(code string)
	RecordReconciled(count int)
}

type nopMetrics struct{}

func (nopMetrics) RecordTransition(string, string) {}
func (nopMetrics) RecordSettlement(string, string) {}
func (nopMetrics) RecordWebhook(string, string) {}
func (nopMetrics) RecordEntitlementDenial(string) {}
func (nopMetrics) RecordReconciled(int) {}

// NopMetrics discards all counters.
func NopMetrics() Metrics {
	return nopMetrics{}
}

// Audit actions.
const (
	AuditTrialStarted        = "subscription.trial_started"
	AuditOrderCreated        = "payment.order_created"
	AuditPaymentCaptured     = "payment.captured"
	AuditPaymentFailed       = "payment.failed"
	AuditPaymentRefunded     = "payment.refunded"
	AuditPaymentHeld         = "payment.held_for_review"
	AuditPlanChanged         = "subscription.plan_changed"
	AuditPlanChangeScheduled = "subscription.plan_change_scheduled"
	AuditCancelled           = "subscription.cancelled"
	AuditReactivated         = "subscription.reactivated"
)

// Settlement sources.
const (
	SourceVerify  = "verify"
	SourceWebhook = "webhook"
)
