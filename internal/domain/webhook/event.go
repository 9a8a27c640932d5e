// Package webhook models the delivery log of payment provider events.
package webhook

import (
	"context"
	"time"

	"github.com/staffhub/staffhub/internal/shared/utils/textutil"
)

// MaxErrorLength matches the webhook_events.error column size.
const MaxErrorLength = 500

// Outcome is what processing a delivery achieved.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeFailed    Outcome = "failed"
)

// Event types consumed from the provider.
const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
	EventRefundCreated   = "refund.created"
)

// Delivery is one received webhook. Deliveries sharing a provider event id
// collapse into a single row whose attempt count grows.
type Delivery struct {
	ID              uint
	ProviderEventID *string
	EventType       string
	EntityID        string
	SignatureValid  bool
	Outcome         Outcome
	Error           string
	Attempts        int
	ReceivedAt      time.Time
}

// SetError stores a processing error, cut to fit the error column.
func (d *Delivery) SetError(msg string) {
	d.Error = textutil.TruncateRunes(msg, MaxErrorLength)
}

type Repository interface {
	// Record inserts the delivery or, for a known provider event id, increments
	// the attempt count and replaces the outcome unless it is already applied.
	Record(ctx context.Context, d *Delivery) error
	// IsApplied reports whether an event id was already applied successfully.
	IsApplied(ctx context.Context, providerEventID string) (bool, error)
}
