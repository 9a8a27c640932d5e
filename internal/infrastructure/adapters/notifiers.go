package adapters

import (
	"context"
	"errors"

	"github.com/staffhub/staffhub/internal/application/billing/usecases"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

// LogNotifier writes notifications to the log. It is the fallback when no
// mail transport is configured.
type LogNotifier struct {
	logger logger.Interface
}

func NewLogNotifier(logger logger.Interface) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, msg usecases.Notification) error {
	n.logger.Infow("notification",
		"tenant_id", msg.TenantID,
		"user_id", msg.UserID,
		"kind", msg.Kind,
		"title", msg.Title,
		"message", msg.Message,
	)
	return nil
}

// MultiNotifier delivers to every notifier and joins their errors.
type MultiNotifier []usecases.Notifier

func (m MultiNotifier) Notify(ctx context.Context, msg usecases.Notification) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
