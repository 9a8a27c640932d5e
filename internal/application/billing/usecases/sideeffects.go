package usecases

import (
	"context"
	"time"

	"github.com/staffhub/staffhub/internal/shared/goroutine"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

const sideEffectTimeout = 30 * time.Second

// sideEffects dispatches notifications and audit entries after a commit.
// Neither may fail or delay the operation that triggered it.
type sideEffects struct {
	notifier Notifier
	audit    AuditRecorder
	logger   logger.Interface
}

func (s *sideEffects) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *sideEffects) SetAuditRecorder(a AuditRecorder) {
	s.audit = a
}

func (s *sideEffects) notify(n Notification) {
	if s.notifier == nil {
		return
	}
	goroutine.SafeGo(s.logger, "billing-notify", func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := s.notifier.Notify(ctx, n); err != nil {
			s.logger.Warnw("failed to send notification",
				"tenant_id", n.TenantID,
				"kind", n.Kind,
				"error", err,
			)
		}
	})
}

func (s *sideEffects) record(entry AuditEntry) {
	if s.audit == nil {
		return
	}
	goroutine.SafeGo(s.logger, "billing-audit", func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := s.audit.Record(ctx, entry); err != nil {
			s.logger.Warnw("failed to record audit entry",
				"tenant_id", entry.TenantID,
				"action", entry.Action,
				"error", err,
			)
		}
	})
}
