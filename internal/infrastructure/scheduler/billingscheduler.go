package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/staffhub/staffhub/internal/application/billing/usecases"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

// PaymentReconciler fails orders abandoned before capture.
type PaymentReconciler interface {
	Execute(ctx context.Context) (*usecases.ReconcileResult, error)
}

// BillingScheduler runs the stale-order sweep on a cron spec. A run still in
// progress when the next one fires causes that tick to be skipped.
type BillingScheduler struct {
	reconciler PaymentReconciler
	logger     logger.Interface
	cron       *cron.Cron
	spec       string
	timeout    time.Duration
	stopOnce   sync.Once
}

func NewBillingScheduler(reconciler PaymentReconciler, spec string, logger logger.Interface) *BillingScheduler {
	cl := cronLogger{logger: logger}
	return &BillingScheduler{
		reconciler: reconciler,
		logger:     logger,
		cron:       cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		spec:    spec,
		timeout: 10 * time.Minute,
	}
}

// Start registers the jobs and returns; jobs run on the cron goroutine.
func (s *BillingScheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.reconcile(ctx) }); err != nil {
		return fmt.Errorf("invalid reconcile schedule %q: %w", s.spec, err)
	}
	s.logger.Infow("starting billing scheduler", "reconcile_spec", s.spec)
	s.cron.Start()
	return nil
}

// Stop waits for a running job to finish. Safe to call more than once.
func (s *BillingScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Infow("stopping billing scheduler")
		<-s.cron.Stop().Done()
		s.logger.Infow("billing scheduler stopped")
	})
}

func (s *BillingScheduler) reconcile(parent context.Context) {
	if parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	start := time.Now()
	result, err := s.reconciler.Execute(ctx)
	if err != nil {
		s.logger.Errorw("payment reconciliation failed", "error", err, "duration", time.Since(start))
		return
	}
	if result.Failed > 0 {
		s.logger.Infow("stale payments reconciled",
			"examined", result.Examined,
			"failed", result.Failed,
			"duration", time.Since(start),
		)
	}
}

// cronLogger adapts logger.Interface to cron.Logger.
type cronLogger struct {
	logger logger.Interface
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
