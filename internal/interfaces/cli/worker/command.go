package worker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/staffhub/staffhub/internal/infrastructure/database"
	"github.com/staffhub/staffhub/internal/interfaces/cli/app"
	httpRouter "github.com/staffhub/staffhub/internal/interfaces/http"
)

var flags app.Flags

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the billing background jobs",
		Long:  `Run the stale payment reconciliation sweep on billing.reconcile_cron until interrupted.`,
		RunE:  run,
	}

	flags.Bind(cmd)

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, log, err := app.Init(&flags)
	if err != nil {
		return err
	}
	defer database.Close()

	log.Infow("starting billing worker", "environment", flags.Environment(), "reconcile_cron", cfg.Billing.ReconcileCron)

	container, err := httpRouter.NewContainer(database.Get(), cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build service container: %w", err)
	}
	defer container.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Run initial sweep
	initCtx, initCancel := context.WithTimeout(ctx, 10*time.Minute)
	if result, err := container.Reconciler().Execute(initCtx); err != nil {
		log.Errorw("initial reconciliation failed", "error", err)
	} else {
		log.Infow("initial reconciliation finished", "examined", result.Examined, "failed", result.Failed)
	}
	initCancel()

	if err := container.StartScheduler(ctx); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	log.Infow("received signal, shutting down", "signal", sig)
	cancel()
	return nil
}
