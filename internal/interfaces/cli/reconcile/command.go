package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/staffhub/staffhub/internal/infrastructure/database"
	"github.com/staffhub/staffhub/internal/interfaces/cli/app"
	httpRouter "github.com/staffhub/staffhub/internal/interfaces/http"
)

var (
	flags   app.Flags
	timeout time.Duration
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Fail abandoned checkout orders once",
		Long:  `Run a single reconciliation sweep: orders left in created beyond billing.stale_payment_hours are marked failed.`,
		RunE:  run,
	}

	flags.Bind(cmd)
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "Abort the sweep after this long")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, log, err := app.Init(&flags)
	if err != nil {
		return err
	}
	defer database.Close()

	container, err := httpRouter.NewContainer(database.Get(), cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build service container: %w", err)
	}
	defer container.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := container.Reconciler().Execute(ctx)
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	fmt.Printf("examined %d stale orders, failed %d\n", result.Examined, result.Failed)
	return nil
}
