package seed

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/staffhub/staffhub/internal/infrastructure/database"
	"github.com/staffhub/staffhub/internal/infrastructure/persistence/seeds"
	"github.com/staffhub/staffhub/internal/interfaces/cli/app"
	httpRouter "github.com/staffhub/staffhub/internal/interfaces/http"
)

var (
	flags    app.Flags
	seedFile string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-plans",
		Short: "Load the plan catalog",
		Long: `Upsert plans by slug from a YAML seed file. Plans whose definition is unchanged
are left alone, so the command is safe to run on every deploy.`,
		RunE: run,
	}

	flags.Bind(cmd)
	cmd.Flags().StringVarP(&seedFile, "file", "f", "", "Seed file (default: plans.seed_file, or the built-in catalog)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, log, err := app.Init(&flags)
	if err != nil {
		return err
	}
	defer database.Close()

	path := seedFile
	if path == "" {
		path = cfg.Plans.SeedFile
	}
	params, err := seeds.LoadPlans(path)
	if err != nil {
		return err
	}

	container, err := httpRouter.NewContainer(database.Get(), cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build service container: %w", err)
	}
	defer container.Shutdown()

	result, err := container.PlanSeeder().Execute(cmd.Context(), params)
	if err != nil {
		return fmt.Errorf("failed to seed plans: %w", err)
	}

	fmt.Printf("plans: %d created, %d updated, %d unchanged\n", result.Created, result.Updated, result.Unchanged)
	return nil
}
