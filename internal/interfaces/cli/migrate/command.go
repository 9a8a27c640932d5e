package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/staffhub/staffhub/internal/infrastructure/database"
	"github.com/staffhub/staffhub/internal/infrastructure/migration"
	"github.com/staffhub/staffhub/internal/interfaces/cli/app"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

var (
	flags app.Flags
	steps int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Manage database migrations: apply pending scripts, roll back, and report the current version.`,
	}

	flags.Bind(cmd)

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		Long:  `Apply all pending database migrations to bring the database schema up to date.`,
		RunE:  runUp,
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		Long:  `Rollback a specified number of database migrations.`,
		RunE:  runDown,
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Long:  `Display the current migration version of the database.`,
		RunE:  runStatus,
	}
}

func initEnv() (logger.Interface, error) {
	_, log, err := app.Init(&flags)
	if err != nil {
		return nil, err
	}
	return log, nil
}

func runUp(cmd *cobra.Command, args []string) error {
	log, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	log.Infow("running up migrations", "environment", flags.Environment())

	db := database.Get()
	if err := migration.NewManager(db, log).Migrate(db); err != nil {
		return err
	}

	log.Infow("migrations completed successfully")
	return nil
}

func runDown(cmd *cobra.Command, args []string) error {
	log, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	db := database.Get()
	if db.Dialector.Name() == "sqlite" {
		return fmt.Errorf("down migration is only supported with goose strategy")
	}

	log.Infow("running down migrations", "environment", flags.Environment(), "steps", steps)

	if err := migration.NewGooseStrategy(log).MigrateDown(db, steps); err != nil {
		return fmt.Errorf("down migration failed: %w", err)
	}

	log.Infow("down migration completed successfully")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	log, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	db := database.Get()
	if db.Dialector.Name() == "sqlite" {
		return fmt.Errorf("status check is only supported with goose strategy")
	}

	version, err := migration.NewGooseStrategy(log).GetVersion(db)
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	fmt.Printf("\nMigration Status:\n")
	fmt.Printf("  Environment:     %s\n", flags.Environment())
	fmt.Printf("  Current Version: %d\n", version)

	return nil
}
