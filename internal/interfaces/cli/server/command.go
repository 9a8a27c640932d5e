package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/staffhub/staffhub/internal/infrastructure/database"
	"github.com/staffhub/staffhub/internal/infrastructure/migration"
	"github.com/staffhub/staffhub/internal/infrastructure/persistence/seeds"
	"github.com/staffhub/staffhub/internal/interfaces/cli/app"
	httpRouter "github.com/staffhub/staffhub/internal/interfaces/http"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

var (
	flags              app.Flags
	autoMigrate        bool
	skipMigrationCheck bool
	seedPlans          bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the StaffHub billing API with the specified configuration.`,
		RunE:  run,
	}

	flags.Bind(cmd)
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Automatically run database migrations on startup (not recommended for production)")
	cmd.Flags().BoolVar(&skipMigrationCheck, "skip-migration-check", false, "Skip migration status check on startup")
	cmd.Flags().BoolVar(&seedPlans, "seed-plans", false, "Upsert the plan catalog from plans.seed_file before serving")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, log, err := app.Init(&flags)
	if err != nil {
		return err
	}
	defer database.Close()

	log.Infow("starting server",
		"environment", flags.Environment(),
		"auto_migrate", autoMigrate,
		"redis", cfg.Redis.Enabled,
	)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	if err := handleMigrations(log); err != nil {
		return fmt.Errorf("migration handling failed: %w", err)
	}

	container, err := httpRouter.NewContainer(database.Get(), cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build service container: %w", err)
	}
	defer container.Shutdown()

	if seedPlans {
		params, err := seeds.LoadPlans(cfg.Plans.SeedFile)
		if err != nil {
			return err
		}
		result, err := container.PlanSeeder().Execute(cmd.Context(), params)
		if err != nil {
			return fmt.Errorf("failed to seed plans: %w", err)
		}
		log.Infow("plan catalog seeded", "created", result.Created, "updated", result.Updated, "unchanged", result.Unchanged)
	}

	container.SetupRoutes()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      container.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infow("server starting", "address", cfg.Server.GetAddr(), "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	log.Infow("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

func handleMigrations(log logger.Interface) error {
	if skipMigrationCheck {
		log.Infow("skipping migration check")
		return nil
	}

	db := database.Get()
	if autoMigrate {
		if flags.Environment() == "production" {
			log.Warnw("auto-migration is enabled in production environment - this is not recommended!")
		}
		return migration.NewManager(db, log).Migrate(db)
	}

	if db.Dialector.Name() == "sqlite" {
		return nil
	}
	version, err := migration.NewGooseStrategy(log).GetVersion(db)
	if err != nil {
		log.Warnw("failed to check migration status", "error", err)
		return nil
	}
	log.Infow("current migration version", "version", version)
	return nil
}
