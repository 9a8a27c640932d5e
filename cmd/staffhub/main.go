package main

import (
	"github.com/spf13/cobra"

	"github.com/staffhub/staffhub/internal/interfaces/cli/migrate"
	"github.com/staffhub/staffhub/internal/interfaces/cli/reconcile"
	"github.com/staffhub/staffhub/internal/interfaces/cli/seed"
	"github.com/staffhub/staffhub/internal/interfaces/cli/server"
	"github.com/staffhub/staffhub/internal/interfaces/cli/token"
	"github.com/staffhub/staffhub/internal/interfaces/cli/worker"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "staffhub",
		Short: "StaffHub billing service",
		Long:  `StaffHub billing runs tenant subscriptions, checkout, payment webhooks and invoicing for the HR platform.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		worker.NewCommand(),
		reconcile.NewCommand(),
		seed.NewCommand(),
		token.NewCommand(),
	)

	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("command failed", "error", err)
	}
}
