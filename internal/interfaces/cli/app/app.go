// Package app holds the start-up steps every command shares.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/staffhub/staffhub/internal/infrastructure/config"
	"github.com/staffhub/staffhub/internal/infrastructure/database"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

// Flags are the persistent options accepted by every command.
type Flags struct {
	Env        string
	ConfigPath string
}

// Bind registers --env and --config on cmd.
func (f *Flags) Bind(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&f.Env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&f.ConfigPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
}

// Environment resolves the effective environment; ENV wins over the flag.
func (f *Flags) Environment() string {
	if envVar := os.Getenv("ENV"); envVar != "" {
		return envVar
	}
	return f.Env
}

// Init loads configuration, installs the process logger and opens the
// database. Callers must defer database.Close().
func Init(f *Flags) (*config.Config, logger.Interface, error) {
	mode := MapEnvToGinMode(f.Environment())

	var (
		cfg *config.Config
		err error
	)
	if f.ConfigPath != "" {
		cfg, err = config.LoadFile(f.ConfigPath)
		if err == nil {
			cfg.Server.Mode = mode
			err = cfg.Validate()
		}
	} else {
		cfg, err = config.Load(mode)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode == "debug"); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return cfg, logger.NewLogger(), nil
}

// MapEnvToGinMode converts an environment name to a gin mode.
func MapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}
