package token

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/staffhub/staffhub/internal/infrastructure/auth"
	"github.com/staffhub/staffhub/internal/infrastructure/config"
	"github.com/staffhub/staffhub/internal/interfaces/cli/app"
	"github.com/staffhub/staffhub/internal/shared/constants"
)

var (
	flags    app.Flags
	userID   uint
	tenantID uint
	role     string
	ttl      time.Duration
)

// NewCommand mints a bearer token for local testing against the API. The
// identity service issues real tokens.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development bearer token",
		RunE:  run,
	}

	flags.Bind(cmd)
	cmd.Flags().UintVar(&userID, "user", 1, "User id")
	cmd.Flags().UintVar(&tenantID, "tenant", 1, "Tenant id")
	cmd.Flags().StringVar(&role, "role", constants.RoleOwner, "Role (owner, admin, member, platform_admin)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	mode := app.MapEnvToGinMode(flags.Environment())
	if mode == "release" {
		return fmt.Errorf("refusing to issue development tokens in release mode")
	}

	var (
		cfg *config.Config
		err error
	)
	if flags.ConfigPath != "" {
		cfg, err = config.LoadFile(flags.ConfigPath)
	} else {
		cfg, err = config.Load(mode)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch role {
	case constants.RoleOwner, constants.RoleAdmin, constants.RoleMember, constants.RolePlatformAdmin:
	default:
		return fmt.Errorf("unknown role %q", role)
	}

	signed, err := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.Issuer).
		Issue(userID, tenantID, role, ttl, time.Now())
	if err != nil {
		return err
	}

	fmt.Println(signed)
	return nil
}
