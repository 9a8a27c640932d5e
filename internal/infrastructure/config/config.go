package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "github.com/staffhub/staffhub/internal/shared/config"
)

type Config struct {
	Server     sharedConfig.ServerConfig     `mapstructure:"server"`
	Database   sharedConfig.DatabaseConfig   `mapstructure:"database"`
	Logger     sharedConfig.LoggerConfig     `mapstructure:"logger"`
	Auth       sharedConfig.AuthConfig       `mapstructure:"auth"`
	Redis      sharedConfig.RedisConfig      `mapstructure:"redis"`
	Gateway    sharedConfig.GatewayConfig    `mapstructure:"gateway"`
	Billing    sharedConfig.BillingConfig    `mapstructure:"billing"`
	Email      sharedConfig.EmailConfig      `mapstructure:"email"`
	Plans      sharedConfig.PlansConfig      `mapstructure:"plans"`
	Permission sharedConfig.PermissionConfig `mapstructure:"permission"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load reads configs/config.yaml (searched upward from the working directory)
// and overlays STAFFHUB_* environment variables, e.g. STAFFHUB_GATEWAY_KEY_SECRET.
func Load(env string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")

	cfg, err := load(v, env)
	if err != nil {
		return nil, err
	}

	appConfigMu.Lock()
	appConfig = cfg
	appConfigMu.Unlock()

	return cfg, nil
}

// LoadFile reads an explicit config file without touching the global.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v, "")
}

func load(v *viper.Viper, env string) (*Config, error) {
	v.SetEnvPrefix("STAFFHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Allow env parameter to override server mode if provided
	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects settings the billing engine cannot run with.
func (c *Config) Validate() error {
	if c.Billing.TaxRate < 0 || c.Billing.TaxRate >= 1 {
		return fmt.Errorf("billing.tax_rate must be in [0,1), got %v", c.Billing.TaxRate)
	}
	if c.Billing.GraceDays < 0 {
		return fmt.Errorf("billing.grace_days must not be negative")
	}
	if len(c.Billing.Currency) != 3 {
		return fmt.Errorf("billing.currency must be an ISO 4217 code, got %q", c.Billing.Currency)
	}
	if c.Server.Mode == "release" {
		if c.Auth.JWT.Secret == "" || c.Auth.JWT.Secret == "change-me-in-production" {
			return fmt.Errorf("auth.jwt.secret must be set in release mode")
		}
		if c.Gateway.WebhookSecret == "" {
			return fmt.Errorf("gateway.webhook_secret must be set in release mode")
		}
	}
	return nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.base_url", "http://localhost:8080")

	// Database defaults
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "staffhub_dev")
	v.SetDefault("database.sqlite_path", "staffhub.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	// Auth defaults
	v.SetDefault("auth.jwt.secret", "change-me-in-production")
	v.SetDefault("auth.jwt.issuer", "staffhub")
	v.SetDefault("auth.service_token", "")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_ttl_seconds", 30)
	v.SetDefault("redis.lock_wait_seconds", 10)

	// Gateway defaults
	v.SetDefault("gateway.base_url", "https://api.razorpay.com/v1")
	v.SetDefault("gateway.timeout_seconds", 10)

	// Billing defaults
	v.SetDefault("billing.currency", "INR")
	v.SetDefault("billing.tax_rate", 0.18)
	v.SetDefault("billing.grace_days", 3)
	v.SetDefault("billing.stale_payment_hours", 24)
	v.SetDefault("billing.reconcile_cron", "@every 15m")
	v.SetDefault("billing.recent_payments_limit", 5)
	v.SetDefault("billing.order_rate_limit_per_minute", 10)
	v.SetDefault("billing.order_rate_limit_per_hour", 60)
	v.SetDefault("billing.plan_cache_size", 128)
	v.SetDefault("billing.plan_cache_ttl_seconds", 300)

	// Email defaults
	v.SetDefault("email.enabled", false)
	v.SetDefault("email.smtp_host", "localhost")
	v.SetDefault("email.smtp_port", 1025)
	v.SetDefault("email.from_address", "billing@staffhub.local")
	v.SetDefault("email.from_name", "StaffHub Billing")

	v.SetDefault("plans.seed_file", "")
	v.SetDefault("permission.model_path", "")
}
