package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
	BaseURL string `mapstructure:"base_url"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&collation=utf8mb4_general_ci&parseTime=true&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

func (d *DatabaseConfig) IsSQLite() bool {
	return d.Driver == "sqlite"
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

type AuthConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
	// ServiceToken authenticates internal calls from the tenant registration flow.
	ServiceToken string `mapstructure:"service_token"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// Subscription lock lease and how long a writer waits for it.
	LockTTLSeconds  int `mapstructure:"lock_ttl_seconds"`
	LockWaitSeconds int `mapstructure:"lock_wait_seconds"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// GatewayConfig configures the outbound payment provider client.
type GatewayConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	KeyID          string `mapstructure:"key_id"`
	KeySecret      string `mapstructure:"key_secret"`
	WebhookSecret  string `mapstructure:"webhook_secret"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

func (g *GatewayConfig) Timeout() time.Duration {
	if g.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(g.TimeoutSeconds) * time.Second
}

type BillingConfig struct {
	Currency            string  `mapstructure:"currency"`
	TaxRate             float64 `mapstructure:"tax_rate"`
	GraceDays           int     `mapstructure:"grace_days"`
	StalePaymentHours   int     `mapstructure:"stale_payment_hours"`
	ReconcileCron       string  `mapstructure:"reconcile_cron"`
	RecentPaymentsLimit int     `mapstructure:"recent_payments_limit"`

	// Checkout throttling per tenant; zero disables a window.
	OrderRateLimitPerMinute int `mapstructure:"order_rate_limit_per_minute"`
	OrderRateLimitPerHour   int `mapstructure:"order_rate_limit_per_hour"`
	PlanCacheSize           int `mapstructure:"plan_cache_size"`
	PlanCacheTTLSeconds     int `mapstructure:"plan_cache_ttl_seconds"`
}

func (b *BillingConfig) GracePeriod() time.Duration {
	return time.Duration(b.GraceDays) * 24 * time.Hour
}

func (b *BillingConfig) PlanCacheTTL() time.Duration {
	return time.Duration(b.PlanCacheTTLSeconds) * time.Second
}

func (b *BillingConfig) StalePaymentAge() time.Duration {
	return time.Duration(b.StalePaymentHours) * time.Hour
}

type EmailConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
}

type PlansConfig struct {
	SeedFile string `mapstructure:"seed_file"`
}

type PermissionConfig struct {
	ModelPath string `mapstructure:"model_path"`
}
