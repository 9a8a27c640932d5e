package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileAppliesDefaults(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "INR", cfg.Billing.Currency)
	assert.InDelta(t, 0.18, cfg.Billing.TaxRate, 1e-9)
	assert.Equal(t, 72*time.Hour, cfg.Billing.GracePeriod())
	assert.Equal(t, 24*time.Hour, cfg.Billing.StalePaymentAge())
	assert.Equal(t, 10*time.Second, cfg.Gateway.Timeout())
}

func TestLoadFileEnvOverride(t *testing.T) {
	t.Setenv("STAFFHUB_GATEWAY_KEY_SECRET", "from-env")
	t.Setenv("STAFFHUB_BILLING_GRACE_DAYS", "5")

	cfg, err := LoadFile(writeConfig(t, "gateway:\n  key_secret: from-file\n"))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Gateway.KeySecret)
	assert.Equal(t, 5, cfg.Billing.GraceDays)
}

func TestValidateRejectsBadBilling(t *testing.T) {
	_, err := LoadFile(writeConfig(t, "billing:\n  tax_rate: 1.5\n"))
	assert.ErrorContains(t, err, "tax_rate")

	_, err = LoadFile(writeConfig(t, "billing:\n  currency: RUPEE\n"))
	assert.ErrorContains(t, err, "currency")
}

func TestValidateRequiresSecretsInRelease(t *testing.T) {
	_, err := LoadFile(writeConfig(t, "server:\n  mode: release\n"))
	assert.ErrorContains(t, err, "jwt.secret")

	_, err = LoadFile(writeConfig(t, "server:\n  mode: release\nauth:\n  jwt:\n    secret: s3cret\n"))
	assert.ErrorContains(t, err, "webhook_secret")
}
