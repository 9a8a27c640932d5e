package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffhub/staffhub/internal/shared/config"
)

func TestInitOpensSQLiteAndCloses(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver:     "sqlite",
		Database:   "staffhub",
		SQLitePath: filepath.Join(t.TempDir(), "staffhub.db"),
	}

	require.NoError(t, Init(cfg))
	conn := Get()
	require.NotNil(t, conn)

	var one int
	require.NoError(t, conn.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)

	require.NoError(t, Close())
}

func TestCloseWithoutInit(t *testing.T) {
	dbMu.Lock()
	db = nil
	dbMu.Unlock()

	assert.NoError(t, Close())
}

func TestFilteredLoggerRoutesGormOutput(t *testing.T) {
	l := &filteredLogger{}

	for _, line := range []string{
		"[error] record insert failed: duplicate key",
		"SLOW SQL >= 200ms [210ms] [rows:1] SELECT * FROM payments",
		"SELECT SCHEMA_NAME from Information_schema.SCHEMATA",
		"[2.1ms] [rows:0] SELECT * FROM plans",
	} {
		assert.NotPanics(t, func() { l.Printf("%s", line) })
	}
}
