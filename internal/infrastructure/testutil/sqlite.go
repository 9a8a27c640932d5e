// Package testutil opens throwaway databases for repository and use-case tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/staffhub/staffhub/internal/infrastructure/migration"
	"github.com/staffhub/staffhub/internal/infrastructure/persistence/models"
	"github.com/staffhub/staffhub/internal/shared/constants"
)

// NewSQLiteDB returns a migrated in-memory database private to the test.
// A single connection keeps every query on the same memory database.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(migration.AutoMigrateModels()...))
	return db
}

// AddEmployees inserts n active employees for tenantID.
func AddEmployees(t testing.TB, db *gorm.DB, tenantID uint, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		emp := &models.EmployeeModel{
			TenantID: tenantID,
			Email:    fmt.Sprintf("emp%d-%d@example.com", tenantID, i),
			Name:     fmt.Sprintf("Employee %d", i),
			Role:     constants.RoleMember,
			Status:   models.EmployeeStatusActive,
		}
		require.NoError(t, db.Create(emp).Error)
	}
}
