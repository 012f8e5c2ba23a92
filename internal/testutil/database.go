// Package testutil holds the SQLite test database, fixture builders and the
// assertions shared by service and integration tests.
package testutil

import (
	"fmt"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"fintrack/internal/logger"
	"fintrack/internal/models"
)

// schema is every table the API persists, migrated in dependency order.
var schema = []interface{}{
	&models.User{},
	&models.Transaction{},
	&models.MonthlyBudget{},
	&models.AnnualBudget{},
	&models.BudgetLineItem{},
	&models.YearlyPlan{},
	&models.AuditLog{},
}

// SetupTestDB returns a fresh in-memory SQLite database with the full schema
// and silences the process logger. Each call gets its own named database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.Replace(zap.NewNop().Sugar())

	name := fmt.Sprintf("file:fintrack_test_%d?mode=memory&cache=shared", nextID())
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	// Budget saves run in transactions; one connection avoids SQLITE_LOCKED.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test database pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(schema...); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// TeardownTestDB closes db. The in-memory database disappears with its last connection.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.Close()
	}
	if err != nil {
		t.Errorf("close test database: %v", err)
	}
}
