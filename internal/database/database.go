// Package database opens the Postgres pool and applies the SQL migrations.
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"fintrack/internal/logger"
)

// Manager owns the GORM connection pool.
type Manager struct {
	db  *gorm.DB
	url string
}

// NewManager connects to Postgres and applies the pool limits from config.
func NewManager(config *Config) (*Manager, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  config.DSN(),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: newGormLogger(logger.Get().Named("gorm"), config.SlowQuery),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access connection pool: %w", err)
	}
	if config.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)
	}

	logger.Get().Infow("database connected",
		"host", config.Host,
		"database", config.DBName,
		"max_open_conns", config.MaxOpenConns,
	)
	return &Manager{db: db, url: config.URL()}, nil
}

// NewMigrator opens golang-migrate over the SQL files in dir.
func NewMigrator(dir, databaseURL string) (*migrate.Migrate, error) {
	mig, err := migrate.New("file://"+dir, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open migrations in %s: %w", dir, err)
	}
	return mig, nil
}

// CloseMigrator releases a migrator, logging any close errors.
func CloseMigrator(mig *migrate.Migrate) {
	srcErr, dbErr := mig.Close()
	if err := errors.Join(srcErr, dbErr); err != nil {
		logger.Get().Warnw("migrator close error", "error", err)
	}
}

// RunMigrations applies every pending migration in dir.
func (m *Manager) RunMigrations(dir string) error {
	mig, err := NewMigrator(dir, m.url)
	if err != nil {
		return err
	}
	defer CloseMigrator(mig)

	err = mig.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Get().Info("database schema up to date")
	case err != nil:
		return fmt.Errorf("apply migrations: %w", err)
	default:
		version, _, _ := mig.Version()
		logger.Get().Infow("database migrated", "version", version)
	}
	return nil
}

// DB returns the GORM handle.
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Ping checks that the database answers within ctx.
func (m *Manager) Ping(ctx context.Context) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the connection pool.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
