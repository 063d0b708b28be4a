// Package database's migration support is kept from the teacher's
// golang-migrate-backed MigrationHandler even though the core worker itself
// only needs db.AutoMigrate for its two owned tables (internal/gateway's
// EnsureSchema) — it backs cmd/worker's optional "migrate" subcommand,
// which creates the externally-owned binance_candles table for local/dev
// environments from migrations/*.sql. The migrations insert no rows.
package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// MigrationHandler drives golang-migrate over the migrations/ directory.
type MigrationHandler struct {
	conn   *Connection
	config Config
	logger *zap.Logger
}

// NewMigrationHandler builds a handler. logger defaults to a no-op zap
// logger; cmd/worker may swap in a real one via WithLogger.
func NewMigrationHandler(conn *Connection, config Config) *MigrationHandler {
	return &MigrationHandler{conn: conn, config: config, logger: zap.NewNop()}
}

// WithLogger overrides the zap logger used for migration progress.
func (m *MigrationHandler) WithLogger(logger *zap.Logger) *MigrationHandler {
	m.logger = logger
	return m
}

// ApplyMigrations runs every pending up migration.
func (m *MigrationHandler) ApplyMigrations() error {
	dsn := m.dsnURL()
	migrationsPath, err := m.getMigrationPath()
	if err != nil {
		m.logger.Error("failed to resolve migrations path", zap.Error(err))
		return errors.Wrap(err, "failed to get migrations path")
	}

	migration, err := migrate.New(migrationsPath, dsn)
	if err != nil {
		m.logger.Error("failed to create migration instance", zap.Error(err))
		return errors.Wrap(err, "failed to create migration instance")
	}
	defer migration.Close()

	version, dirty, err := migration.Version()
	if err != nil && err != migrate.ErrNilVersion {
		m.logger.Warn("could not read current migration version", zap.Error(err))
	} else {
		m.logger.Info("current schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	}

	if err := migration.Up(); err != nil {
		if err == migrate.ErrNoChange {
			m.logger.Info("schema already up to date")
			return nil
		}
		m.logger.Error("migration failed", zap.Error(err))
		return errors.Wrap(err, "failed to apply migrations")
	}

	newVersion, newDirty, verErr := migration.Version()
	if verErr == nil {
		m.logger.Info("migrations applied",
			zap.Uint("from_version", version),
			zap.Uint("to_version", newVersion),
			zap.Bool("dirty", newDirty),
		)
	}
	return nil
}

// RollbackMigration rolls back the single most recent migration.
func (m *MigrationHandler) RollbackMigration() error {
	dsn := m.dsnURL()
	migrationsPath, err := m.getMigrationPath()
	if err != nil {
		return errors.Wrap(err, "failed to get migrations path")
	}
	migration, err := migrate.New(migrationsPath, dsn)
	if err != nil {
		return errors.Wrap(err, "failed to create migration instance")
	}
	defer migration.Close()

	version, _, err := migration.Version()
	if err != nil {
		if err == migrate.ErrNilVersion {
			m.logger.Info("already at base version, nothing to roll back")
			return nil
		}
		return errors.Wrap(err, "failed to get current migration version")
	}
	if version == 0 {
		return nil
	}
	if err := migration.Steps(-1); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, "failed to rollback migration")
	}
	m.logger.Info("rollback complete", zap.Uint("from_version", version))
	return nil
}

func (m *MigrationHandler) dsnURL() string {
	ds := m.config.DataSource
	port := ds.Port
	if port == "" {
		port = "5432"
	}
	sslMode := ds.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		ds.User, ds.Password, ds.Host, port, ds.DBName, sslMode)
}

func (m *MigrationHandler) getMigrationPath() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "failed to get working directory")
	}
	migrationsPath := filepath.Join(wd, "migrations")
	if _, err := os.Stat(migrationsPath); os.IsNotExist(err) {
		return "", errors.Wrap(err, "migrations directory not found")
	}
	return fmt.Sprintf("file://%s", migrationsPath), nil
}

// maskedDSN returns dsn with the password masked, used only in debug logs
// callers may add around dsnURL()'s result.
func (m *MigrationHandler) maskedDSN(dsn string) string {
	if m.config.DataSource.Password == "" {
		return dsn
	}
	return strings.Replace(dsn, m.config.DataSource.Password, "*****", 1)
}
