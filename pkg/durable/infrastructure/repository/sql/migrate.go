package sql

import (
	dbsql "database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/tigerroll/durable/pkg/durable/support/util/logger"
)

//go:embed migrations
var migrationFS embed.FS

// MigrationsTable records applied schema versions of the job state store.
const MigrationsTable = "durable_schema_migrations"

// Migrate applies pending schema migrations for dbType to sqlDB.
func Migrate(sqlDB *dbsql.DB, dbType string) error {
	driver, err := databaseDriver(sqlDB, dbType)
	if err != nil {
		return err
	}
	source, err := iofs.New(migrationFS, "migrations/"+dbType)
	if err != nil {
		return fmt.Errorf("failed to open migrations for %s: %w", dbType, err)
	}
	m, err := migrate.NewWithInstance("iofs", source, dbType, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	// The sqlite driver closes the shared *sql.DB on Close, so only the source is released there.
	if dbType == "sqlite" {
		defer source.Close()
	} else {
		defer m.Close()
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed for %s: %w", dbType, err)
	}
	version, dirty, err := m.Version()
	if err == nil {
		logger.Infof("Job state schema at version %d (dirty: %t) on %s.", version, dirty, dbType)
	}
	return nil
}

func databaseDriver(sqlDB *dbsql.DB, dbType string) (database.Driver, error) {
	switch dbType {
	case "postgres":
		return postgres.WithInstance(sqlDB, &postgres.Config{MigrationsTable: MigrationsTable})
	case "mysql":
		return mysql.WithInstance(sqlDB, &mysql.Config{MigrationsTable: MigrationsTable})
	case "sqlite":
		return sqlite.WithInstance(sqlDB, &sqlite.Config{MigrationsTable: MigrationsTable})
	default:
		return nil, fmt.Errorf("unsupported database type for migration: %s", dbType)
	}
}
