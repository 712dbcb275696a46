// Package database defines the connection abstractions used by SQL-backed components.
package database

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	dbconfig "github.com/tigerroll/durable/pkg/durable/adapter/database/config"
)

// DBConnection is a named, configured database handle.
type DBConnection interface {
	// Name is the key of the connection in the database config section.
	Name() string
	// Type is the database type ("sqlite", "postgres", "mysql").
	Type() string
	// DB returns the GORM handle.
	DB() *gorm.DB
	// SQLDB returns the underlying *sql.DB.
	SQLDB() (*sql.DB, error)
	Config() dbconfig.DatabaseConfig
	Close() error
}

// DBProvider opens and caches connections of one database type.
type DBProvider interface {
	Type() string
	GetConnection(name string) (DBConnection, error)
	CloseAll() error
}

// DBConnectionResolver resolves a connection by name, whatever its type.
type DBConnectionResolver interface {
	ResolveDBConnection(ctx context.Context, name string) (DBConnection, error)
}

// DBProviderGroup is the fx tag grouping every DBProvider.
const DBProviderGroup = `group:"db_providers"`
