// Package sqlite registers the SQLite dialect with the GORM adapter.
package sqlite

import (
	"errors"

	"go.uber.org/fx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tigerroll/durable/pkg/durable/adapter/database"
	dbconfig "github.com/tigerroll/durable/pkg/durable/adapter/database/config"
	gormadapter "github.com/tigerroll/durable/pkg/durable/adapter/database/gorm"
	"github.com/tigerroll/durable/pkg/durable/core/config"
)

// DBType is the database type handled by this package.
const DBType = "sqlite"

func init() {
	gormadapter.RegisterDialector(DBType, func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		if cfg.Database == "" {
			return nil, errors.New("SQLite database path cannot be empty")
		}
		return sqlite.Open(ConnectionString(cfg)), nil
	})
}

// ConnectionString returns the SQLite DSN, which is the database path itself.
func ConnectionString(c dbconfig.DatabaseConfig) string {
	return c.Database
}

// NewProvider creates the SQLite DBProvider.
func NewProvider(cfg *config.Config) database.DBProvider {
	return gormadapter.NewBaseProvider(cfg, DBType)
}

// Module contributes the SQLite provider to the db_providers group.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewProvider,
			fx.ResultTags(database.DBProviderGroup),
		),
	),
)
