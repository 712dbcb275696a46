// Package mysql registers the MySQL dialect with the GORM adapter.
package mysql

import (
	"fmt"

	"go.uber.org/fx"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/tigerroll/durable/pkg/durable/adapter/database"
	dbconfig "github.com/tigerroll/durable/pkg/durable/adapter/database/config"
	gormadapter "github.com/tigerroll/durable/pkg/durable/adapter/database/gorm"
	"github.com/tigerroll/durable/pkg/durable/core/config"
)

const DBType = "mysql"

func init() {
	gormadapter.RegisterDialector(DBType, func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		return mysql.Open(ConnectionString(cfg)), nil
	})
}

// ConnectionString returns a go-sql-driver DSN. parseTime is required for DATETIME columns.
func ConnectionString(c dbconfig.DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// NewProvider creates the MySQL DBProvider.
func NewProvider(cfg *config.Config) database.DBProvider {
	return gormadapter.NewBaseProvider(cfg, DBType)
}

// Module contributes the MySQL provider to the db_providers group.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewProvider,
			fx.ResultTags(database.DBProviderGroup),
		),
	),
)
