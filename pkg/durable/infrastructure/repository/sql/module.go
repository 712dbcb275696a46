package sql

import (
	"context"

	"go.uber.org/fx"

	"github.com/tigerroll/durable/pkg/durable/adapter/database"
	"github.com/tigerroll/durable/pkg/durable/core/config"
	"github.com/tigerroll/durable/pkg/durable/core/domain/repository"
	"github.com/tigerroll/durable/pkg/durable/support/util/exception"
)

// NewStoreFromConfig resolves the connection named by store.db_ref, migrates it and
// returns the store.
func NewStoreFromConfig(cfg *config.Config, resolver database.DBConnectionResolver) (*Store, error) {
	const op = "store.sql"
	conn, err := resolver.ResolveDBConnection(context.Background(), cfg.Durable.Store.DBRef)
	if err != nil {
		return nil, exception.NewDurableErrorf(op, "failed to resolve database '%s'", cfg.Durable.Store.DBRef, err)
	}
	sqlDB, err := conn.SQLDB()
	if err != nil {
		return nil, exception.NewDurableError(op, "failed to get *sql.DB", err)
	}
	if err := Migrate(sqlDB, conn.Type()); err != nil {
		return nil, exception.NewDurableError(op, "failed to migrate job state schema", err)
	}
	return NewStore(conn.DB()), nil
}

// Module provides the SQL store as the repository.JobStateStore.
// A database resolver and at least one dialect module must be present.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewStoreFromConfig,
			fx.As(new(repository.JobStateStore)),
		),
	),
)
