package gorm

import (
	"context"

	"go.uber.org/fx"

	"github.com/tigerroll/durable/pkg/durable/adapter/database"
)

// Module provides the ConnectionResolver and closes all connections on stop.
// Dialect modules (sqlite, postgres, mysql) contribute the providers.
var Module = fx.Options(
	fx.Provide(
		NewConnectionResolver,
		func(r *ConnectionResolver) database.DBConnectionResolver { return r },
	),
	fx.Invoke(func(lc fx.Lifecycle, r *ConnectionResolver) {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error { return r.CloseAll() },
		})
	}),
)
