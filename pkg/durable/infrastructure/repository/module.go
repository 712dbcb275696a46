// Package repository selects the job state store named by the store.type setting.
package repository

import (
	"go.uber.org/fx"

	"github.com/tigerroll/durable/pkg/durable/adapter/database"
	"github.com/tigerroll/durable/pkg/durable/core/config"
	jobrepo "github.com/tigerroll/durable/pkg/durable/core/domain/repository"
	"github.com/tigerroll/durable/pkg/durable/infrastructure/repository/blob"
	"github.com/tigerroll/durable/pkg/durable/infrastructure/repository/inmemory"
	"github.com/tigerroll/durable/pkg/durable/infrastructure/repository/redis"
	sqlstore "github.com/tigerroll/durable/pkg/durable/infrastructure/repository/sql"
	"github.com/tigerroll/durable/pkg/durable/support/util/exception"
	"github.com/tigerroll/durable/pkg/durable/support/util/logger"
)

const module = "store"

// StoreParams defines the dependencies for NewJobStateStore.
// Resolver is only needed for the sql store; add the gorm module and a dialect module
// when using it.
type StoreParams struct {
	fx.In
	Config   *config.Config
	Resolver database.DBConnectionResolver `optional:"true"`
}

// NewJobStateStore builds the store configured under store.type.
func NewJobStateStore(p StoreParams) (jobrepo.JobStateStore, error) {
	sc := p.Config.Durable.Store
	logger.Infof("Job state store: type=%s codec=%s", sc.Type, sc.Codec)

	switch sc.Type {
	case "", config.StoreTypeMemory:
		logger.Warnf("Job state is kept in memory and will not survive a restart.")
		return inmemory.NewStore(), nil
	case config.StoreTypeSQL:
		if p.Resolver == nil {
			return nil, exception.NewDurableErrorf(module, "store type '%s' needs a database connection resolver", sc.Type)
		}
		return sqlstore.NewStoreFromConfig(p.Config, p.Resolver)
	case config.StoreTypeBlob:
		return blob.NewStoreFromConfig(p.Config)
	case config.StoreTypeRedis:
		return redis.NewStoreFromConfig(p.Config)
	default:
		return nil, exception.NewDurableErrorf(module, "unknown store type '%s'", sc.Type)
	}
}

// Module provides the configured repository.JobStateStore.
var Module = fx.Options(
	fx.Provide(NewJobStateStore),
)
