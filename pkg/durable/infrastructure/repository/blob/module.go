package blob

import (
	"context"

	"go.uber.org/fx"

	storage "github.com/tigerroll/durable/pkg/durable/adapter/storage"
	_ "github.com/tigerroll/durable/pkg/durable/adapter/storage/gcs"
	_ "github.com/tigerroll/durable/pkg/durable/adapter/storage/local"
	"github.com/tigerroll/durable/pkg/durable/core/config"
	"github.com/tigerroll/durable/pkg/durable/core/domain/repository"
	"github.com/tigerroll/durable/pkg/durable/support/util/exception"
)

// NewStoreFromConfig opens the storage connection named by store.storage_ref.
func NewStoreFromConfig(cfg *config.Config) (*Store, error) {
	ref := cfg.Durable.Store.StorageRef
	conn, err := storage.Open(context.Background(), cfg, ref)
	if err != nil {
		return nil, exception.NewDurableErrorf("store.blob", "failed to open storage '%s'", ref, err)
	}
	return NewStore(conn, cfg.Durable.Store.Prefix), nil
}

// Module provides the blob store as the repository.JobStateStore.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewStoreFromConfig,
			fx.As(new(repository.JobStateStore)),
		),
	),
)
