package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/tigerroll/durable/pkg/durable/core/config"
	"github.com/tigerroll/durable/pkg/durable/core/domain/repository"
	"github.com/tigerroll/durable/pkg/durable/support/util/exception"
)

// NewStoreFromConfig dials store.redis and checks the connection. The returned
// Store owns the client and closes it on Close.
func NewStoreFromConfig(cfg *config.Config) (*Store, error) {
	rc := cfg.Durable.Store.Redis
	client := goredis.NewClient(&goredis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})
	s := New(client, rc.KeyPrefix)
	s.closer = client.Close

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Ping(ctx); err != nil {
		client.Close()
		return nil, exception.NewDurableErrorf("store.redis", "failed to connect to %s", rc.Addr, err)
	}
	return s, nil
}

// Module provides the Redis store as the repository.JobStateStore.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewStoreFromConfig,
			fx.As(new(repository.JobStateStore)),
		),
	),
)
