package redis_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/durable/pkg/durable/core/config"
	model "github.com/tigerroll/durable/pkg/durable/core/domain/model"
	"github.com/tigerroll/durable/pkg/durable/core/domain/repository"
	redisstore "github.com/tigerroll/durable/pkg/durable/infrastructure/repository/redis"
)

// newStore connects to REDIS_ADDR, skipping when it is unset.
func newStore(t *testing.T) *redisstore.Store {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	cfg := config.NewConfig()
	cfg.Durable.Store.Redis.Addr = addr
	cfg.Durable.Store.Redis.KeyPrefix = "durable-test:" + uuid.NewString() + ":"
	s, err := redisstore.NewStoreFromConfig(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	a, b := model.NewJobID(), model.NewJobID()
	require.NoError(t, s.Write(ctx, a, []byte("a1")))
	require.NoError(t, s.Write(ctx, b, []byte("b1")))
	require.NoError(t, s.Write(ctx, a, []byte("a2")))

	got, err := s.Read(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []byte("a2"), got)

	ids, err := s.All(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.JobID{a, b}, ids)

	require.NoError(t, s.Delete(ctx, a))
	require.NoError(t, s.Delete(ctx, b))
	_, err = s.Read(ctx, a)
	assert.ErrorIs(t, err, repository.ErrJobStateNotFound)
	ids, err = s.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestNewStoreFromConfig_Unreachable(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Durable.Store.Redis.Addr = "127.0.0.1:1"
	_, err := redisstore.NewStoreFromConfig(cfg)
	assert.Error(t, err)
}
