package inmemory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/tigerroll/durable/pkg/durable/core/domain/model"
	"github.com/tigerroll/durable/pkg/durable/core/domain/repository"
	"github.com/tigerroll/durable/pkg/durable/infrastructure/repository/inmemory"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := inmemory.NewStore()
	id := model.NewJobID()

	_, err := s.Read(ctx, id)
	assert.ErrorIs(t, err, repository.ErrJobStateNotFound)

	payload := []byte("state")
	require.NoError(t, s.Write(ctx, id, payload))
	payload[0] = 'X'

	got, err := s.Read(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("state"), got, "the store keeps its own copy")
	got[0] = 'Y'
	again, _ := s.Read(ctx, id)
	assert.Equal(t, []byte("state"), again)

	ids, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.JobID{id}, ids)

	require.NoError(t, s.Delete(ctx, id))
	require.NoError(t, s.Delete(ctx, id))
	assert.Equal(t, 0, s.Len())
	assert.NoError(t, s.Close())
}
