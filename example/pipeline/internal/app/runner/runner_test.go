package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appjob "github.com/tigerroll/durable/example/pipeline/internal/app/job"
	"github.com/tigerroll/durable/pkg/durable/core/config"
	"github.com/tigerroll/durable/pkg/durable/core/engine"
	"github.com/tigerroll/durable/pkg/durable/core/job"
	"github.com/tigerroll/durable/pkg/durable/infrastructure/repository/inmemory"
)

func TestAttachLeftoversIncludesFinishedRoots(t *testing.T) {
	store := inmemory.NewStore()
	reg, err := job.NewRegistry(appjob.NewCountWords, appjob.NewPublish, appjob.NewWordCount)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	retain := config.NewConfig().Durable.Engine
	retain.RetainFinished = true
	first := engine.New(reg, store, engine.WithEngineConfig(retain))
	require.NoError(t, first.Start(ctx))
	h, err := first.RunNew(ctx, appjob.CountWordsJob, "one two three")
	require.NoError(t, err)
	_, err = h.Await(ctx)
	require.NoError(t, err)
	require.NoError(t, first.Stop(ctx))
	require.Equal(t, 1, store.Len())

	second := engine.New(reg, store)
	require.NoError(t, second.Start(ctx))
	defer second.Stop(ctx)

	handles := attachLeftovers(second)
	require.Len(t, handles, 1)
	assert.Equal(t, h.JobID(), handles[0].JobID())
	v, err := handles[0].Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, second.Finished())
}
