package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/durable/pkg/durable/core/domain/model"
)

func TestJobIDTextRoundTrip(t *testing.T) {
	id := model.NewJobID()
	text, err := id.MarshalText()
	require.NoError(t, err)

	var parsed model.JobID
	require.NoError(t, parsed.UnmarshalText(text))
	assert.Equal(t, id, parsed)

	again, err := model.ParseJobID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, again)

	_, err = model.ParseJobID("not-a-uuid")
	assert.Error(t, err)
	assert.True(t, model.NilJobID.IsNil())
	assert.NotEqual(t, model.NewJobID(), model.NewJobID())
}

func TestJobStatusTransitions(t *testing.T) {
	s := model.NewJobState(model.NewJobID(), "demo", model.KindUnitOfWork, nil)
	assert.Equal(t, model.JobStatusPending, s.Status)

	require.NoError(t, s.TransitionTo(model.JobStatusRunning))
	require.NoError(t, s.TransitionTo(model.JobStatusWaiting))
	require.NoError(t, s.TransitionTo(model.JobStatusRunning))
	require.NoError(t, s.TransitionTo(model.JobStatusCompleted))
	assert.True(t, s.Status.IsFinished())

	assert.Error(t, s.TransitionTo(model.JobStatusRunning))
	assert.Equal(t, model.JobStatusCompleted, s.Status)
}

func TestArgumentsAreCopiedOnCreate(t *testing.T) {
	args := []any{"a", 1}
	s := model.NewJobState(model.NewJobID(), "demo", model.KindOrchestration, args)
	args[0] = "changed"

	assert.Equal(t, "a", s.Arguments[0])
}

func TestHistoryResolution(t *testing.T) {
	parent := model.NewJobState(model.NewJobID(), "parent", model.KindOrchestration, nil)
	a, b := model.NewJobID(), model.NewJobID()

	assert.Equal(t, 0, parent.AppendHistory(a, "child"))
	assert.Equal(t, 1, parent.AppendHistory(b, "child"))
	assert.ElementsMatch(t, []model.JobID{a, b}, parent.PendingChildren())

	assert.False(t, parent.ResolveHistory(0, b, model.HistoryCompleted, "x"), "wrong child for slot")
	assert.False(t, parent.ResolveHistory(5, a, model.HistoryCompleted, "x"), "slot out of range")

	assert.True(t, parent.MarkHistory(1, b, model.HistoryWaiting))
	assert.True(t, parent.ResolveHistory(1, b, model.HistoryFailed, "boom"))
	assert.False(t, parent.ResolveHistory(1, b, model.HistoryCompleted, "late"), "already resolved")
	assert.False(t, parent.MarkHistory(1, b, model.HistoryRunning))

	assert.Equal(t, model.HistoryEntry{ChildJobID: b, ChildType: "child", Status: model.HistoryFailed, Result: "boom"}, parent.History[1])
	assert.Equal(t, []model.JobID{a}, parent.PendingChildren())
}

func TestCloneIsIndependent(t *testing.T) {
	parent := model.NewJobState(model.NewJobID(), "parent", model.KindOrchestration, []any{"x"})
	child := model.NewJobID()
	parent.AppendHistory(child, "child")
	parent.SetParent(model.NewJobID(), 3)

	c := parent.Clone()
	c.ResolveHistory(0, child, model.HistoryCompleted, 1)
	*c.ParentHistoryIndex = 9

	assert.Equal(t, model.HistoryRunning, parent.History[0].Status)
	assert.Equal(t, 3, *parent.ParentHistoryIndex)
	assert.Nil(t, (*model.JobState)(nil).Clone())
}

func TestFailedCallSiteIsResolvedWithoutChild(t *testing.T) {
	parent := model.NewJobState(model.NewJobID(), "parent", model.KindOrchestration, nil)
	assert.Equal(t, 0, parent.AppendFailedHistory("missing", "unknown job type"))
	child := model.NewJobID()
	assert.Equal(t, 1, parent.AppendHistory(child, "child"))

	assert.Equal(t, []model.JobID{child}, parent.PendingChildren())
	assert.Equal(t, model.HistoryFailed, parent.History[0].Status)
	assert.True(t, parent.History[0].ChildJobID.IsNil())
	assert.Equal(t, "unknown job type", parent.History[0].Result)
	assert.False(t, parent.ResolveHistory(0, model.NilJobID, model.HistoryCompleted, "x"))
}

func TestValidateLinkage(t *testing.T) {
	parent := model.NewJobState(model.NewJobID(), "parent", model.KindOrchestration, nil)
	child := model.NewJobState(model.NewJobID(), "child", model.KindUnitOfWork, nil)

	assert.Error(t, model.ValidateLinkage(parent, child))

	idx := parent.AppendHistory(child.ID, child.Type)
	child.SetParent(parent.ID, idx)
	assert.NoError(t, model.ValidateLinkage(parent, child))
	assert.False(t, child.IsRoot())
	assert.True(t, parent.IsRoot())

	child.SetParent(parent.ID, idx+1)
	assert.Error(t, model.ValidateLinkage(parent, child))

	other := model.NewJobState(model.NewJobID(), "child", model.KindUnitOfWork, nil)
	other.SetParent(parent.ID, idx)
	assert.Error(t, model.ValidateLinkage(parent, other))
}
