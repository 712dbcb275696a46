package engine_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/durable/pkg/durable/core/actor"
	"github.com/tigerroll/durable/pkg/durable/core/config"
	model "github.com/tigerroll/durable/pkg/durable/core/domain/model"
	"github.com/tigerroll/durable/pkg/durable/core/domain/repository"
	"github.com/tigerroll/durable/pkg/durable/core/engine"
	"github.com/tigerroll/durable/pkg/durable/core/job"
	"github.com/tigerroll/durable/pkg/durable/infrastructure/repository/inmemory"
	"github.com/tigerroll/durable/pkg/durable/support/util/exception"
	"github.com/tigerroll/durable/pkg/durable/support/util/logger"
	"github.com/tigerroll/durable/pkg/durable/support/util/serialization"
)

const waitFor = 5 * time.Second

var (
	stringType = job.TypeOf[string]()
	intType    = job.TypeOf[int]()
)

func factory(d job.Descriptor) job.Factory {
	return func() job.Descriptor { return d }
}

func defaultEngineConfig() config.EngineConfig {
	return config.NewConfig().Durable.Engine
}

func newManager(t *testing.T, store repository.JobStateStore, cfg config.EngineConfig, descriptors []job.Descriptor, opts ...engine.Option) *engine.Manager {
	t.Helper()
	factories := make([]job.Factory, len(descriptors))
	for i, d := range descriptors {
		factories[i] = factory(d)
	}
	reg, err := job.NewRegistry(factories...)
	require.NoError(t, err)
	m := engine.New(reg, store, append([]engine.Option{engine.WithEngineConfig(cfg)}, opts...)...)
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(func() { _ = m.Stop(context.Background()) })
	return m
}

func await(t *testing.T, h *engine.Handle) (any, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	v, err := h.Await(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "job %s did not finish", h.JobID())
	return v, err
}

func echo() job.Descriptor {
	return job.NewUnitOfWork("echo", job.Types(stringType), stringType, func(_ context.Context, args []any) (any, error) {
		return args[0].(string), nil
	})
}

func double() job.Descriptor {
	return job.NewUnitOfWork("double", job.Types(intType), intType, func(_ context.Context, args []any) (any, error) {
		return args[0].(int) * 2, nil
	})
}

func fail() job.Descriptor {
	return job.NewUnitOfWork("fail", nil, stringType, func(context.Context, []any) (any, error) {
		return nil, errors.New("boom")
	})
}

func process() job.Descriptor {
	return job.NewOrchestration("process", job.Types(stringType), stringType, func(oc job.Context, args []any) job.Step {
		return oc.Call("echo", args[0]).Then(func(v any) job.Step {
			return job.Completed(v.(string) + "-processed")
		})
	})
}

// recorder is a unit of work that remembers every execution.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) descriptor() job.Descriptor {
	return job.NewUnitOfWork("record", job.Types(stringType), stringType, func(_ context.Context, args []any) (any, error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.calls = append(r.calls, args[0].(string))
		return "ok:" + args[0].(string), nil
	})
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func TestRunNew_UnitOfWork(t *testing.T) {
	store := inmemory.NewStore()
	m := newManager(t, store, defaultEngineConfig(), []job.Descriptor{double()})

	h, err := m.RunNew(context.Background(), "double", 21)
	require.NoError(t, err)
	v, err := await(t, h)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	require.Eventually(t, func() bool { return store.Len() == 0 }, waitFor, 10*time.Millisecond)
}

func TestRunNew_CompletionPropagatesThroughParent(t *testing.T) {
	store := inmemory.NewStore()
	m := newManager(t, store, defaultEngineConfig(), []job.Descriptor{echo(), process()})

	h, err := m.RunNew(context.Background(), "process", "done")
	require.NoError(t, err)
	v, err := await(t, h)
	require.NoError(t, err)
	assert.Equal(t, "done-processed", v)
	require.Eventually(t, func() bool { return store.Len() == 0 }, waitFor, 10*time.Millisecond)
	assert.Empty(t, m.Jobs())
}

func TestRunNew_FailurePropagatesAsMessage(t *testing.T) {
	propagate := job.NewOrchestration("propagate", nil, stringType, func(oc job.Context, _ []any) job.Step {
		return oc.Call("fail")
	})
	m := newManager(t, inmemory.NewStore(), defaultEngineConfig(), []job.Descriptor{fail(), propagate})

	h, err := m.RunNew(context.Background(), "propagate")
	require.NoError(t, err)
	_, err = await(t, h)
	require.Error(t, err)
	var sje *exception.SubJobError
	require.ErrorAs(t, err, &sje)
	assert.Equal(t, "boom", sje.Message)
	assert.NotErrorIs(t, err, exception.ErrCancelled)
}

func TestOrchestration_HandlesChildFailure(t *testing.T) {
	recovering := job.NewOrchestration("recovering", nil, stringType, func(oc job.Context, _ []any) job.Step {
		s := oc.Call("fail")
		if s.IsFailed() {
			return job.Completed("recovered: " + exception.ExtractErrorMessage(s.Err()))
		}
		return s
	})
	m := newManager(t, inmemory.NewStore(), defaultEngineConfig(), []job.Descriptor{fail(), recovering})

	h, err := m.RunNew(context.Background(), "recovering")
	require.NoError(t, err)
	v, err := await(t, h)
	require.NoError(t, err)
	assert.Equal(t, "recovered: boom", v)
}

func TestOrchestration_WaitsBeforeLaterSideEffects(t *testing.T) {
	rec := &recorder{}
	var mu sync.Mutex
	var replaying []bool
	seq := job.NewOrchestration("seq", nil, stringType, func(oc job.Context, _ []any) job.Step {
		mu.Lock()
		replaying = append(replaying, oc.Replaying())
		mu.Unlock()

		a := oc.Call("record", "A")
		if !a.Done() {
			return a
		}
		b := oc.Call("record", "B")
		if !b.Done() {
			return b
		}
		return job.Completed(a.Value().(string) + "," + b.Value().(string))
	})
	m := newManager(t, inmemory.NewStore(), defaultEngineConfig(), []job.Descriptor{rec.descriptor(), seq})

	h, err := m.RunNew(context.Background(), "seq")
	require.NoError(t, err)
	v, err := await(t, h)
	require.NoError(t, err)
	assert.Equal(t, "ok:A,ok:B", v)

	// Each child ran exactly once, in order, although the body ran three times.
	assert.Equal(t, []string{"A", "B"}, rec.snapshot())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{false, true, true}, replaying)
}

func TestOrchestration_FanOut(t *testing.T) {
	sum := job.NewOrchestration("sum", nil, intType, func(oc job.Context, _ []any) job.Step {
		steps := []job.Step{oc.Call("double", 1), oc.Call("double", 2), oc.Call("double", 3)}
		total := 0
		for _, s := range steps {
			if !s.Done() {
				return s
			}
			total += s.Value().(int)
		}
		return job.Completed(total)
	})
	cfg := defaultEngineConfig()
	cfg.MaxWorkers = 2
	m := newManager(t, inmemory.NewStore(), cfg, []job.Descriptor{double(), sum})

	h, err := m.RunNew(context.Background(), "sum")
	require.NoError(t, err)
	v, err := await(t, h)
	require.NoError(t, err)
	assert.Equal(t, 12, v)
}

func TestOrchestration_Nested(t *testing.T) {
	outer := job.NewOrchestration("outer", nil, stringType, func(oc job.Context, _ []any) job.Step {
		return oc.Call("process", "inner").Then(func(v any) job.Step {
			return job.Completed("outer(" + v.(string) + ")")
		})
	})
	m := newManager(t, inmemory.NewStore(), defaultEngineConfig(), []job.Descriptor{echo(), process(), outer})

	h, err := m.RunNew(context.Background(), "outer")
	require.NoError(t, err)
	v, err := await(t, h)
	require.NoError(t, err)
	assert.Equal(t, "outer(inner-processed)", v)
}

func TestRunNew_RejectsUnknownTypeAndBadArguments(t *testing.T) {
	m := newManager(t, inmemory.NewStore(), defaultEngineConfig(), []job.Descriptor{double()})

	_, err := m.RunNew(context.Background(), "nope")
	assert.ErrorIs(t, err, exception.ErrUnknownJobType)

	_, err = m.RunNew(context.Background(), "double", "x")
	assert.ErrorIs(t, err, exception.ErrArgumentMismatch)

	_, err = m.RunNew(context.Background(), "double")
	assert.ErrorIs(t, err, exception.ErrArgumentMismatch)
	assert.Empty(t, m.Jobs())
}

func TestCall_UnknownTypeFailsCallSiteWithoutSpawning(t *testing.T) {
	store := inmemory.NewStore()
	bad := job.NewOrchestration("bad", nil, stringType, func(oc job.Context, _ []any) job.Step {
		if s := oc.Call("missing"); s.IsFailed() {
			return oc.Call("echo", "after").Then(func(v any) job.Step {
				return job.Completed(exception.ExtractErrorMessage(s.Err()) + " / " + v.(string))
			})
		}
		return job.Failed(fmt.Errorf("expected a failure"))
	})
	m := newManager(t, store, defaultEngineConfig(), []job.Descriptor{echo(), bad})

	h, err := m.RunNew(context.Background(), "bad")
	require.NoError(t, err)
	v, err := await(t, h)
	require.NoError(t, err)
	assert.Contains(t, v, "unknown job type")
	assert.Contains(t, v, "/ after")
}

func TestCall_FailedCallSiteKeepsLaterCallsInPlace(t *testing.T) {
	store := inmemory.NewStore()
	rec := &recorder{}
	tolerant := job.NewOrchestration("tolerant", nil, stringType, func(oc job.Context, _ []any) job.Step {
		missing := oc.Call("missing")
		mismatched := oc.Call("record", 42)
		return oc.Call("record", "X").Then(func(v any) job.Step {
			return job.Completed(fmt.Sprintf("%v %v %s", missing.IsFailed(), mismatched.IsFailed(), v))
		})
	})
	cfg := defaultEngineConfig()
	cfg.RetainFinished = true
	m := newManager(t, store, cfg, []job.Descriptor{rec.descriptor(), tolerant})

	h, err := m.RunNew(context.Background(), "tolerant")
	require.NoError(t, err)
	v, err := await(t, h)
	require.NoError(t, err)
	assert.Equal(t, "true true ok:X", v)
	assert.Equal(t, []string{"X"}, rec.snapshot())

	reg, err := job.NewRegistry(factory(rec.descriptor()), factory(tolerant))
	require.NoError(t, err)
	var root *model.JobState
	require.Eventually(t, func() bool {
		data, err := store.Read(context.Background(), h.JobID())
		if err != nil {
			return false
		}
		root, err = serialization.NewStateCodec(serialization.JSONCodec{}, reg).Decode(data)
		return err == nil && root.Status == model.JobStatusCompleted
	}, waitFor, 10*time.Millisecond)
	require.Len(t, root.History, 3)
	assert.Equal(t, model.NilJobID, root.History[0].ChildJobID)
	assert.Equal(t, model.HistoryFailed, root.History[0].Status)
	assert.Contains(t, root.History[0].Result, "unknown job type")
	assert.Equal(t, model.NilJobID, root.History[1].ChildJobID)
	assert.Contains(t, root.History[1].Result, "argument mismatch")
	assert.Equal(t, model.HistoryCompleted, root.History[2].Status)
	assert.Equal(t, "ok:X", root.History[2].Result)
}

func TestUnitOfWork_PanicFailsJob(t *testing.T) {
	panicky := job.NewUnitOfWork("panicky", nil, nil, func(context.Context, []any) (any, error) {
		panic("kaboom")
	})
	m := newManager(t, inmemory.NewStore(), defaultEngineConfig(), []job.Descriptor{panicky})

	h, err := m.RunNew(context.Background(), "panicky")
	require.NoError(t, err)
	_, err = await(t, h)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestUnitOfWork_WrongResultTypeFailsJob(t *testing.T) {
	liar := job.NewUnitOfWork("liar", nil, intType, func(context.Context, []any) (any, error) {
		return "not an int", nil
	})
	m := newManager(t, inmemory.NewStore(), defaultEngineConfig(), []job.Descriptor{liar})

	h, err := m.RunNew(context.Background(), "liar")
	require.NoError(t, err)
	_, err = await(t, h)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "argument mismatch")
}

func TestOrchestration_PendingWithoutChildrenFails(t *testing.T) {
	stuck := job.NewOrchestration("stuck", nil, nil, func(job.Context, []any) job.Step {
		return job.Pending()
	})
	m := newManager(t, inmemory.NewStore(), defaultEngineConfig(), []job.Descriptor{stuck})

	h, err := m.RunNew(context.Background(), "stuck")
	require.NoError(t, err)
	_, err = await(t, h)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without waiting")
}

// blocker is a unit of work that runs until its context is cancelled.
type blocker struct {
	started   chan struct{}
	cancelled chan struct{}
}

func newBlocker() *blocker {
	return &blocker{started: make(chan struct{}, 8), cancelled: make(chan struct{}, 8)}
}

func (b *blocker) descriptor() job.Descriptor {
	return job.NewUnitOfWork("block", nil, stringType, func(ctx context.Context, _ []any) (any, error) {
		b.started <- struct{}{}
		<-ctx.Done()
		b.cancelled <- struct{}{}
		return nil, ctx.Err()
	})
}

func waitBlock() job.Descriptor {
	return job.NewOrchestration("waitblock", nil, stringType, func(oc job.Context, _ []any) job.Step {
		return oc.Call("block")
	})
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(waitFor):
		t.Fatal("timed out waiting on channel")
		var zero T
		return zero
	}
}

func childOf(t *testing.T, m *engine.Manager, root model.JobID) model.JobID {
	t.Helper()
	for _, id := range m.Jobs() {
		if id != root {
			return id
		}
	}
	t.Fatal("no child job is live")
	return model.NilJobID
}

func TestLinkageWhileWaiting(t *testing.T) {
	store := inmemory.NewStore()
	b := newBlocker()
	m := newManager(t, store, defaultEngineConfig(), []job.Descriptor{b.descriptor(), waitBlock()})

	h, err := m.RunNew(context.Background(), "waitblock")
	require.NoError(t, err)
	receive(t, b.started)

	childID := childOf(t, m, h.JobID())
	require.Eventually(t, func() bool {
		rs, rerr := m.Status(h.JobID())
		cs, cerr := m.Status(childID)
		return rerr == nil && cerr == nil && rs == model.JobStatusWaiting && cs == model.JobStatusRunning
	}, waitFor, 10*time.Millisecond)

	root, err := m.Snapshot(h.JobID())
	require.NoError(t, err)
	child, err := m.Snapshot(childID)
	require.NoError(t, err)
	require.NoError(t, model.ValidateLinkage(root, child))
	assert.Equal(t, model.HistoryRunning, root.History[0].Status)
	assert.Equal(t, model.JobStatusRunning, child.Status)
	assert.Nil(t, root.Continuation)

	// Both are saved.
	_, err = store.Read(context.Background(), h.JobID())
	assert.NoError(t, err)
	_, err = store.Read(context.Background(), childID)
	assert.NoError(t, err)

	require.NoError(t, m.Cancel(context.Background(), h.JobID()))
	_, err = await(t, h)
	assert.ErrorIs(t, err, exception.ErrCancelled)
}

func TestCancel_RootCancelsSubTree(t *testing.T) {
	store := inmemory.NewStore()
	b := newBlocker()
	m := newManager(t, store, defaultEngineConfig(), []job.Descriptor{b.descriptor(), waitBlock()})

	h, err := m.RunNew(context.Background(), "waitblock")
	require.NoError(t, err)
	receive(t, b.started)

	require.NoError(t, m.Cancel(context.Background(), h.JobID()))
	_, err = await(t, h)
	assert.ErrorIs(t, err, exception.ErrCancelled)
	receive(t, b.cancelled)

	require.Eventually(t, func() bool { return len(m.Jobs()) == 0 && store.Len() == 0 }, waitFor, 10*time.Millisecond)
	assert.ErrorIs(t, m.Cancel(context.Background(), h.JobID()), exception.ErrJobNotFound)
}

func TestCancel_RecordsOpenCallSitesAsCancelled(t *testing.T) {
	store := inmemory.NewStore()
	b := newBlocker()
	cfg := defaultEngineConfig()
	cfg.RetainFinished = true
	m := newManager(t, store, cfg, []job.Descriptor{b.descriptor(), waitBlock()})

	h, err := m.RunNew(context.Background(), "waitblock")
	require.NoError(t, err)
	receive(t, b.started)
	childID := childOf(t, m, h.JobID())

	require.NoError(t, m.Cancel(context.Background(), h.JobID()))
	_, err = await(t, h)
	assert.ErrorIs(t, err, exception.ErrCancelled)
	receive(t, b.cancelled)

	reg, err := job.NewRegistry(factory(b.descriptor()), factory(waitBlock()))
	require.NoError(t, err)
	root := readState(t, store, reg, h.JobID())
	assert.Equal(t, model.JobStatusCancelled, root.Status)
	require.Len(t, root.History, 1)
	assert.Equal(t, childID, root.History[0].ChildJobID)
	assert.Equal(t, model.HistoryFailed, root.History[0].Status)
	assert.Equal(t, exception.CancelledMessage, root.History[0].Result)
}

func TestCancel_ChildFailsParentEntry(t *testing.T) {
	b := newBlocker()
	observe := job.NewOrchestration("observe", nil, stringType, func(oc job.Context, _ []any) job.Step {
		s := oc.Call("block")
		if s.IsFailed() {
			return job.Completed("child " + exception.ExtractErrorMessage(s.Err()))
		}
		return s
	})
	m := newManager(t, inmemory.NewStore(), defaultEngineConfig(), []job.Descriptor{b.descriptor(), observe})

	h, err := m.RunNew(context.Background(), "observe")
	require.NoError(t, err)
	receive(t, b.started)

	require.NoError(t, m.Cancel(context.Background(), childOf(t, m, h.JobID())))
	v, err := await(t, h)
	require.NoError(t, err)
	assert.Equal(t, "child cancelled", v)
}

func TestSubscribe_StreamsUntilStopped(t *testing.T) {
	b := newBlocker()
	m := newManager(t, inmemory.NewStore(), defaultEngineConfig(), []job.Descriptor{b.descriptor()})

	h, err := m.RunNew(context.Background(), "block")
	require.NoError(t, err)
	receive(t, b.started)

	ch, cancel, err := m.Subscribe(h.JobID(), 16)
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, m.Cancel(context.Background(), h.JobID()))
	var seen []actor.Status
	timeout := time.After(waitFor)
	for done := false; !done; {
		select {
		case s, ok := <-ch:
			if !ok {
				done = true
				break
			}
			seen = append(seen, s)
		case <-timeout:
			t.Fatal("subscription did not close")
		}
	}
	require.NotEmpty(t, seen)
	assert.Equal(t, actor.StatusStopped, seen[len(seen)-1])

	_, _, err = m.Subscribe(model.NewJobID(), 1)
	assert.ErrorIs(t, err, exception.ErrJobNotFound)
}

func TestAttach_LiveRootAndErrors(t *testing.T) {
	b := newBlocker()
	m := newManager(t, inmemory.NewStore(), defaultEngineConfig(), []job.Descriptor{b.descriptor(), waitBlock()})

	h, err := m.RunNew(context.Background(), "waitblock")
	require.NoError(t, err)
	receive(t, b.started)

	attached, err := m.Attach(h.JobID())
	require.NoError(t, err)
	_, err = m.Attach(childOf(t, m, h.JobID()))
	assert.Error(t, err)
	_, err = m.Attach(model.NewJobID())
	assert.ErrorIs(t, err, exception.ErrJobNotFound)

	require.NoError(t, m.Cancel(context.Background(), h.JobID()))
	_, err = await(t, attached)
	assert.ErrorIs(t, err, exception.ErrCancelled)
	_, err = await(t, h)
	assert.ErrorIs(t, err, exception.ErrCancelled)
}

func TestStop_RejectsNewWork(t *testing.T) {
	m := newManager(t, inmemory.NewStore(), defaultEngineConfig(), []job.Descriptor{double()})
	require.NoError(t, m.Stop(context.Background()))
	require.NoError(t, m.Stop(context.Background()))

	_, err := m.RunNew(context.Background(), "double", 1)
	assert.ErrorIs(t, err, exception.ErrEngineStopped)
}

// closeTrackingStore counts the writes and deletes that reach it after Close.
type closeTrackingStore struct {
	*inmemory.Store
	closed atomic.Bool
	late   atomic.Int32
}

func (s *closeTrackingStore) Write(ctx context.Context, id model.JobID, data []byte) error {
	if s.closed.Load() {
		s.late.Add(1)
	}
	return s.Store.Write(ctx, id, data)
}

func (s *closeTrackingStore) Delete(ctx context.Context, id model.JobID) error {
	if s.closed.Load() {
		s.late.Add(1)
	}
	return s.Store.Delete(ctx, id)
}

func (s *closeTrackingStore) Close() error {
	s.closed.Store(true)
	return s.Store.Close()
}

func TestStop_NoStoreAccessAfterClose(t *testing.T) {
	wide := job.NewOrchestration("wide", nil, intType, func(oc job.Context, _ []any) job.Step {
		total := 0
		steps := make([]job.Step, 20)
		for i := range steps {
			steps[i] = oc.Call("double", i)
		}
		for _, s := range steps {
			if !s.Done() {
				return s
			}
			total += s.Value().(int)
		}
		return job.Completed(total)
	})
	store := &closeTrackingStore{Store: inmemory.NewStore()}
	cfg := defaultEngineConfig()
	cfg.MaxWorkers = 2
	m := newManager(t, store, cfg, []job.Descriptor{double(), wide})

	for i := 0; i < 5; i++ {
		_, err := m.RunNew(context.Background(), "wide")
		require.NoError(t, err)
	}
	require.NoError(t, m.Stop(context.Background()))
	require.True(t, store.closed.Load())

	// Give anything still scheduled a chance to run against the closed store.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), store.late.Load())
}

func TestMsgpackCodecWithDebugRoundTrip(t *testing.T) {
	prev := logger.GetLogLevel()
	logger.SetLogLevel("DEBUG")
	defer logger.SetLogLevel(prev.String())

	store := inmemory.NewStore()
	cfg := defaultEngineConfig()
	cfg.RetainFinished = true
	m := newManager(t, store, cfg, []job.Descriptor{echo(), process()}, engine.WithCodec(serialization.MsgpackCodec{}))

	h, err := m.RunNew(context.Background(), "process", "done")
	require.NoError(t, err)
	v, err := await(t, h)
	require.NoError(t, err)
	assert.Equal(t, "done-processed", v)

	reg, err := job.NewRegistry(factory(echo()), factory(process()))
	require.NoError(t, err)
	codec := serialization.NewStateCodec(serialization.MsgpackCodec{}, reg)
	require.Eventually(t, func() bool {
		data, err := store.Read(context.Background(), h.JobID())
		if err != nil {
			return false
		}
		st, err := codec.Decode(data)
		return err == nil && st.Status == model.JobStatusCompleted
	}, waitFor, 10*time.Millisecond)

	data, err := store.Read(context.Background(), h.JobID())
	require.NoError(t, err)
	root, err := codec.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "done-processed", root.Result)
	require.Len(t, root.History, 1)
	assert.Equal(t, model.HistoryCompleted, root.History[0].Status)
	assert.Equal(t, "done", root.History[0].Result)
	assert.Equal(t, 2, store.Len())
}
