// Package engine runs durable jobs. Every live job is an actor owning its JobState:
// orchestrations are replayed from their persisted history each time they are scheduled,
// units of work execute their body once. Every transition is saved to the
// JobStateStore before it becomes visible to other jobs.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/tigerroll/durable/pkg/durable/core/actor"
	"github.com/tigerroll/durable/pkg/durable/core/config"
	model "github.com/tigerroll/durable/pkg/durable/core/domain/model"
	"github.com/tigerroll/durable/pkg/durable/core/domain/repository"
	"github.com/tigerroll/durable/pkg/durable/core/job"
	metrics "github.com/tigerroll/durable/pkg/durable/core/metrics"
	"github.com/tigerroll/durable/pkg/durable/support/util/exception"
	"github.com/tigerroll/durable/pkg/durable/support/util/logger"
	"github.com/tigerroll/durable/pkg/durable/support/util/serialization"
)

const module = "engine"

type jobActor = actor.Actor[*model.JobState, message]

// Option configures a Manager.
type Option func(*Manager)

// WithCodec sets the wire codec used for saved states. The default is JSON.
func WithCodec(c serialization.Codec) Option {
	return func(m *Manager) { m.wire = c }
}

// WithEngineConfig replaces the default engine settings.
func WithEngineConfig(cfg config.EngineConfig) Option {
	return func(m *Manager) { m.cfg = cfg }
}

// WithMetricRecorder sets the recorder. The default discards everything.
func WithMetricRecorder(r metrics.MetricRecorder) Option {
	return func(m *Manager) {
		if r != nil {
			m.recorder = r
		}
	}
}

// WithTracer sets the tracer. The default records nothing.
func WithTracer(t metrics.Tracer) Option {
	return func(m *Manager) {
		if t != nil {
			m.tracer = t
		}
	}
}

// Manager owns the live jobs of one process.
type Manager struct {
	registry  *job.Registry
	store     repository.JobStateStore
	wire      serialization.Codec
	codec     *serialization.StateCodec
	cfg       config.EngineConfig
	recorder  metrics.MetricRecorder
	tracer    metrics.Tracer
	scheduler actor.Scheduler
	pool      *actor.PoolScheduler

	// ctx parents every unit-of-work context; Stop cancels it.
	ctx    context.Context
	cancel context.CancelFunc
	work   sync.WaitGroup
	// handling counts actor handlers in progress. None start once stopping is set.
	handling sync.WaitGroup

	mu       sync.Mutex
	jobs     map[model.JobID]*jobActor
	waiters  map[model.JobID][]*Handle
	finished map[model.JobID]*model.JobState // terminal roots nobody has awaited yet
	stalled  map[model.JobID]struct{}
	started  bool
	stopping bool
}

// New creates a Manager over registry and store.
func New(registry *job.Registry, store repository.JobStateStore, opts ...Option) *Manager {
	m := &Manager{
		registry: registry,
		store:    store,
		wire:     serialization.JSONCodec{},
		cfg:      config.NewConfig().Durable.Engine,
		recorder: metrics.NewNoOpMetricRecorder(),
		tracer:   metrics.NewNoOpTracer(),
		jobs:     make(map[model.JobID]*jobActor),
		waiters:  make(map[model.JobID][]*Handle),
		finished: make(map[model.JobID]*model.JobState),
		stalled:  make(map[model.JobID]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.codec = serialization.NewStateCodec(m.wire, registry)
	if m.cfg.MaxWorkers > 0 {
		m.pool = actor.NewPoolScheduler(m.cfg.MaxWorkers)
		m.scheduler = m.pool
	} else {
		m.scheduler = actor.GoroutineScheduler{}
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m
}

// RunNew starts a root job of the type registered under name.
func (m *Manager) RunNew(ctx context.Context, name string, args ...any) (*Handle, error) {
	if m.isStopping() {
		return nil, exception.ErrEngineStopped
	}
	desc, kind, err := m.registry.Resolve(name)
	if err != nil {
		return nil, err
	}
	if err := job.CheckArguments(desc, args); err != nil {
		return nil, err
	}

	st := model.NewJobState(model.NewJobID(), name, kind, args)
	h := newHandle(st.ID)
	st.Continuation = h.resolve
	if err := m.save(ctx, st); err != nil {
		return nil, err
	}
	logger.Infof("Job %s (%s) created.", st.ID, st.Type)
	m.register(st).Post(runMsg{})
	return h, nil
}

// Cancel cancels a live job and everything it is waiting on. The job's caller sees
// a failure matching exception.ErrCancelled. Cancelling a finished root is a no-op.
func (m *Manager) Cancel(ctx context.Context, id model.JobID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	a, live := m.jobs[id]
	_, done := m.finished[id]
	m.mu.Unlock()
	switch {
	case live:
		a.Post(cancelMsg{})
		return nil
	case done:
		return nil
	default:
		return fmt.Errorf("%w: %s", exception.ErrJobNotFound, id)
	}
}

// Attach returns a handle for a root job, typically one rehydrated by Start whose
// original caller is gone. A root that finished before anyone attached resolves at once.
func (m *Manager) Attach(id model.JobID) (*Handle, error) {
	m.mu.Lock()
	if a, ok := m.jobs[id]; ok {
		if !a.State().IsRoot() {
			m.mu.Unlock()
			return nil, exception.NewDurableErrorf(module, "job %s is not a root job", id)
		}
		h := newHandle(id)
		m.waiters[id] = append(m.waiters[id], h)
		m.mu.Unlock()
		return h, nil
	}
	st, ok := m.finished[id]
	if ok {
		delete(m.finished, id)
	}
	m.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", exception.ErrJobNotFound, id)
	}
	h := newHandle(id)
	h.resolve(outcome(st))
	m.discard(id)
	return h, nil
}

// Status returns the status of a live job, or of a finished root awaiting Attach.
func (m *Manager) Status(id model.JobID) (model.JobStatus, error) {
	st, err := m.Snapshot(id)
	if err != nil {
		return "", err
	}
	return st.Status, nil
}

// Snapshot returns a copy of a job's state without its runtime fields.
func (m *Manager) Snapshot(id model.JobID) (*model.JobState, error) {
	m.mu.Lock()
	a, live := m.jobs[id]
	fin, done := m.finished[id]
	m.mu.Unlock()
	switch {
	case live:
		return snapshot(a.State()), nil
	case done:
		return snapshot(fin), nil
	default:
		return nil, fmt.Errorf("%w: %s", exception.ErrJobNotFound, id)
	}
}

// Jobs returns the ids of the live jobs.
func (m *Manager) Jobs() []model.JobID {
	m.mu.Lock()
	ids := make([]model.JobID, 0, len(m.jobs))
	for id := range m.jobs {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	sortIDs(ids)
	return ids
}

// Finished returns the ids of roots that finished while nobody was waiting on them.
// Their records stay in the store until they are attached.
func (m *Manager) Finished() []model.JobID {
	m.mu.Lock()
	ids := make([]model.JobID, 0, len(m.finished))
	for id := range m.finished {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	sortIDs(ids)
	return ids
}

// Subscribe streams the actor status transitions of a live job. A buffer below one
// uses the configured status buffer size.
func (m *Manager) Subscribe(id model.JobID, buffer int) (<-chan actor.Status, func(), error) {
	a, ok := m.lookup(id)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", exception.ErrJobNotFound, id)
	}
	if buffer < 1 {
		buffer = m.cfg.StatusBufferSize
	}
	ch, cancel := a.Subscribe(buffer)
	return ch, cancel, nil
}

// Stalled lists units of work that were executing when the process stopped and are
// waiting for Resume.
func (m *Manager) Stalled() []model.JobID {
	m.mu.Lock()
	ids := make([]model.JobID, 0, len(m.stalled))
	for id := range m.stalled {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	sortIDs(ids)
	return ids
}

// Resume re-executes a stalled unit of work from the start.
func (m *Manager) Resume(ctx context.Context, id model.JobID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.isStopping() {
		return exception.ErrEngineStopped
	}
	m.mu.Lock()
	_, stalled := m.stalled[id]
	a := m.jobs[id]
	m.mu.Unlock()
	if !stalled || a == nil {
		return exception.NewDurableErrorf(module, "job %s is not stalled", id)
	}
	logger.Infof("Job %s: resuming.", id)
	a.Post(runMsg{})
	return nil
}

// Stop cancels executing units of work, waits for their bodies to return and for the
// actor handlers already running, and closes the store. Messages handled after Stop are
// dropped. Work interrupted this way stays in the store as it was and is handled by the
// resume policy on the next Start.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	if m.stopping {
		m.mu.Unlock()
		return nil
	}
	m.stopping = true
	m.mu.Unlock()

	m.cancel()
	done := make(chan struct{})
	go func() {
		m.work.Wait()
		m.handling.Wait()
		close(done)
	}()

	var result *multierror.Error
	var timeout <-chan time.Time
	if d := m.cfg.StopTimeoutDuration(); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case <-done:
	case <-ctx.Done():
		result = multierror.Append(result, fmt.Errorf("waiting for units of work: %w", ctx.Err()))
	case <-timeout:
		result = multierror.Append(result, errors.New("timed out waiting for units of work"))
	}

	if m.pool != nil {
		m.pool.Close()
	}
	if err := m.store.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("closing store: %w", err))
	}
	logger.Infof("Job manager stopped.")
	return result.ErrorOrNil()
}

func (m *Manager) isStopping() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopping
}

func (m *Manager) lookup(id model.JobID) (*jobActor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.jobs[id]
	return a, ok
}

// register creates the job's actor and makes it reachable by id.
func (m *Manager) register(st *model.JobState) *jobActor {
	a := m.newActor(st)
	m.mu.Lock()
	m.jobs[st.ID] = a
	m.mu.Unlock()
	return a
}

func (m *Manager) newActor(st *model.JobState) *jobActor {
	var a *jobActor
	a = actor.New[*model.JobState, message](st, func(s *model.JobState, msg message) (*model.JobState, bool, error) {
		return m.handle(a, s, msg)
	}, actor.Options{
		Name:      st.ID.String(),
		BatchSize: m.cfg.MailboxBatchSize,
		Scheduler: m.scheduler,
		OnHandled: func(msg any, err error) {
			m.recorder.RecordMessage(m.ctx, messageKind(msg), err != nil)
		},
	})
	return a
}

// handle is the actor handler of every job. It never mutates st; changes are made on a
// clone that only becomes the actor's state when the whole message succeeded.
func (m *Manager) handle(a *jobActor, st *model.JobState, msg message) (*model.JobState, bool, error) {
	m.mu.Lock()
	if m.stopping {
		m.mu.Unlock()
		logger.Debugf("Job %s: manager is stopping, dropping %s message.", st.ID, messageKind(msg))
		return st, true, nil
	}
	m.handling.Add(1)
	m.mu.Unlock()
	defer m.handling.Done()

	switch msg := msg.(type) {
	case runMsg:
		if st.IsOrchestration() {
			return m.replay(st)
		}
		return m.startUnitOfWork(a, st)
	case childResolvedMsg:
		return m.resolveChild(st, msg)
	case selfFinishedMsg:
		return m.finishUnitOfWork(st, msg)
	case cancelMsg:
		return m.cancelJob(st)
	default:
		return st, true, fmt.Errorf("%w: %T", exception.ErrUnknownMessage, msg)
	}
}

// cancelJob finishes the job as Cancelled after forwarding the cancel to its open children.
func (m *Manager) cancelJob(st *model.JobState) (*model.JobState, bool, error) {
	if st.Status.IsFinished() {
		return st, false, nil
	}
	next := st.Clone()
	if next.CancelFunc != nil {
		next.CancelFunc()
		next.CancelFunc = nil
	}
	next.Started = false
	for i, e := range next.History {
		if e.Status.IsResolved() {
			continue
		}
		next.ResolveHistory(i, e.ChildJobID, model.HistoryFailed, exception.CancelledMessage)
		if child, ok := m.lookup(e.ChildJobID); ok {
			child.Post(cancelMsg{})
		}
	}
	logger.Infof("Job %s (%s) cancelled.", next.ID, next.Type)
	return m.finish(next, model.JobStatusCancelled, nil, exception.CancelledMessage)
}

// finish moves next to a terminal status, saves it and hands the outcome on.
func (m *Manager) finish(next *model.JobState, status model.JobStatus, result any, errMsg string) (*model.JobState, bool, error) {
	if err := next.TransitionTo(status); err != nil {
		return next, true, err
	}
	next.Result = result
	next.Error = errMsg
	if err := m.save(context.Background(), next); err != nil {
		return next, true, err
	}
	m.recorder.RecordJobEnd(m.ctx, next.Type, next.Kind, status, time.Since(next.CreateTime))
	if status == model.JobStatusCompleted {
		logger.Debugf("Job %s (%s) completed.", next.ID, next.Type)
	} else {
		logger.Infof("Job %s (%s) %s: %s", next.ID, next.Type, status, errMsg)
	}
	m.settle(next)
	return next, false, nil
}

// settle removes a terminal job from the live set and delivers its outcome: to the
// parent's history slot, or to the root's continuation and attached handles.
func (m *Manager) settle(st *model.JobState) {
	m.mu.Lock()
	delete(m.jobs, st.ID)
	delete(m.stalled, st.ID)
	waiters := m.waiters[st.ID]
	delete(m.waiters, st.ID)
	var parent *jobActor
	if !st.IsRoot() {
		parent = m.jobs[*st.ParentJobID]
	}
	parked := st.IsRoot() && st.Continuation == nil && len(waiters) == 0
	if parked {
		m.finished[st.ID] = snapshot(st)
	}
	m.mu.Unlock()

	if st.IsRoot() {
		result, err := outcome(st)
		if st.Continuation != nil {
			st.Continuation(result, err)
		}
		for _, h := range waiters {
			h.resolve(result, err)
		}
		if !parked {
			m.discard(st.ID)
		}
		return
	}

	if parent == nil {
		logger.Debugf("Job %s: parent %s is gone, discarding its state.", st.ID, *st.ParentJobID)
		m.discard(st.ID)
		return
	}
	status, result := model.HistoryCompleted, st.Result
	if st.Status != model.JobStatusCompleted {
		status, result = model.HistoryFailed, st.Error
	}
	parent.Post(childResolvedMsg{
		Index:   *st.ParentHistoryIndex,
		ChildID: st.ID,
		Status:  status,
		Result:  result,
	})
}

// save encodes and writes st. At DEBUG level the written bytes are decoded again so
// that types which do not survive the round trip show up in the log right away.
func (m *Manager) save(ctx context.Context, st *model.JobState) error {
	data, err := m.codec.Encode(st)
	if err != nil {
		return exception.NewDurableErrorf(module, "failed to encode job %s (%s)", st.ID, st.Type, err)
	}
	if err := m.store.Write(ctx, st.ID, data); err != nil {
		return exception.NewDurableErrorf(module, "failed to save job %s", st.ID, err)
	}
	if logger.IsDebugEnabled() {
		if _, err := m.codec.Decode(data); err != nil {
			logger.Errorf("Job %s (%s): saved state does not decode: %v", st.ID, st.Type, err)
		}
	}
	return nil
}

// discard deletes a finished job's record unless finished records are retained.
func (m *Manager) discard(id model.JobID) {
	if m.cfg.RetainFinished {
		return
	}
	m.forget(id)
}

func (m *Manager) forget(ids ...model.JobID) {
	for _, id := range ids {
		if err := m.store.Delete(context.Background(), id); err != nil {
			logger.Warnf("Job %s: failed to delete state: %v", id, err)
		}
	}
}

// outcome converts a terminal state into what a root's caller receives.
func outcome(st *model.JobState) (any, error) {
	if st.Status == model.JobStatusCompleted {
		return st.Result, nil
	}
	return nil, exception.NewSubJobError(st.Error)
}

// snapshot copies st without the runtime-only fields.
func snapshot(st *model.JobState) *model.JobState {
	c := st.Clone()
	c.Continuation = nil
	c.CancelFunc = nil
	c.Started = false
	return c
}

func sortIDs(ids []model.JobID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}
