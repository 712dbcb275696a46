package engine

import (
	"context"
	"errors"

	"github.com/tigerroll/durable/pkg/durable/core/config"
	model "github.com/tigerroll/durable/pkg/durable/core/domain/model"
	"github.com/tigerroll/durable/pkg/durable/core/domain/repository"
	"github.com/tigerroll/durable/pkg/durable/support/util/exception"
	"github.com/tigerroll/durable/pkg/durable/support/util/logger"
)

// lostChildMessage fails a history slot whose child has no saved state.
const lostChildMessage = "sub-job state lost"

// Start loads every saved job and resumes the ones that were in flight:
// unfinished orchestrations are replayed, finished children re-deliver their outcome to
// a parent that had not recorded it yet, and units of work that were executing follow
// the resume policy. Finished roots are kept for Attach. Calling Start twice is a no-op.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = true
	m.mu.Unlock()

	states, err := m.load(ctx)
	if err != nil {
		return err
	}
	attached := m.attachedStates(states)

	var (
		replays   []*model.JobState
		runs      []*model.JobState
		redeliver []*model.JobState
		stalled   []model.JobID
		finished  []*model.JobState
		dirty     = make(map[model.JobID]*model.JobState)
	)
	ids := make([]model.JobID, 0, len(attached))
	for id := range attached {
		ids = append(ids, id)
	}
	sortIDs(ids)

	for _, id := range ids {
		st := attached[id]
		switch {
		case st.Status.IsFinished() && st.IsRoot():
			finished = append(finished, st)
		case st.Status.IsFinished():
			redeliver = append(redeliver, st)
		case st.IsOrchestration():
			for i, e := range st.History {
				if _, ok := attached[e.ChildJobID]; !ok && !e.Status.IsResolved() {
					logger.Errorf("Job %s: child %s at history index %d has no saved state, failing the call site.", st.ID, e.ChildJobID, i)
					st.ResolveHistory(i, e.ChildJobID, model.HistoryFailed, lostChildMessage)
					dirty[st.ID] = st
				}
			}
			replays = append(replays, st)
		case st.Status == model.JobStatusPending:
			runs = append(runs, st)
		case m.cfg.ResumePolicy == config.ResumePolicyRestart:
			logger.Warnf("Job %s (%s) was executing at shutdown; restarting it.", st.ID, st.Type)
			runs = append(runs, st)
		default:
			if st.Status == model.JobStatusRunning {
				if err := st.TransitionTo(model.JobStatusWaiting); err != nil {
					return err
				}
				dirty[st.ID] = st
				logger.Warnf("Job %s (%s) was executing at shutdown; it waits for Resume.", st.ID, st.Type)
			}
			if !st.IsRoot() {
				parent := attached[*st.ParentJobID]
				if parent.MarkHistory(*st.ParentHistoryIndex, st.ID, model.HistoryWaiting) {
					dirty[parent.ID] = parent
				}
			}
			stalled = append(stalled, st.ID)
		}
	}

	for _, id := range ids {
		if st, ok := dirty[id]; ok {
			if err := m.save(ctx, st); err != nil {
				return err
			}
		}
	}

	// Every job is registered before any message is posted so that parents and
	// children can always find each other.
	actors := make(map[model.JobID]*jobActor)
	for _, id := range ids {
		if st := attached[id]; !st.Status.IsFinished() {
			actors[id] = m.register(st)
		}
	}
	m.mu.Lock()
	for _, st := range finished {
		m.finished[st.ID] = st
	}
	for _, id := range stalled {
		m.stalled[id] = struct{}{}
	}
	m.mu.Unlock()

	for _, st := range replays {
		actors[st.ID].Post(runMsg{})
	}
	for _, st := range redeliver {
		m.settle(st)
	}
	for _, st := range runs {
		actors[st.ID].Post(runMsg{})
	}

	logger.Infof("Job manager started: %d jobs loaded, %d replayed, %d redelivered, %d started, %d stalled, %d finished roots.",
		len(states), len(replays), len(redeliver), len(runs), len(stalled), len(finished))
	return nil
}

// load reads and decodes every saved state. Records that cannot be decoded are
// logged and left in the store.
func (m *Manager) load(ctx context.Context) (map[model.JobID]*model.JobState, error) {
	ids, err := m.store.All(ctx)
	if err != nil {
		return nil, exception.NewDurableError(module, "failed to list saved jobs", err)
	}
	states := make(map[model.JobID]*model.JobState, len(ids))
	for _, id := range ids {
		data, err := m.store.Read(ctx, id)
		if errors.Is(err, repository.ErrJobStateNotFound) {
			continue
		}
		if err != nil {
			return nil, exception.NewDurableErrorf(module, "failed to read job %s", id, err)
		}
		st, err := m.codec.Decode(data)
		if err != nil {
			logger.Errorf("Job %s: saved state cannot be decoded, skipping it: %v", id, err)
			continue
		}
		states[st.ID] = st
	}
	return states, nil
}

// attachedStates keeps roots and the children whose parent is kept, unfinished and
// links back to them. Orphans are discarded from the store; children with broken
// linkage are logged and left alone.
func (m *Manager) attachedStates(states map[model.JobID]*model.JobState) map[model.JobID]*model.JobState {
	verdict := make(map[model.JobID]bool, len(states))
	visiting := make(map[model.JobID]bool)

	var attached func(st *model.JobState) bool
	attached = func(st *model.JobState) bool {
		if v, ok := verdict[st.ID]; ok {
			return v
		}
		if st.IsRoot() {
			verdict[st.ID] = true
			return true
		}
		if visiting[st.ID] {
			logger.Errorf("Job %s: parent chain loops back to itself.", st.ID)
			verdict[st.ID] = false
			return false
		}
		visiting[st.ID] = true
		defer delete(visiting, st.ID)

		ok := false
		parent, found := states[*st.ParentJobID]
		switch {
		case !found || !attached(parent) || parent.Status.IsFinished():
			logger.Warnf("Job %s (%s): parent %s is gone, discarding its state.", st.ID, st.Type, *st.ParentJobID)
			if st.Status.IsFinished() {
				m.discard(st.ID)
			} else {
				m.forget(st.ID)
			}
		default:
			if err := model.ValidateLinkage(parent, st); err != nil {
				logger.Errorf("Job %s: %v; leaving it in the store.", st.ID, err)
			} else {
				ok = true
			}
		}
		verdict[st.ID] = ok
		return ok
	}

	out := make(map[model.JobID]*model.JobState, len(states))
	for id, st := range states {
		if attached(st) {
			out[id] = st
		}
	}
	return out
}
