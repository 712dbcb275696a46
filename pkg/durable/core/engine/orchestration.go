package engine

import (
	"context"
	"fmt"

	model "github.com/tigerroll/durable/pkg/durable/core/domain/model"
	"github.com/tigerroll/durable/pkg/durable/core/job"
	"github.com/tigerroll/durable/pkg/durable/support/util/exception"
	"github.com/tigerroll/durable/pkg/durable/support/util/logger"
)

// replayContext is the job.Context of one orchestration replay. Call sites are matched
// to history entries by position; new call sites append an entry and queue the child,
// which is only created once the replay as a whole succeeded.
type replayContext struct {
	m       *Manager
	state   *model.JobState
	index   int
	spawned []*model.JobState
}

var _ job.Context = (*replayContext)(nil)

func (rc *replayContext) JobID() model.JobID { return rc.state.ID }
func (rc *replayContext) Arguments() []any   { return rc.state.Arguments }
func (rc *replayContext) Replaying() bool    { return rc.index < len(rc.state.History) }

func (rc *replayContext) Call(name string, args ...any) job.Step {
	if rc.index < len(rc.state.History) {
		entry := rc.state.History[rc.index]
		rc.index++
		if entry.ChildType != name {
			return job.Failed(exception.NewDurableErrorf(module,
				"non-deterministic replay of job %s: call site %d recorded %q, replay called %q",
				rc.state.ID, rc.index-1, entry.ChildType, name))
		}
		switch entry.Status {
		case model.HistoryCompleted:
			return job.Completed(entry.Result)
		case model.HistoryFailed:
			msg, _ := entry.Result.(string)
			return job.Failed(exception.NewSubJobError(msg))
		default:
			return job.Pending()
		}
	}

	desc, kind, err := rc.m.registry.Resolve(name)
	if err == nil {
		err = job.CheckArguments(desc, args)
	}
	if err != nil {
		// The slot is recorded as already failed so that later call sites keep their
		// positions and every replay returns this same failure from history.
		msg := exception.ExtractErrorMessage(err)
		rc.state.AppendFailedHistory(name, msg)
		rc.index++
		return job.Failed(exception.NewSubJobError(msg))
	}

	childID := model.NewJobID()
	idx := rc.state.AppendHistory(childID, name)
	rc.index++
	child := model.NewJobState(childID, name, kind, args)
	child.SetParent(rc.state.ID, idx)
	rc.spawned = append(rc.spawned, child)
	return job.Pending()
}

// replay runs the orchestration body against st's history and acts on its Step.
func (m *Manager) replay(st *model.JobState) (*model.JobState, bool, error) {
	if st.Status.IsFinished() {
		return st, false, nil
	}
	next := st.Clone()
	desc, _, err := m.registry.Resolve(st.Type)
	if err != nil {
		return m.finish(next, model.JobStatusFailed, nil, exception.ExtractErrorMessage(err))
	}
	orch, ok := desc.(job.Orchestration)
	if !ok {
		return m.finish(next, model.JobStatusFailed, nil, fmt.Sprintf("job type %q is not an orchestration", st.Type))
	}

	firstRun := next.Status == model.JobStatusPending
	if err := next.TransitionTo(model.JobStatusRunning); err != nil {
		return st, true, err
	}
	if firstRun {
		m.recorder.RecordJobStart(m.ctx, next.Type, next.Kind)
	}

	recorded := len(next.History)
	rc := &replayContext{m: m, state: next}
	ctx, end := m.tracer.StartJobSpan(m.ctx, "replay", next)
	step := runOrchestration(orch, rc, next.Arguments)
	m.recorder.RecordReplay(ctx, next.Type, recorded)
	if step.IsFailed() {
		m.tracer.RecordError(ctx, module, step.Err())
	}
	end()
	logger.Debugf("Job %s (%s) replayed against %d history entries: %s", next.ID, next.Type, recorded, step)

	switch step.Kind() {
	case job.StepCompleted:
		// Calls the body made but did not wait for are never started.
		next.History = next.History[:recorded]
		if err := job.CheckResult(desc, step.Value()); err != nil {
			return m.finish(next, model.JobStatusFailed, nil, exception.ExtractErrorMessage(err))
		}
		return m.finish(next, model.JobStatusCompleted, step.Value(), "")
	case job.StepFailed:
		next.History = next.History[:recorded]
		return m.finish(next, model.JobStatusFailed, nil, exception.ExtractErrorMessage(step.Err()))
	}

	if len(next.PendingChildren()) == 0 {
		return m.finish(next, model.JobStatusFailed, nil, "orchestration returned Pending without waiting on a sub-job")
	}
	if err := next.TransitionTo(model.JobStatusWaiting); err != nil {
		return st, true, err
	}
	if err := m.spawn(next, rc.spawned); err != nil {
		return st, true, err
	}
	return next, true, nil
}

// spawn saves the queued children, then the parent that references them, and only then
// makes the children live. A failure leaves no child running and no parent
// referencing them.
func (m *Manager) spawn(parent *model.JobState, children []*model.JobState) error {
	ctx := context.Background()
	saved := make([]model.JobID, 0, len(children))
	for _, child := range children {
		if err := m.save(ctx, child); err != nil {
			m.forget(saved...)
			return err
		}
		saved = append(saved, child.ID)
	}
	if err := m.save(ctx, parent); err != nil {
		m.forget(saved...)
		return err
	}

	actors := make([]*jobActor, len(children))
	for i, child := range children {
		actors[i] = m.register(child)
		logger.Debugf("Job %s (%s) spawned by %s at history index %d.", child.ID, child.Type, parent.ID, *child.ParentHistoryIndex)
	}
	for _, a := range actors {
		a.Post(runMsg{})
	}
	return nil
}

// resolveChild records a child's outcome in st's history and replays.
func (m *Manager) resolveChild(st *model.JobState, msg childResolvedMsg) (*model.JobState, bool, error) {
	if st.Status.IsFinished() {
		m.discard(msg.ChildID)
		return st, false, nil
	}
	if msg.Index >= 0 && msg.Index < len(st.History) {
		entry := st.History[msg.Index]
		if entry.ChildJobID == msg.ChildID && entry.Status.IsResolved() {
			// Delivered again after a restart; the outcome is already saved.
			m.discard(msg.ChildID)
			return st, true, nil
		}
	}

	next := st.Clone()
	if !next.ResolveHistory(msg.Index, msg.ChildID, msg.Status, msg.Result) {
		return st, true, exception.NewDurableErrorf(module, "job %s has no open history slot %d for child %s", st.ID, msg.Index, msg.ChildID)
	}
	if err := m.save(context.Background(), next); err != nil {
		return st, true, err
	}
	m.discard(msg.ChildID)

	out, keepRunning, err := m.replay(next)
	if err != nil {
		// The outcome is saved; keep it even though this replay could not be applied.
		logger.Errorf("Job %s: replay after child %s resolved failed: %v", next.ID, msg.ChildID, err)
		return next, true, nil
	}
	return out, keepRunning, nil
}

func runOrchestration(orch job.Orchestration, oc job.Context, args []any) (step job.Step) {
	defer func() {
		if r := recover(); r != nil {
			step = job.Failed(exception.PanicError(module, r))
		}
	}()
	return orch.Run(oc, args)
}
