package engine

import (
	"context"
	"errors"
	"fmt"

	model "github.com/tigerroll/durable/pkg/durable/core/domain/model"
	"github.com/tigerroll/durable/pkg/durable/core/job"
	"github.com/tigerroll/durable/pkg/durable/support/util/exception"
	"github.com/tigerroll/durable/pkg/durable/support/util/logger"
)

// startUnitOfWork marks the job Running, saves it and starts the body in its own goroutine.
// The body reports back with selfFinishedMsg.
func (m *Manager) startUnitOfWork(a *jobActor, st *model.JobState) (*model.JobState, bool, error) {
	if st.Status.IsFinished() {
		return st, false, nil
	}
	if st.Started {
		return st, true, nil
	}
	next := st.Clone()
	desc, _, err := m.registry.Resolve(st.Type)
	if err != nil {
		return m.finish(next, model.JobStatusFailed, nil, exception.ExtractErrorMessage(err))
	}
	uow, ok := desc.(job.UnitOfWork)
	if !ok {
		return m.finish(next, model.JobStatusFailed, nil, fmt.Sprintf("job type %q is not a unit of work", st.Type))
	}

	firstRun := next.Status == model.JobStatusPending
	if err := next.TransitionTo(model.JobStatusRunning); err != nil {
		return st, true, err
	}
	ctx, cancel := context.WithCancel(m.ctx)
	next.Started = true
	next.CancelFunc = cancel
	if err := m.save(context.Background(), next); err != nil {
		cancel()
		return st, true, err
	}
	m.mu.Lock()
	if m.stopping {
		m.mu.Unlock()
		cancel()
		return st, true, exception.ErrEngineStopped
	}
	m.work.Add(1)
	delete(m.stalled, next.ID)
	m.mu.Unlock()
	if firstRun {
		m.recorder.RecordJobStart(m.ctx, next.Type, next.Kind)
	}

	go m.execute(ctx, a, uow, snapshot(next))
	return next, true, nil
}

func (m *Manager) execute(ctx context.Context, a *jobActor, uow job.UnitOfWork, st *model.JobState) {
	defer m.work.Done()
	ctx, end := m.tracer.StartJobSpan(ctx, "execute", st)
	result, err := runUnitOfWork(ctx, uow, st.Arguments)
	if err != nil {
		m.tracer.RecordError(ctx, module, err)
	}
	end()
	a.Post(selfFinishedMsg{Result: result, Err: err})
}

// finishUnitOfWork turns the body's return into the job's terminal status.
func (m *Manager) finishUnitOfWork(st *model.JobState, msg selfFinishedMsg) (*model.JobState, bool, error) {
	if st.Status.IsFinished() {
		return st, false, nil
	}
	if !st.Started {
		return st, true, nil
	}
	if msg.Err != nil && errors.Is(msg.Err, context.Canceled) && m.isStopping() {
		logger.Infof("Job %s (%s) interrupted by shutdown; its saved state is left as %s.", st.ID, st.Type, st.Status)
		return st, true, nil
	}

	next := st.Clone()
	if next.CancelFunc != nil {
		next.CancelFunc()
		next.CancelFunc = nil
	}
	next.Started = false
	if msg.Err != nil {
		return m.finish(next, model.JobStatusFailed, nil, exception.ExtractErrorMessage(msg.Err))
	}
	desc, _, err := m.registry.Resolve(st.Type)
	if err == nil {
		err = job.CheckResult(desc, msg.Result)
	}
	if err != nil {
		return m.finish(next, model.JobStatusFailed, nil, exception.ExtractErrorMessage(err))
	}
	return m.finish(next, model.JobStatusCompleted, msg.Result, "")
}

func runUnitOfWork(ctx context.Context, uow job.UnitOfWork, args []any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = exception.PanicError(module, r)
		}
	}()
	return uow.Execute(ctx, args)
}
