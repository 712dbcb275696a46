// Package runner drives the pipeline once the engine is up: it re-attaches to roots that
// survived a restart, starts a new word count and shuts the application down when done.
package runner

import (
	"context"
	"errors"
	"time"

	"go.uber.org/fx"

	appjob "github.com/tigerroll/durable/example/pipeline/internal/app/job"
	model "github.com/tigerroll/durable/pkg/durable/core/domain/model"
	"github.com/tigerroll/durable/pkg/durable/core/engine"
	"github.com/tigerroll/durable/pkg/durable/support/util/logger"
)

// Documents are the inputs of the word count started on every run.
type Documents []string

// RunnerParams defines the dependencies of Register.
type RunnerParams struct {
	fx.In
	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Manager    *engine.Manager
	Documents  Documents
	AppCtx     context.Context `name:"appCtx"`
}

// Register appends the hook that runs the pipeline after the engine has started.
func Register(p RunnerParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go run(p)
			return nil
		},
		OnStop: func(context.Context) error {
			logger.Infof("Application is shutting down.")
			return nil
		},
	})
}

func run(p RunnerParams) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Panic recovered in pipeline runner: %v", r)
		}
		logger.Infof("Requesting application shutdown after the pipeline finished.")
		if err := p.Shutdowner.Shutdown(); err != nil {
			logger.Errorf("Failed to shutdown application: %v", err)
		}
	}()

	handles := attachLeftovers(p.Manager)
	for _, id := range p.Manager.Stalled() {
		logger.Warnf("Job %s is stalled; resuming it.", id)
		if err := p.Manager.Resume(p.AppCtx, id); err != nil {
			logger.Errorf("Failed to resume job %s: %v", id, err)
		}
	}

	h, err := p.Manager.RunNew(p.AppCtx, appjob.WordCountJob, []string(p.Documents))
	if err != nil {
		logger.Errorf("Failed to start job '%s': %v", appjob.WordCountJob, err)
		return
	}
	logger.Infof("Job '%s' started. Job ID: %s", appjob.WordCountJob, h.JobID())
	handles = append(handles, h)

	for _, h := range handles {
		wait(p, h)
	}
}

// attachLeftovers returns handles for the roots a previous run left behind: live ones and
// ones that finished with nobody waiting. Non-root jobs are skipped.
func attachLeftovers(m *engine.Manager) []*engine.Handle {
	var handles []*engine.Handle
	for _, id := range append(m.Jobs(), m.Finished()...) {
		h, err := m.Attach(id)
		if err != nil {
			continue
		}
		logger.Infof("Re-attached to job %s left over from a previous run.", id)
		handles = append(handles, h)
	}
	return handles
}

func wait(p RunnerParams, h *engine.Handle) {
	start := time.Now()
	result, err := h.Await(p.AppCtx)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Warnf("Application context cancelled. Job %s stays in the store and resumes on the next run.", h.JobID())
	case err != nil:
		logger.Errorf("Job %s failed after %v: %v", h.JobID(), time.Since(start), err)
	default:
		logger.Infof("Job %s finished with status %s after %v: %v", h.JobID(), model.JobStatusCompleted, time.Since(start), result)
	}
}
