package engine

import (
	"context"
	"sync"

	model "github.com/tigerroll/durable/pkg/durable/core/domain/model"
)

// Handle is the caller's view of a root job's eventual outcome.
type Handle struct {
	id     model.JobID
	done   chan struct{}
	once   sync.Once
	result any
	err    error
}

func newHandle(id model.JobID) *Handle {
	return &Handle{id: id, done: make(chan struct{})}
}

// JobID returns the id of the root job.
func (h *Handle) JobID() model.JobID { return h.id }

// Done is closed once the job has an outcome.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Await blocks until the job finishes or ctx is done. A failed or cancelled job
// returns a *exception.SubJobError; cancellation also matches exception.ErrCancelled.
func (h *Handle) Await(ctx context.Context) (any, error) {
	select {
	case <-h.done:
		return h.result, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// resolve settles the handle. Only the first call has any effect.
func (h *Handle) resolve(result any, err error) {
	h.once.Do(func() {
		h.result, h.err = result, err
		close(h.done)
	})
}
