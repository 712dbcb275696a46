package actor

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/tigerroll/durable/pkg/durable/support/util/logger"
)

// Scheduler runs actor processing tasks. Schedule must not block the caller.
type Scheduler interface {
	Schedule(task func())
}

// GoroutineScheduler runs every task on its own goroutine.
type GoroutineScheduler struct{}

// Schedule implements Scheduler.
func (GoroutineScheduler) Schedule(task func()) {
	go task()
}

// PoolScheduler runs at most a fixed number of tasks at once. Tasks beyond the limit wait
// for a slot without blocking Schedule.
type PoolScheduler struct {
	sem    *semaphore.Weighted
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPoolScheduler creates a scheduler with the given number of workers.
func NewPoolScheduler(workers int) *PoolScheduler {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &PoolScheduler{
		sem:    semaphore.NewWeighted(int64(workers)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Schedule implements Scheduler. Tasks scheduled after Close are discarded.
func (p *PoolScheduler) Schedule(task func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.sem.Acquire(p.ctx, 1); err != nil {
			logger.Debugf("Pool scheduler closed, task discarded: %v", err)
			return
		}
		defer p.sem.Release(1)
		task()
	}()
}

// Close stops admitting queued tasks and waits for running ones to return.
func (p *PoolScheduler) Close() {
	p.cancel()
	p.wg.Wait()
}
