// Package actor implements a mailbox actor: state owned by a single logical thread of
// control, mutated one message at a time in FIFO order.
package actor

import (
	"fmt"
	"sync"

	"github.com/tigerroll/durable/pkg/durable/support/util/exception"
	"github.com/tigerroll/durable/pkg/durable/support/util/logger"
)

// DefaultBatchSize is the number of messages processed per scheduling quantum.
const DefaultBatchSize = 100

// Status is the scheduling status of an actor.
type Status int32

const (
	StatusIdle Status = iota
	StatusOccupied
	StatusStopped
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusOccupied:
		return "Occupied"
	case StatusStopped:
		return "Stopped"
	default:
		return fmt.Sprintf("Status(%d)", int32(s))
	}
}

// Handler applies msg to state. On error the message is dropped and state is left as it
// was before the call, so handlers must not mutate state in place before they can no
// longer fail. Returning keepRunning=false stops the actor for good.
type Handler[S, M any] func(state S, msg M) (next S, keepRunning bool, err error)

// Options configures an Actor.
type Options struct {
	// Name is used in log messages.
	Name string
	// BatchSize bounds messages per quantum. Zero means DefaultBatchSize.
	BatchSize int
	// Scheduler runs processing tasks. Nil means a GoroutineScheduler.
	Scheduler Scheduler
	// OnHandled, if set, is called after every message with the message and the
	// handler's error (nil on success).
	OnHandled func(msg any, err error)
}

// Actor owns a state of type S and processes messages of type M.
type Actor[S, M any] struct {
	name      string
	handler   Handler[S, M]
	scheduler Scheduler
	batchSize int
	onHandled func(any, error)

	mu      sync.Mutex
	state   S
	mailbox []M
	status  Status
	subs    map[int]chan Status
	nextSub int
	stopped chan struct{}
}

// New creates an idle actor holding initial.
func New[S, M any](initial S, handler Handler[S, M], opts Options) *Actor[S, M] {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Scheduler == nil {
		opts.Scheduler = GoroutineScheduler{}
	}
	return &Actor[S, M]{
		name:      opts.Name,
		handler:   handler,
		scheduler: opts.Scheduler,
		batchSize: opts.BatchSize,
		onHandled: opts.OnHandled,
		state:     initial,
		status:    StatusIdle,
		subs:      make(map[int]chan Status),
		stopped:   make(chan struct{}),
	}
}

// Post enqueues msg. It never blocks and is safe from any goroutine.
// Messages posted to a stopped actor are queued but never processed.
func (a *Actor[S, M]) Post(msg M) {
	a.mu.Lock()
	a.mailbox = append(a.mailbox, msg)
	schedule := a.status == StatusIdle
	if schedule {
		a.setStatusLocked(StatusOccupied)
	}
	a.mu.Unlock()

	if schedule {
		a.scheduler.Schedule(a.process)
	}
}

// State returns the current state. It must be treated as read-only by the caller.
func (a *Actor[S, M]) State() S {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Status returns the current status.
func (a *Actor[S, M]) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Pending returns the number of queued messages.
func (a *Actor[S, M]) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.mailbox)
}

// Done is closed once the actor is stopped.
func (a *Actor[S, M]) Done() <-chan struct{} {
	return a.stopped
}

// Subscribe returns a channel receiving every later status transition, in order.
// Delivery never blocks the actor: if the channel's buffer is full the event is dropped.
// The channel is closed by cancel, or after the Stopped transition has been offered.
func (a *Actor[S, M]) Subscribe(buffer int) (<-chan Status, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Status, buffer)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status == StatusStopped {
		ch <- StatusStopped
		close(ch)
		return ch, func() {}
	}
	id := a.nextSub
	a.nextSub++
	a.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			a.mu.Lock()
			defer a.mu.Unlock()
			if sub, ok := a.subs[id]; ok {
				delete(a.subs, id)
				close(sub)
			}
		})
	}
}

func (a *Actor[S, M]) setStatusLocked(s Status) {
	if a.status == s {
		return
	}
	a.status = s
	for id, ch := range a.subs {
		select {
		case ch <- s:
		default:
			logger.Debugf("Actor '%s': status subscriber %d is full, dropped %s.", a.name, id, s)
		}
		if s == StatusStopped {
			close(ch)
			delete(a.subs, id)
		}
	}
	if s == StatusStopped {
		close(a.stopped)
	}
}

// process is the scheduling quantum: up to batchSize messages, then yield.
func (a *Actor[S, M]) process() {
	for i := 0; i < a.batchSize; i++ {
		a.mu.Lock()
		if a.status == StatusStopped {
			a.mu.Unlock()
			return
		}
		if len(a.mailbox) == 0 {
			a.setStatusLocked(StatusIdle)
			a.mu.Unlock()
			return
		}
		msg := a.mailbox[0]
		var zero M
		a.mailbox[0] = zero
		a.mailbox = a.mailbox[1:]
		state := a.state
		a.mu.Unlock()

		next, keepRunning, err := a.invoke(state, msg)
		if a.onHandled != nil {
			a.onHandled(msg, err)
		}

		a.mu.Lock()
		if err != nil {
			logger.Errorf("Actor '%s': handler failed for message %T, message dropped: %v", a.name, msg, err)
		} else {
			a.state = next
			if !keepRunning {
				a.setStatusLocked(StatusStopped)
				a.mu.Unlock()
				return
			}
		}
		a.mu.Unlock()
	}

	a.mu.Lock()
	if len(a.mailbox) == 0 {
		a.setStatusLocked(StatusIdle)
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()
	a.scheduler.Schedule(a.process)
}

func (a *Actor[S, M]) invoke(state S, msg M) (next S, keepRunning bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = exception.PanicError("actor", r)
			keepRunning = true
		}
	}()
	return a.handler(state, msg)
}
