package actor_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/durable/pkg/durable/core/actor"
)

type setValue struct{ v int }

type counterState struct {
	value   int
	applied []int
	seen    []int
}

func setValueHandler(s counterState, m setValue) (counterState, bool, error) {
	s.seen = append(append([]int(nil), s.seen...), s.value)
	s.value = m.v
	s.applied = append(append([]int(nil), s.applied...), m.v)
	return s, true, nil
}

// countingScheduler records how many quanta were scheduled.
type countingScheduler struct {
	count atomic.Int32
}

func (c *countingScheduler) Schedule(task func()) {
	c.count.Add(1)
	go task()
}

func waitIdle[S, M any](t *testing.T, a *actor.Actor[S, M]) {
	t.Helper()
	require.Eventually(t, func() bool {
		return a.Status() != actor.StatusOccupied && a.Pending() == 0
	}, 2*time.Second, time.Millisecond)
}

func TestFIFOFromSingleProducer(t *testing.T) {
	a := actor.New(counterState{}, setValueHandler, actor.Options{Name: "fifo"})

	a.Post(setValue{1})
	a.Post(setValue{2})
	a.Post(setValue{3})
	waitIdle(t, a)
	assert.Equal(t, 3, a.State().value)

	a.Post(setValue{4})
	waitIdle(t, a)
	s := a.State()
	assert.Equal(t, []int{1, 2, 3, 4}, s.applied)
	assert.Equal(t, []int{0, 1, 2, 3}, s.seen, "each message observes the state written by its predecessor")
}

func TestNoConcurrentHandling(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	handler := func(n int, _ struct{}) (int, bool, error) {
		cur := inFlight.Add(1)
		for {
			prev := maxInFlight.Load()
			if cur <= prev || maxInFlight.CompareAndSwap(prev, cur) {
				break
			}
		}
		time.Sleep(10 * time.Microsecond)
		inFlight.Add(-1)
		return n + 1, true, nil
	}
	a := actor.New(0, handler, actor.Options{Name: "serial", BatchSize: 7})

	const producers, perProducer = 8, 50
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				a.Post(struct{}{})
			}
		}()
	}
	wg.Wait()
	waitIdle(t, a)

	assert.Equal(t, producers*perProducer, a.State())
	assert.Equal(t, int32(1), maxInFlight.Load())
}

func TestBatchYieldsToScheduler(t *testing.T) {
	sched := &countingScheduler{}
	gate := make(chan struct{})
	handler := func(n int, _ int) (int, bool, error) {
		<-gate
		return n + 1, true, nil
	}
	a := actor.New(0, handler, actor.Options{Name: "batch", BatchSize: 10, Scheduler: sched})

	for i := 0; i < 25; i++ {
		a.Post(i)
	}
	close(gate)
	waitIdle(t, a)

	assert.Equal(t, 25, a.State())
	assert.Equal(t, int32(3), sched.count.Load(), "25 messages in batches of 10 take three quanta")
}

func TestHandlerErrorDropsMessageOnly(t *testing.T) {
	var errs atomic.Int32
	handler := func(s []int, m int) ([]int, bool, error) {
		next := append(append([]int(nil), s...), m)
		switch m {
		case 2:
			return next, true, errors.New("rejected")
		case 3:
			panic("boom")
		}
		return next, true, nil
	}
	a := actor.New([]int(nil), handler, actor.Options{
		Name: "errors",
		OnHandled: func(_ any, err error) {
			if err != nil {
				errs.Add(1)
			}
		},
	})

	for i := 1; i <= 4; i++ {
		a.Post(i)
	}
	waitIdle(t, a)

	assert.Equal(t, []int{1, 4}, a.State())
	assert.Equal(t, int32(2), errs.Load())
	assert.Equal(t, actor.StatusIdle, a.Status())
}

func TestStoppedActorIsTerminal(t *testing.T) {
	handler := func(n int, m string) (int, bool, error) {
		return n + 1, m != "stop", nil
	}
	a := actor.New(0, handler, actor.Options{Name: "stop"})

	a.Post("a")
	a.Post("stop")
	a.Post("ignored")

	select {
	case <-a.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("actor did not stop")
	}
	a.Post("also ignored")

	assert.Equal(t, actor.StatusStopped, a.Status())
	assert.Equal(t, 2, a.State())
	assert.Equal(t, 2, a.Pending(), "posts after stop are queued, never processed")
}

func TestSubscribeSeesTransitions(t *testing.T) {
	gate := make(chan struct{})
	handler := func(n int, m string) (int, bool, error) {
		<-gate
		return n, m != "stop", nil
	}
	a := actor.New(0, handler, actor.Options{Name: "subs"})
	events, cancel := a.Subscribe(8)
	defer cancel()

	a.Post("work")
	close(gate)
	waitIdle(t, a)
	a.Post("stop")

	var got []actor.Status
	for s := range events {
		got = append(got, s)
	}
	assert.Equal(t, []actor.Status{
		actor.StatusOccupied, actor.StatusIdle,
		actor.StatusOccupied, actor.StatusStopped,
	}, got)

	late, _ := a.Subscribe(1)
	assert.Equal(t, actor.StatusStopped, <-late)
	_, open := <-late
	assert.False(t, open)
}

func TestSubscribeCancel(t *testing.T) {
	a := actor.New(0, func(n int, _ int) (int, bool, error) { return n, true, nil }, actor.Options{})
	events, cancel := a.Subscribe(1)
	cancel()
	cancel()
	_, open := <-events
	assert.False(t, open)

	a.Post(1)
	waitIdle(t, a)
}

func TestPoolSchedulerBoundsConcurrency(t *testing.T) {
	pool := actor.NewPoolScheduler(2)
	defer pool.Close()

	var running, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		pool.Schedule(func() {
			defer wg.Done()
			cur := running.Add(1)
			for {
				prev := peak.Load()
				if cur <= prev || peak.CompareAndSwap(prev, cur) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			running.Add(-1)
		})
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Equal(t, "Occupied", actor.StatusOccupied.String())
}

func TestActorsShareAPool(t *testing.T) {
	pool := actor.NewPoolScheduler(1)
	defer pool.Close()

	actors := make([]*actor.Actor[int, int], 4)
	for i := range actors {
		actors[i] = actor.New(0, func(n int, m int) (int, bool, error) { return n + m, true, nil },
			actor.Options{Scheduler: pool, BatchSize: 3})
	}
	for _, a := range actors {
		for j := 1; j <= 10; j++ {
			a.Post(j)
		}
	}
	for _, a := range actors {
		waitIdle(t, a)
		assert.Equal(t, 55, a.State())
	}
}
