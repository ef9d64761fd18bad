package worker

import (
	"context"
	"sync"
	"sync/atomic"
)

// Dispatcher runs at most one job at a time, each on its own goroutine, and
// posts results to a channel the interface loop drains. A job triggered while
// another is in flight is dropped.
type Dispatcher struct {
	parent  context.Context
	busy    atomic.Bool
	results chan Result

	mu     sync.Mutex
	closed bool
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher with a results buffer of the given size.
// Jobs run under ctx.
func NewDispatcher(ctx context.Context, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 1
	}
	return &Dispatcher{
		parent:  ctx,
		results: make(chan Result, buffer),
		done:    make(chan struct{}),
	}
}

// Trigger starts job unless one is already running or the dispatcher is
// closed. It reports whether the job was accepted.
func (d *Dispatcher) Trigger(job Job) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || !d.busy.CompareAndSwap(false, true) {
		return false
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		result := job.Execute(d.parent)
		d.busy.Store(false)

		select {
		case d.results <- result:
		case <-d.done:
		}
	}()
	return true
}

// Busy reports whether a job is in flight
func (d *Dispatcher) Busy() bool {
	return d.busy.Load()
}

// Results delivers finished jobs. The channel is closed by Close.
func (d *Dispatcher) Results() <-chan Result {
	return d.results
}

// Close stops accepting jobs, waits for the running one to finish and closes
// Results. A running job is never interrupted; if nobody drains Results its
// result is discarded.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.done)
	d.mu.Unlock()

	d.wg.Wait()
	close(d.results)
}
