// ABOUTME: Asynchronous task dispatcher with per-key FIFO execution
// ABOUTME: Enqueue returns immediately; tasks for the same key never reorder

package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrClosed is returned by Enqueue after the dispatcher has been shut down.
// Enqueue fails loudly rather than silently dropping work.
var ErrClosed = errors.New("dispatcher closed")

// Task is a unit of asynchronous work.
type Task func(ctx context.Context)

// Dispatcher runs tasks off the request path. Tasks sharing a key execute
// in enqueue order, one at a time; tasks with different keys run
// concurrently with no ordering guarantee between them.
type Dispatcher struct {
	mu     sync.Mutex
	queues map[string][]Task
	closed bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
}

// New creates a running dispatcher. Pass nil logger for default.
func New(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		queues: make(map[string][]Task),
		ctx:    ctx,
		cancel: cancel,
		logger: logger.With("component", "dispatch"),
	}
}

// Enqueue schedules the task and returns immediately. The task executes
// exactly once, after every previously enqueued task with the same key.
func (d *Dispatcher) Enqueue(key string, task Task) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}

	// A key is present in the map exactly while its drain goroutine is
	// live: drain deletes the key in the same critical section as the
	// final pop. Presence before append is therefore the worker-liveness
	// check, and a second worker can never be spawned for a live key.
	_, active := d.queues[key]
	d.queues[key] = append(d.queues[key], task)
	if !active {
		d.wg.Add(1)
		go d.drain(key)
	}
	d.mu.Unlock()

	return nil
}

// drain executes the key's queue in order until it is empty, then exits.
// Only one drain goroutine exists per key at a time, which is what gives
// the per-key FIFO guarantee. The executing task stays at the head of the
// queue until it finishes, so the head read at the top of the loop is
// always valid.
func (d *Dispatcher) drain(key string) {
	defer d.wg.Done()

	for {
		d.mu.Lock()
		task := d.queues[key][0]
		d.mu.Unlock()

		d.run(key, task)

		d.mu.Lock()
		d.queues[key] = d.queues[key][1:]
		if len(d.queues[key]) == 0 {
			delete(d.queues, key)
			d.mu.Unlock()
			return
		}
		d.mu.Unlock()
	}
}

// run executes one task, containing panics so a bad task cannot take the
// key's worker down with work still queued.
func (d *Dispatcher) run(key string, task Task) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("task panicked", "key", key, "panic", r)
		}
	}()
	task(d.ctx)
}

// Close stops accepting work and waits for queued tasks to finish, up to
// ctx's deadline. In-flight tasks observe cancellation through the context
// they were handed.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		return ctx.Err()
	}
}
