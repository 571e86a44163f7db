// ABOUTME: Tests for the per-key FIFO dispatcher
// ABOUTME: Verifies ordering, cross-key concurrency, exactly-once, and shutdown

package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_SameKeyRunsInOrder(t *testing.T) {
	d := New(nil)
	defer d.Close(context.Background())

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		err := d.Enqueue("conv-1", func(ctx context.Context) {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
		require.NoError(t, err)
	}
	wg.Wait()

	require.Len(t, order, 50)
	for i, got := range order {
		assert.Equal(t, i, got)
	}
}

func TestDispatcher_DifferentKeysRunConcurrently(t *testing.T) {
	d := New(nil)
	defer d.Close(context.Background())

	// A blocked task on one key must not stall another key.
	release := make(chan struct{})
	blocked := make(chan struct{})
	require.NoError(t, d.Enqueue("slow", func(ctx context.Context) {
		close(blocked)
		<-release
	}))
	<-blocked

	done := make(chan struct{})
	require.NoError(t, d.Enqueue("fast", func(ctx context.Context) {
		close(done)
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task on independent key was blocked")
	}
	close(release)
}

func TestDispatcher_ExactlyOnce(t *testing.T) {
	d := New(nil)
	defer d.Close(context.Background())

	var mu sync.Mutex
	counts := make(map[int]int)
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		i := i
		wg.Add(1)
		require.NoError(t, d.Enqueue("k", func(ctx context.Context) {
			defer wg.Done()
			mu.Lock()
			counts[i]++
			mu.Unlock()
		}))
	}
	wg.Wait()

	for i := 0; i < 20; i++ {
		assert.Equal(t, 1, counts[i], "task %d", i)
	}
}

func TestDispatcher_EnqueueDuringWorkerRetirement(t *testing.T) {
	d := New(nil)
	defer d.Close(context.Background())

	// Each enqueue lands right as the previous task finishes, when the
	// worker is between executing the last task and retiring its key.
	// Every task must still run exactly once, in order, with no second
	// worker racing the first for the queue head.
	const trials = 2000
	var mu sync.Mutex
	var order []int
	done := make(chan struct{}, 1)

	for i := 0; i < trials; i++ {
		i := i
		require.NoError(t, d.Enqueue("conv-1", func(ctx context.Context) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			done <- struct{}{}
		}))
		<-done
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, trials)
	for i, got := range order {
		assert.Equal(t, i, got)
	}
}

func TestDispatcher_PanicDoesNotKillQueue(t *testing.T) {
	d := New(nil)
	defer d.Close(context.Background())

	done := make(chan struct{})
	require.NoError(t, d.Enqueue("k", func(ctx context.Context) {
		panic("bad task")
	}))
	require.NoError(t, d.Enqueue("k", func(ctx context.Context) {
		close(done)
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queue stalled after panic")
	}
}

func TestDispatcher_EnqueueAfterCloseFails(t *testing.T) {
	d := New(nil)
	require.NoError(t, d.Close(context.Background()))

	err := d.Enqueue("k", func(ctx context.Context) {})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestDispatcher_CloseDrainsQueuedTasks(t *testing.T) {
	d := New(nil)

	var mu sync.Mutex
	ran := 0
	for i := 0; i < 10; i++ {
		require.NoError(t, d.Enqueue("k", func(ctx context.Context) {
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			ran++
			mu.Unlock()
		}))
	}

	require.NoError(t, d.Close(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 10, ran)
}

func TestDispatcher_CloseHonorsDeadline(t *testing.T) {
	d := New(nil)

	require.NoError(t, d.Enqueue("k", func(ctx context.Context) {
		select {
		case <-ctx.Done():
		case <-time.After(10 * time.Second):
		}
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)
}
