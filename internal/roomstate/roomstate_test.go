// ABOUTME: Tests for the in-memory room AI flag store
// ABOUTME: Covers toggling, isolation between rooms, and concurrent access

package roomstate

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_ToggleLifecycle(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	enabled, err := s.Enabled(ctx, "general")
	require.NoError(t, err)
	assert.False(t, enabled, "rooms start with AI off")

	require.NoError(t, s.SetEnabled(ctx, "general", true))
	enabled, err = s.Enabled(ctx, "general")
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, s.SetEnabled(ctx, "general", false))
	enabled, err = s.Enabled(ctx, "general")
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestMemory_RoomsAreIndependent(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.SetEnabled(ctx, "general", true))

	enabled, err := s.Enabled(ctx, "random")
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestMemory_ConcurrentToggles(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		room := fmt.Sprintf("room-%d", i%5)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.SetEnabled(ctx, room, true)
			_, _ = s.Enabled(ctx, room)
			_ = s.SetEnabled(ctx, room, false)
		}()
	}
	wg.Wait()
}
