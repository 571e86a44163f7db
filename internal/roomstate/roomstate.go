// ABOUTME: Keyed AI-enabled flags for shared chat rooms
// ABOUTME: Injected store, never a singleton; in-memory backend lives here

package roomstate

import (
	"context"
	"sync"
)

// State tracks which shared rooms have the AI participant enabled. Flags
// are set and cleared by an explicit toggle and have no TTL. Toggles on
// different rooms are independent; a single room's read-modify-write is
// atomic within a backend.
type State interface {
	SetEnabled(ctx context.Context, room string, enabled bool) error
	Enabled(ctx context.Context, room string) (bool, error)
}

// Memory is a process-local State backed by a mutex-guarded set. The zero
// value is not usable; use NewMemory.
type Memory struct {
	mu      sync.RWMutex
	enabled map[string]struct{}
}

// NewMemory creates an empty in-memory flag store.
func NewMemory() *Memory {
	return &Memory{enabled: make(map[string]struct{})}
}

// SetEnabled turns the AI on or off for the room.
func (m *Memory) SetEnabled(_ context.Context, room string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if enabled {
		m.enabled[room] = struct{}{}
	} else {
		delete(m.enabled, room)
	}
	return nil
}

// Enabled reports whether the AI is enabled for the room.
func (m *Memory) Enabled(_ context.Context, room string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.enabled[room]
	return ok, nil
}
