// ABOUTME: Tests for SQLite turn persistence
// ABOUTME: Verifies append/read ordering, counting, and hard deletion

package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func testKey() ConversationKey {
	return ConversationKey{ConversationID: "general", ParticipantID: 42}
}

func appendTestTurn(t *testing.T, s *SQLiteStore, key ConversationKey, user, ai string, at time.Time) *Turn {
	t.Helper()
	turn := &Turn{
		ID:          uuid.New().String(),
		Key:         key,
		UserMessage: user,
		AIResponse:  ai,
		Model:       "gpt-3.5-turbo",
		CreatedAt:   at,
	}
	require.NoError(t, s.AppendTurn(context.Background(), turn))
	return turn
}

func TestStore_AppendTurn_RoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	key := testKey()

	turn := &Turn{
		ID:          uuid.New().String(),
		Key:         key,
		UserMessage: "what is the weather?",
		AIResponse:  "I cannot see outside, sadly.",
		Model:       "gpt-4",
		Metadata:    map[string]string{"source": "shared"},
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, store.AppendTurn(ctx, turn))
	assert.NotZero(t, turn.Seq, "store should assign insertion sequence")

	turns, err := store.RecentTurns(ctx, key, 10)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, turn.ID, turns[0].ID)
	assert.Equal(t, "what is the weather?", turns[0].UserMessage)
	assert.Equal(t, "I cannot see outside, sadly.", turns[0].AIResponse)
	assert.Equal(t, "gpt-4", turns[0].Model)
	assert.Equal(t, map[string]string{"source": "shared"}, turns[0].Metadata)
}

func TestStore_RecentTurns_ChronologicalOrder(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	key := testKey()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		appendTestTurn(t, store, key, fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i), base.Add(time.Duration(i)*time.Minute))
	}

	turns, err := store.RecentTurns(ctx, key, 3)
	require.NoError(t, err)
	require.Len(t, turns, 3)

	// Most recent three, oldest first
	assert.Equal(t, "q2", turns[0].UserMessage)
	assert.Equal(t, "q3", turns[1].UserMessage)
	assert.Equal(t, "q4", turns[2].UserMessage)
}

func TestStore_RecentTurns_TiesBrokenBySequence(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	key := testKey()

	at := time.Now().UTC().Truncate(time.Second)
	first := appendTestTurn(t, store, key, "first", "a", at)
	second := appendTestTurn(t, store, key, "second", "b", at)

	turns, err := store.RecentTurns(ctx, key, 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, first.ID, turns[0].ID)
	assert.Equal(t, second.ID, turns[1].ID)
}

func TestStore_RecentTurns_KeyIsolation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	keyA := ConversationKey{ConversationID: "general", ParticipantID: 1}
	keyB := ConversationKey{ConversationID: "general", ParticipantID: 2}
	keyC := ConversationKey{ConversationID: "random", ParticipantID: 1}

	appendTestTurn(t, store, keyA, "from a", "r", time.Now().UTC())
	appendTestTurn(t, store, keyB, "from b", "r", time.Now().UTC())
	appendTestTurn(t, store, keyC, "from c", "r", time.Now().UTC())

	turns, err := store.RecentTurns(ctx, keyA, 10)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "from a", turns[0].UserMessage)
}

func TestStore_CountAndClearTurns(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	key := testKey()
	other := ConversationKey{ConversationID: "other", ParticipantID: 42}

	for i := 0; i < 3; i++ {
		appendTestTurn(t, store, key, "q", "a", time.Now().UTC())
	}
	appendTestTurn(t, store, other, "q", "a", time.Now().UTC())

	count, err := store.CountTurns(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, store.ClearTurns(ctx, key))

	count, err = store.CountTurns(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Other conversation untouched
	count, err = store.CountTurns(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_RoomsWithHistory(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	appendTestTurn(t, store, ConversationKey{ConversationID: "random", ParticipantID: 7}, "q", "a", time.Now().UTC())
	appendTestTurn(t, store, ConversationKey{ConversationID: "general", ParticipantID: 7}, "q", "a", time.Now().UTC())
	appendTestTurn(t, store, ConversationKey{ConversationID: "general", ParticipantID: 7}, "q2", "a2", time.Now().UTC())
	appendTestTurn(t, store, ConversationKey{ConversationID: "hidden", ParticipantID: 8}, "q", "a", time.Now().UTC())

	rooms, err := store.RoomsWithHistory(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"general", "random"}, rooms)
}
