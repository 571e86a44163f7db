// ABOUTME: Tests for AI room lifecycle through the service facade
// ABOUTME: Covers defaults merging, validation bounds, partial updates, ownership

package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/parley/internal/store"
)

func TestCreateAIRoomDefaults(t *testing.T) {
	f := newFixture(t)

	room, err := f.svc.CreateAIRoom(context.Background(), 42, "My Room", "scratch space", store.Settings{})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(room.RoomID, "ai_"))
	assert.Equal(t, int64(42), room.OwnerID)
	assert.True(t, room.IsActive)
	assert.Equal(t, store.DefaultSettings(), room.Settings)
	assert.False(t, room.LastActivityAt.IsZero())
}

func TestCreateAIRoomPartialSettings(t *testing.T) {
	f := newFixture(t)

	room, err := f.svc.CreateAIRoom(context.Background(), 42, "Writing", "", store.Settings{
		Personality: "creative_writer",
		MaxTokens:   300,
	})
	require.NoError(t, err)

	assert.Equal(t, "creative_writer", room.Settings.Personality)
	assert.Equal(t, 300, room.Settings.MaxTokens)
	// Unset fields come from defaults.
	assert.Equal(t, "gpt-3.5-turbo", room.Settings.Model)
	assert.InDelta(t, 0.7, room.Settings.Temperature, 0.001)
}

func TestCreateAIRoomValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var ve *ValidationError

	_, err := f.svc.CreateAIRoom(ctx, 42, "", "", store.Settings{})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "title", ve.Field)

	_, err = f.svc.CreateAIRoom(ctx, 42, strings.Repeat("t", maxTitleLen+1), "", store.Settings{})
	require.ErrorAs(t, err, &ve)

	_, err = f.svc.CreateAIRoom(ctx, 42, "Room", strings.Repeat("d", maxDescriptionLen+1), store.Settings{})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "description", ve.Field)

	_, err = f.svc.CreateAIRoom(ctx, 42, "Room", "", store.Settings{Temperature: 3.5})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "temperature", ve.Field)

	_, err = f.svc.CreateAIRoom(ctx, 42, "Room", "", store.Settings{MaxTokens: 100000})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "max_tokens", ve.Field)

	_, err = f.svc.CreateAIRoom(ctx, 42, "Room", "", store.Settings{Personality: "pirate"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "personality", ve.Field)
}

func TestUpdateAIRoomSettingsPartial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	room, err := f.svc.CreateAIRoom(ctx, 42, "Before", "old description", store.Settings{})
	require.NoError(t, err)

	updated, err := f.svc.UpdateAIRoomSettings(ctx, room.RoomID, 42, "After", "", store.Settings{
		Personality: "tutor",
	})
	require.NoError(t, err)

	assert.Equal(t, "After", updated.Title)
	assert.Equal(t, "old description", updated.Description, "empty description leaves stored value")
	assert.Equal(t, "tutor", updated.Settings.Personality)
	assert.Equal(t, "gpt-3.5-turbo", updated.Settings.Model)

	// The update is persisted, not just returned.
	stored, err := f.store.GetRoom(ctx, room.RoomID)
	require.NoError(t, err)
	assert.Equal(t, "After", stored.Title)
	assert.Equal(t, "tutor", stored.Settings.Personality)
}

func TestUpdateAIRoomSettingsOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	room, err := f.svc.CreateAIRoom(ctx, 42, "Mine", "", store.Settings{})
	require.NoError(t, err)

	_, err = f.svc.UpdateAIRoomSettings(ctx, room.RoomID, 99, "Stolen", "", store.Settings{})
	assert.ErrorIs(t, err, store.ErrRoomNotFound)
}

func TestDeactivateAIRoomIsSoft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	room, err := f.svc.CreateAIRoom(ctx, 42, "Doomed", "", store.Settings{})
	require.NoError(t, err)

	key := store.ConversationKey{ConversationID: room.RoomID, ParticipantID: 42}
	require.NoError(t, f.store.AppendTurn(ctx, &store.Turn{
		ID: "t1", Key: key, UserMessage: "q", AIResponse: "a",
	}))

	require.NoError(t, f.svc.DeactivateAIRoom(ctx, room.RoomID, 42))

	rooms, err := f.svc.ListAIRooms(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, rooms)

	// History survives deactivation.
	turns, err := f.svc.GetHistory(ctx, key, 0)
	require.NoError(t, err)
	assert.Len(t, turns, 1)
}

func TestListAIRoomsOnlyOwn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateAIRoom(ctx, 42, "A", "", store.Settings{})
	require.NoError(t, err)
	_, err = f.svc.CreateAIRoom(ctx, 99, "B", "", store.Settings{})
	require.NoError(t, err)

	rooms, err := f.svc.ListAIRooms(ctx, 42)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "A", rooms[0].Title)
}
