// ABOUTME: Store interface and data types for parley persistence
// ABOUTME: Defines Turn, AIRoom structs and the Store interface for database operations

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrRoomNotFound is returned when an AI room does not exist, is inactive,
// or is not owned by the requesting participant. Callers deliberately get
// the same error in all three cases.
var ErrRoomNotFound = errors.New("ai room not found")

// ErrRoomExists is returned when trying to create a room with a taken ID
var ErrRoomExists = errors.New("ai room already exists")

// ConversationKey identifies one bounded context stream. Shared rooms use
// the room name as ConversationID; AI rooms use the generated room ID.
type ConversationKey struct {
	ConversationID string
	ParticipantID  int64
}

// Turn is one persisted (user message, AI response) exchange. Turns are
// immutable once written and are only ever written as a complete pair.
type Turn struct {
	ID          string
	Key         ConversationKey
	UserMessage string
	AIResponse  string
	Model       string
	Metadata    map[string]string
	CreatedAt   time.Time

	// Seq is the insertion sequence assigned by the store. It breaks
	// ordering ties between turns with equal CreatedAt.
	Seq int64
}

// Settings holds per-conversation generation parameters. Personality is a
// key into the prompt package's personality table.
type Settings struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Personality string
}

// DefaultSettings returns the settings applied to new conversations when
// the caller does not override them.
func DefaultSettings() Settings {
	return Settings{
		Model:       "gpt-3.5-turbo",
		Temperature: 0.7,
		MaxTokens:   150,
		Personality: "helpful_assistant",
	}
}

// AIRoom is a private single-user conversation with the AI. Deactivation is
// a one-way soft state transition; rows are never physically removed.
type AIRoom struct {
	RoomID         string
	OwnerID        int64
	Title          string
	Description    string
	Settings       Settings
	IsActive       bool
	LastActivityAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Store defines the interface for turn and AI room persistence
type Store interface {
	// Turns (append-only per key)
	AppendTurn(ctx context.Context, turn *Turn) error
	RecentTurns(ctx context.Context, key ConversationKey, limit int) ([]*Turn, error)
	CountTurns(ctx context.Context, key ConversationKey) (int, error)
	ClearTurns(ctx context.Context, key ConversationKey) error
	RoomsWithHistory(ctx context.Context, participantID int64) ([]string, error)

	// AI rooms
	CreateRoom(ctx context.Context, room *AIRoom) error
	GetRoom(ctx context.Context, roomID string) (*AIRoom, error)
	GetOwnedRoom(ctx context.Context, roomID string, ownerID int64) (*AIRoom, error)
	UpdateRoom(ctx context.Context, room *AIRoom) error
	DeactivateRoom(ctx context.Context, roomID string, ownerID int64) error
	TouchRoom(ctx context.Context, roomID string, at time.Time) error
	ListRooms(ctx context.Context, ownerID int64) ([]*AIRoom, error)

	// Close releases any resources held by the store
	Close() error
}
