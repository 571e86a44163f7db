// ABOUTME: AI room persistence methods for SQLiteStore
// ABOUTME: Rooms own their generation settings; deactivation is a one-way soft delete

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CreateRoom inserts a new AI room. Returns ErrRoomExists if the room ID is
// already taken.
func (s *SQLiteStore) CreateRoom(ctx context.Context, room *AIRoom) error {
	query := `
		INSERT INTO ai_rooms (room_id, owner_id, title, description, model, temperature, max_tokens, personality, is_active, last_activity_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		room.RoomID,
		room.OwnerID,
		room.Title,
		room.Description,
		room.Settings.Model,
		room.Settings.Temperature,
		room.Settings.MaxTokens,
		room.Settings.Personality,
		boolToInt(room.IsActive),
		room.LastActivityAt.UTC().Format(time.RFC3339Nano),
		room.CreatedAt.UTC().Format(time.RFC3339Nano),
		room.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return ErrRoomExists
		}
		return fmt.Errorf("inserting room: %w", err)
	}
	return nil
}

// GetRoom returns a room by ID regardless of owner or activation state
func (s *SQLiteStore) GetRoom(ctx context.Context, roomID string) (*AIRoom, error) {
	row := s.db.QueryRowContext(ctx, selectRoom+` WHERE room_id = ?`, roomID)
	return scanRoom(row)
}

// GetOwnedRoom returns the room only if it is owned by ownerID and still
// active. Missing, inactive and foreign rooms are indistinguishable to the
// caller: all return ErrRoomNotFound.
func (s *SQLiteStore) GetOwnedRoom(ctx context.Context, roomID string, ownerID int64) (*AIRoom, error) {
	row := s.db.QueryRowContext(ctx,
		selectRoom+` WHERE room_id = ? AND owner_id = ? AND is_active = 1`,
		roomID, ownerID,
	)
	room, err := scanRoom(row)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	return room, err
}

// UpdateRoom updates title, description and settings for a room
func (s *SQLiteStore) UpdateRoom(ctx context.Context, room *AIRoom) error {
	query := `
		UPDATE ai_rooms
		SET title = ?, description = ?, model = ?, temperature = ?, max_tokens = ?, personality = ?, updated_at = ?
		WHERE room_id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		room.Title,
		room.Description,
		room.Settings.Model,
		room.Settings.Temperature,
		room.Settings.MaxTokens,
		room.Settings.Personality,
		time.Now().UTC().Format(time.RFC3339Nano),
		room.RoomID,
	)
	if err != nil {
		return fmt.Errorf("updating room: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// DeactivateRoom soft-deletes a room. The transition is one-way; there is
// no reactivation path.
func (s *SQLiteStore) DeactivateRoom(ctx context.Context, roomID string, ownerID int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE ai_rooms SET is_active = 0, updated_at = ? WHERE room_id = ? AND owner_id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), roomID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("deactivating room: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// TouchRoom updates the room's last activity timestamp
func (s *SQLiteStore) TouchRoom(ctx context.Context, roomID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE ai_rooms SET last_activity_at = ? WHERE room_id = ?`,
		at.UTC().Format(time.RFC3339Nano), roomID,
	)
	if err != nil {
		return fmt.Errorf("touching room: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// ListRooms returns the owner's active rooms, most recently active first
func (s *SQLiteStore) ListRooms(ctx context.Context, ownerID int64) ([]*AIRoom, error) {
	rows, err := s.db.QueryContext(ctx,
		selectRoom+` WHERE owner_id = ? AND is_active = 1 ORDER BY last_activity_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*AIRoom
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rooms: %w", err)
	}
	return rooms, nil
}

const selectRoom = `
	SELECT room_id, owner_id, title, description, model, temperature, max_tokens, personality, is_active, last_activity_at, created_at, updated_at
	FROM ai_rooms
`

func scanRoom(row scanner) (*AIRoom, error) {
	var (
		room           AIRoom
		isActive       int
		lastActivityAt string
		createdAt      string
		updatedAt      string
	)
	err := row.Scan(
		&room.RoomID,
		&room.OwnerID,
		&room.Title,
		&room.Description,
		&room.Settings.Model,
		&room.Settings.Temperature,
		&room.Settings.MaxTokens,
		&room.Settings.Personality,
		&isActive,
		&lastActivityAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning room: %w", err)
	}

	room.IsActive = isActive != 0
	if room.LastActivityAt, err = parseTime(lastActivityAt); err != nil {
		return nil, fmt.Errorf("parsing room activity timestamp: %w", err)
	}
	if room.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing room created timestamp: %w", err)
	}
	if room.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing room updated timestamp: %w", err)
	}
	return &room, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
