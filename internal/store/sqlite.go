// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides turn/room persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS turns (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			turn_id TEXT NOT NULL UNIQUE,
			conversation_id TEXT NOT NULL,
			participant_id INTEGER NOT NULL,
			user_message TEXT NOT NULL,
			ai_response TEXT NOT NULL,
			model TEXT NOT NULL DEFAULT '',
			metadata TEXT,
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_turns_key_created
			ON turns(conversation_id, participant_id, created_at);

		CREATE TABLE IF NOT EXISTS ai_rooms (
			room_id TEXT PRIMARY KEY,
			owner_id INTEGER NOT NULL,
			title TEXT NOT NULL DEFAULT 'AI Chat',
			description TEXT NOT NULL DEFAULT '',
			model TEXT NOT NULL,
			temperature REAL NOT NULL,
			max_tokens INTEGER NOT NULL,
			personality TEXT NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			last_activity_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_ai_rooms_owner_active
			ON ai_rooms(owner_id, is_active);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

// AppendTurn persists a complete (user message, AI response) pair.
// The store assigns the insertion sequence; turn.Seq is updated on return.
func (s *SQLiteStore) AppendTurn(ctx context.Context, turn *Turn) error {
	var metadata *string
	if len(turn.Metadata) > 0 {
		raw, err := json.Marshal(turn.Metadata)
		if err != nil {
			return fmt.Errorf("encoding metadata: %w", err)
		}
		enc := string(raw)
		metadata = &enc
	}

	query := `
		INSERT INTO turns (turn_id, conversation_id, participant_id, user_message, ai_response, model, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := s.db.ExecContext(ctx, query,
		turn.ID,
		turn.Key.ConversationID,
		turn.Key.ParticipantID,
		turn.UserMessage,
		turn.AIResponse,
		turn.Model,
		metadata,
		turn.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting turn: %w", err)
	}

	seq, err := res.LastInsertId()
	if err == nil {
		turn.Seq = seq
	}
	return nil
}

// RecentTurns returns up to limit most recent turns for the key in
// chronological order (oldest first). Ties on created_at are broken by
// insertion sequence.
func (s *SQLiteStore) RecentTurns(ctx context.Context, key ConversationKey, limit int) ([]*Turn, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT seq, turn_id, conversation_id, participant_id, user_message, ai_response, model, metadata, created_at
		FROM turns
		WHERE conversation_id = ? AND participant_id = ?
		ORDER BY created_at DESC, seq DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, key.ConversationID, key.ParticipantID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying turns: %w", err)
	}
	defer rows.Close()

	var turns []*Turn
	for rows.Next() {
		turn, err := scanTurn(rows)
		if err != nil {
			return nil, err
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating turns: %w", err)
	}

	// Query is newest-first for the LIMIT; callers want chronological order
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// CountTurns returns the number of turns stored for the key
func (s *SQLiteStore) CountTurns(ctx context.Context, key ConversationKey) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM turns WHERE conversation_id = ? AND participant_id = ?`,
		key.ConversationID, key.ParticipantID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting turns: %w", err)
	}
	return count, nil
}

// ClearTurns hard-deletes all turns for the key
func (s *SQLiteStore) ClearTurns(ctx context.Context, key ConversationKey) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM turns WHERE conversation_id = ? AND participant_id = ?`,
		key.ConversationID, key.ParticipantID,
	)
	if err != nil {
		return fmt.Errorf("clearing turns: %w", err)
	}
	return nil
}

// RoomsWithHistory returns the distinct conversation IDs the participant has
// turns in, sorted by name
func (s *SQLiteStore) RoomsWithHistory(ctx context.Context, participantID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT conversation_id FROM turns WHERE participant_id = ? ORDER BY conversation_id`,
		participantID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying conversations: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning conversation id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversations: %w", err)
	}
	return ids, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanTurn
type scanner interface {
	Scan(dest ...any) error
}

func scanTurn(row scanner) (*Turn, error) {
	var (
		turn      Turn
		metadata  sql.NullString
		createdAt string
	)
	err := row.Scan(
		&turn.Seq,
		&turn.ID,
		&turn.Key.ConversationID,
		&turn.Key.ParticipantID,
		&turn.UserMessage,
		&turn.AIResponse,
		&turn.Model,
		&metadata,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning turn: %w", err)
	}

	turn.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing turn timestamp: %w", err)
	}

	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &turn.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata: %w", err)
		}
	}
	return &turn, nil
}

// parseTime handles the timestamp formats SQLite may hand back
func parseTime(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// Close closes the underlying database connection
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil && !strings.Contains(err.Error(), "already closed") {
		return err
	}
	return nil
}
