// Package store provides persistent storage for parley using SQLite.
//
// # Architecture
//
// The store owns the two durable entities of the system:
//
//   - Turn: one complete (user message, AI response) exchange, append-only
//     per conversation key
//   - AIRoom: a private single-user AI conversation with its own generation
//     settings and a one-way soft-delete flag
//
// Turns are keyed by ConversationKey (conversation ID + participant ID).
// Shared chat rooms and AI rooms share this shape: shared rooms use the
// room name as conversation ID, AI rooms use their generated room ID.
//
// Neither entity references the other; they are linked only through the
// conversation key string.
//
// # Ordering
//
// Turn ordering is created_at, with ties broken by the autoincrement
// insertion sequence. RecentTurns always returns whole turns in
// chronological order, never a partial pair.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// # Error Handling
//
// Common errors:
//
//   - ErrNotFound: Requested entity does not exist
//   - ErrRoomNotFound: Room missing, inactive, or owned by someone else
//     (intentionally indistinguishable)
//   - ErrRoomExists: Room ID already taken
//
// All methods accept context.Context for cancellation support.
//
// # Testing
//
// Use NewSQLiteStore with a t.TempDir() path for integration tests.
package store
