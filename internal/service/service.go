// ABOUTME: Service facade for all inbound chat operations
// ABOUTME: Validates, broadcasts user messages, and enqueues AI work; never blocks on generation

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/2389/parley/internal/broadcast"
	"github.com/2389/parley/internal/dispatch"
	"github.com/2389/parley/internal/pipeline"
	"github.com/2389/parley/internal/roomstate"
	"github.com/2389/parley/internal/store"
	"github.com/2389/parley/internal/trigger"
)

// historyDefaultLimit and historyMaxLimit bound GetHistory reads.
const (
	historyDefaultLimit = 10
	historyMaxLimit     = 50
)

// Runner executes one pipeline task to completion.
type Runner interface {
	Run(ctx context.Context, task pipeline.Task) pipeline.Result
}

// Enqueuer hands tasks to the per-conversation dispatcher.
type Enqueuer interface {
	Enqueue(key string, task dispatch.Task) error
}

// Events is what the service needs from the broadcaster.
type Events interface {
	PublishRoomMessage(room string, sender broadcast.Sender, text string)
	SubscribeRoom(ctx context.Context, room string) (<-chan broadcast.Event, string)
	SubscribeAIRoom(ctx context.Context, subscriberID, ownerID int64, roomID string) (<-chan broadcast.Event, string, error)
}

// TokenVerifier maps a bearer token to a participant ID.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// Service is the single entry point for chat traffic. Submitting a message
// returns as soon as the user's message is delivered and any AI work is
// queued; the AI's reply arrives later through the broadcaster.
type Service struct {
	store    store.Store
	events   Events
	queue    Enqueuer
	pipeline Runner
	flags    roomstate.State
	verifier TokenVerifier
	logger   *slog.Logger
}

// New creates the service. Pass nil logger for default.
func New(st store.Store, events Events, queue Enqueuer, runner Runner, flags roomstate.State, verifier TokenVerifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    st,
		events:   events,
		queue:    queue,
		pipeline: runner,
		flags:    flags,
		verifier: verifier,
		logger:   logger.With("component", "service"),
	}
}

// SubmitRoomMessage handles a human message in a shared room: the message
// is broadcast to the room immediately, and if the room has AI enabled and
// the text addresses the AI, a response task is queued. The AI reply never
// blocks this call.
func (s *Service) SubmitRoomMessage(ctx context.Context, userID int64, userName, room, text string) error {
	if err := validateRoomName(room); err != nil {
		return err
	}
	if err := validateText("message", text, maxSharedTextLen); err != nil {
		return err
	}

	sender := broadcast.Sender{ID: strconv.FormatInt(userID, 10), Name: userName}
	s.events.PublishRoomMessage(room, sender, text)

	enabled, err := s.flags.Enabled(ctx, room)
	if err != nil {
		// The user's message is already delivered; a flag backend outage
		// only suppresses the AI, it never fails the send.
		s.logger.Warn("ai flag check failed, skipping response", "room", room, "error", err)
		return nil
	}
	if !enabled || !trigger.ShouldRespond(text) {
		return nil
	}

	task := pipeline.Task{
		Kind:     pipeline.KindSharedRoom,
		RoomName: room,
		SenderID: userID,
		Text:     text,
		Settings: store.DefaultSettings(),
	}
	return s.enqueue(task)
}

// SubmitAIRoomMessage handles a message in a private AI room. Every valid
// message gets a response; no trigger is needed. Missing, inactive, and
// foreign rooms are indistinguishable to the caller.
func (s *Service) SubmitAIRoomMessage(ctx context.Context, userID int64, roomID, text string) error {
	if err := validateText("message", text, maxAIRoomTextLen); err != nil {
		return err
	}

	room, err := s.store.GetOwnedRoom(ctx, roomID, userID)
	if err != nil {
		return err
	}

	if err := s.store.TouchRoom(ctx, roomID, time.Now().UTC()); err != nil {
		s.logger.Warn("room activity not updated", "room_id", roomID, "error", err)
	}

	task := pipeline.Task{
		Kind:     pipeline.KindAIRoom,
		OwnerID:  userID,
		RoomID:   roomID,
		Text:     text,
		Settings: room.Settings,
	}
	return s.enqueue(task)
}

// enqueue queues the task under its conversation key so replies within one
// conversation stay in submission order.
func (s *Service) enqueue(task pipeline.Task) error {
	key := task.Key()
	queueKey := fmt.Sprintf("%s/%d", key.ConversationID, key.ParticipantID)
	return s.queue.Enqueue(queueKey, func(ctx context.Context) {
		s.pipeline.Run(ctx, task)
	})
}

// GetHistory returns up to limit recent turns for the conversation, oldest
// first. limit <= 0 selects the default; large limits are capped.
func (s *Service) GetHistory(ctx context.Context, key store.ConversationKey, limit int) ([]*store.Turn, error) {
	if limit <= 0 {
		limit = historyDefaultLimit
	}
	if limit > historyMaxLimit {
		limit = historyMaxLimit
	}
	return s.store.RecentTurns(ctx, key, limit)
}

// ClearHistory removes every turn for the conversation.
func (s *Service) ClearHistory(ctx context.Context, key store.ConversationKey) error {
	return s.store.ClearTurns(ctx, key)
}

// RoomsWithHistory lists the conversation IDs the participant has turns in.
func (s *Service) RoomsWithHistory(ctx context.Context, participantID int64) ([]string, error) {
	return s.store.RoomsWithHistory(ctx, participantID)
}

// SetRoomAIEnabled toggles whether the AI responds to triggers in a shared
// room.
func (s *Service) SetRoomAIEnabled(ctx context.Context, room string, enabled bool) error {
	if err := validateRoomName(room); err != nil {
		return err
	}
	return s.flags.SetEnabled(ctx, room, enabled)
}

// GetRoomAIEnabled reports whether the AI responds in a shared room.
func (s *Service) GetRoomAIEnabled(ctx context.Context, room string) (bool, error) {
	return s.flags.Enabled(ctx, room)
}

// SubscribeRoom joins the open delivery channel for a shared room.
func (s *Service) SubscribeRoom(ctx context.Context, room string) (<-chan broadcast.Event, string, error) {
	if err := validateRoomName(room); err != nil {
		return nil, "", err
	}
	ch, subID := s.events.SubscribeRoom(ctx, room)
	return ch, subID, nil
}

// SubscribeAIRoom joins a private AI room channel. The token must verify
// and identify the room's owner; every failure mode yields the same
// ErrUnauthorized.
func (s *Service) SubscribeAIRoom(ctx context.Context, token string, ownerID int64, roomID string) (<-chan broadcast.Event, string, error) {
	subscriberID, err := s.verifier.Verify(token)
	if err != nil {
		return nil, "", broadcast.ErrUnauthorized
	}
	return s.events.SubscribeAIRoom(ctx, subscriberID, ownerID, roomID)
}
