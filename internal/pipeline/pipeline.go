// ABOUTME: The asynchronous AI response pipeline state machine
// ABOUTME: Normalize, assemble, generate, persist, deliver; failures deliver a fallback

package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/2389/parley/internal/llm"
	"github.com/2389/parley/internal/prompt"
	"github.com/2389/parley/internal/store"
	"github.com/2389/parley/internal/trigger"
)

// State is the terminal outcome of a pipeline run. The intermediate steps
// (normalize, assemble, generate) cannot be observed from outside; a run
// only ever ends in one of these two. There are no retries: Failed is
// terminal for that message.
type State string

const (
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Kind distinguishes the two conversation variants the pipeline serves.
type Kind string

const (
	// KindSharedRoom is a multi-user room where the AI was explicitly
	// addressed; the reply is broadcast to every participant.
	KindSharedRoom Kind = "shared_room"
	// KindAIRoom is a private single-user room; every message gets a
	// reply, delivered only to the owner.
	KindAIRoom Kind = "ai_room"
)

// Task is one inbound message the pipeline should answer.
type Task struct {
	Kind     Kind
	Text     string
	Settings store.Settings

	// Shared room fields
	RoomName string
	SenderID int64

	// AI room fields
	OwnerID int64
	RoomID  string
}

// Key returns the conversation key the task's context is read from and its
// turn is written to.
func (t Task) Key() store.ConversationKey {
	if t.Kind == KindAIRoom {
		return store.ConversationKey{ConversationID: t.RoomID, ParticipantID: t.OwnerID}
	}
	return store.ConversationKey{ConversationID: t.RoomName, ParticipantID: t.SenderID}
}

// Result reports how a run ended, for logging and tests.
type Result struct {
	State   State
	Reply   string
	Failure *llm.Failure
}

// ContextAssembler builds the bounded prompt for a conversation.
type ContextAssembler interface {
	Assemble(ctx context.Context, key store.ConversationKey, current string, settings store.Settings) []prompt.Message
}

// TurnStore is what the pipeline needs from persistence.
type TurnStore interface {
	AppendTurn(ctx context.Context, turn *store.Turn) error
	TouchRoom(ctx context.Context, roomID string, at time.Time) error
}

// Publisher is what the pipeline needs from the broadcaster.
type Publisher interface {
	PublishRoomAIMessage(room string, text string)
	PublishAIRoomMessage(ownerID int64, roomID, userMessage, aiResponse string)
}

// Pipeline orchestrates one generation per inbound message. It is safe for
// concurrent use; per-conversation ordering comes from the dispatcher, not
// from the pipeline itself.
type Pipeline struct {
	assembler ContextAssembler
	generator llm.Generator
	store     TurnStore
	publisher Publisher
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a pipeline. timeout bounds each generation call; zero means
// no pipeline-imposed deadline. Pass nil logger for default.
func New(assembler ContextAssembler, generator llm.Generator, turnStore TurnStore, publisher Publisher, timeout time.Duration, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		assembler: assembler,
		generator: generator,
		store:     turnStore,
		publisher: publisher,
		timeout:   timeout,
		logger:    logger.With("component", "pipeline"),
	}
}

// Run drives one task through the state machine. The caller has already
// returned to the user by the time this executes; all outcomes, including
// failures, surface only through the publisher.
func (p *Pipeline) Run(ctx context.Context, task Task) Result {
	key := task.Key()
	logger := p.logger.With(
		"kind", string(task.Kind),
		"conversation_id", key.ConversationID,
		"participant_id", key.ParticipantID,
	)

	// Normalize. Shared rooms strip the trigger tokens; AI rooms always
	// respond, so the text passes through unchanged.
	text := task.Text
	if task.Kind == KindSharedRoom {
		text = trigger.Normalize(text)
	}

	// Assemble context. This step cannot fail: a broken history read
	// degrades to an empty-history prompt inside the assembler.
	messages := p.assembler.Assemble(ctx, key, text, task.Settings)

	// Generate.
	genCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	reply, err := p.generator.Complete(genCtx, messages, task.Settings)
	if err != nil {
		failure := llm.Classify(err)
		logger.Warn("generation failed", "failure_kind", string(failure.Kind), "error", failure)
		p.deliver(task, text, fallbackText(failure.Kind))
		return Result{State: StateFailed, Failure: failure}
	}

	// Persist the complete turn first, then touch room activity, then
	// deliver. A write failure is logged and the reply still delivered:
	// the user gets an answer, it just won't be part of future context.
	turn := &store.Turn{
		ID:          uuid.New().String(),
		Key:         key,
		UserMessage: text,
		AIResponse:  reply,
		Model:       task.Settings.Model,
		CreatedAt:   time.Now().UTC(),
	}
	if err := p.store.AppendTurn(ctx, turn); err != nil {
		logger.Error("turn not saved, reply delivered anyway", "error", err)
	}
	if task.Kind == KindAIRoom {
		if err := p.store.TouchRoom(ctx, task.RoomID, time.Now().UTC()); err != nil {
			logger.Warn("room activity not updated", "room_id", task.RoomID, "error", err)
		}
	}
	p.deliver(task, text, reply)

	logger.Debug("pipeline succeeded", "reply_len", len(reply))
	return Result{State: StateSucceeded, Reply: reply}
}

// deliver routes the reply (or fallback) to the right channel shape.
func (p *Pipeline) deliver(task Task, userText, aiText string) {
	switch task.Kind {
	case KindAIRoom:
		p.publisher.PublishAIRoomMessage(task.OwnerID, task.RoomID, userText, aiText)
	default:
		p.publisher.PublishRoomAIMessage(task.RoomName, aiText)
	}
}

// fallbackText is the fixed user-visible reply when generation fails. The
// user never sees a hang or a silent drop, and nothing is persisted.
func fallbackText(kind llm.FailureKind) string {
	switch kind {
	case llm.KindTimeout:
		return "Sorry, that took longer than expected. Please try again!"
	case llm.KindRateLimited:
		return "I'm getting too many requests right now. Please try again in a moment!"
	default:
		return "Sorry, I'm having trouble responding right now. Please try again!"
	}
}
