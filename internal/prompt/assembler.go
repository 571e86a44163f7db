// ABOUTME: Builds the bounded, ordered message list sent to the generator
// ABOUTME: System prompt + N whole history turns + current message, never a partial pair

package prompt

import (
	"context"
	"log/slog"

	"github.com/2389/parley/internal/store"
)

// Role identifies the author of a prompt message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in an assembled prompt.
type Message struct {
	Role    Role
	Content string
}

// HistoryReader is what the assembler needs from storage.
type HistoryReader interface {
	RecentTurns(ctx context.Context, key store.ConversationKey, limit int) ([]*store.Turn, error)
}

// DefaultWindow is the number of history turns included when the caller
// does not configure one.
const DefaultWindow = 5

// Assembler builds generation prompts from conversation history.
type Assembler struct {
	history HistoryReader
	window  int
	logger  *slog.Logger
}

// NewAssembler creates an assembler reading up to window turns of history
// per prompt. window <= 0 selects DefaultWindow. Pass nil logger for default.
func NewAssembler(history HistoryReader, window int, logger *slog.Logger) *Assembler {
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		history: history,
		window:  window,
		logger:  logger.With("component", "assembler"),
	}
}

// Window returns the configured history window in turns.
func (a *Assembler) Window() int {
	return a.window
}

// Assemble returns the ordered prompt for the conversation: one system
// message from the personality, each history turn as a (user, assistant)
// pair in chronological order, then the current message. The result never
// exceeds 2*window+2 entries.
//
// A history read failure degrades to an empty-history prompt rather than
// failing: the user still gets an answer, just without memory.
func (a *Assembler) Assemble(ctx context.Context, key store.ConversationKey, current string, settings store.Settings) []Message {
	messages := make([]Message, 0, 2*a.window+2)
	messages = append(messages, Message{
		Role:    RoleSystem,
		Content: Personality(settings.Personality).SystemPrompt(),
	})

	turns, err := a.history.RecentTurns(ctx, key, a.window)
	if err != nil {
		a.logger.Warn("history read failed, continuing without context",
			"conversation_id", key.ConversationID,
			"participant_id", key.ParticipantID,
			"error", err)
		turns = nil
	}
	for _, turn := range turns {
		messages = append(messages,
			Message{Role: RoleUser, Content: turn.UserMessage},
			Message{Role: RoleAssistant, Content: turn.AIResponse},
		)
	}

	return append(messages, Message{Role: RoleUser, Content: current})
}
