// ABOUTME: Delivery event shapes and channel naming for chat subscribers
// ABOUTME: Payloads are JSON-tagged; consumers deserialize them as-is

package broadcast

import (
	"bytes"
	"fmt"
	"time"

	"github.com/yuin/goldmark"
)

// Event names carried on the wire.
const (
	EventRoomMessage   = "room.message"
	EventAIRoomMessage = "ai.message"
)

// Sender identifies who a room message is from. The AI participant is
// synthetic: it has no account behind it.
type Sender struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	IsAI bool   `json:"is_ai"`
}

// AISender is the synthetic identity AI replies are attributed to in
// shared rooms.
func AISender() Sender {
	return Sender{ID: "ai", Name: "AI Assistant", IsAI: true}
}

// RoomMessage is the payload delivered on shared room channels, for both
// human messages and AI replies.
type RoomMessage struct {
	Room        string `json:"room"`
	Sender      Sender `json:"user"`
	Text        string `json:"message"`
	HTML        string `json:"html,omitempty"`
	IsAIMessage bool   `json:"is_ai_message"`
}

// AIRoomMessage is the payload delivered on private AI room channels. It
// carries the full exchange so the owner's UI can append both sides at once.
type AIRoomMessage struct {
	OwnerID     int64     `json:"owner_id"`
	RoomID      string    `json:"room_id"`
	UserMessage string    `json:"user_message"`
	AIResponse  string    `json:"ai_response"`
	HTML        string    `json:"html,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Event is one delivery to channel subscribers.
type Event struct {
	Channel string `json:"channel"`
	Name    string `json:"name"`
	Payload any    `json:"payload"`
}

// RoomChannel names the presence-style channel for a shared room.
func RoomChannel(room string) string {
	return "room." + room
}

// AIRoomChannel names the private channel for an AI room. Scoping the name
// by owner keeps one user's AI conversation out of everyone else's reach
// even before authorization runs.
func AIRoomChannel(ownerID int64, roomID string) string {
	return fmt.Sprintf("ai-room.%d.%s", ownerID, roomID)
}

// renderHTML converts AI markdown output to HTML for consumers that want a
// rendered view. Render failures degrade to an empty string; the raw text
// field is always present.
func renderHTML(text string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(text), &buf); err != nil {
		return ""
	}
	return buf.String()
}
