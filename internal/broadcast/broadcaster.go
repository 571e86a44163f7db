// ABOUTME: In-memory fan-out of chat events to channel subscribers
// ABOUTME: AI room channels gate subscription behind an ownership check

package broadcast

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/2389/parley/internal/store"
)

// subscriberBufferSize is the channel buffer for each subscriber.
const subscriberBufferSize = 64

// ErrUnauthorized is returned when a subscriber may not join an AI room
// channel. It is deliberately the only error the check can produce, so a
// denied caller learns nothing about whether the room exists.
var ErrUnauthorized = errors.New("not authorized for this channel")

// RoomChecker is what the broadcaster needs from storage to authorize AI
// room subscriptions.
type RoomChecker interface {
	GetOwnedRoom(ctx context.Context, roomID string, ownerID int64) (*store.AIRoom, error)
}

// Broadcaster provides in-memory pub/sub for delivery events. Shared room
// channels are presence-style and open; AI room channels require the
// subscriber to be the room's owner with the room still active.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]chan Event // channel -> subID -> ch
	rooms       RoomChecker
	logger      *slog.Logger
}

// New creates a broadcaster. Pass nil logger for default.
func New(rooms RoomChecker, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		subscribers: make(map[string]map[string]chan Event),
		rooms:       rooms,
		logger:      logger.With("component", "broadcaster"),
	}
}

// SubscribeRoom registers a subscriber on a shared room channel. Returns
// the event channel and a subscription ID. The subscription is cleaned up
// when ctx is cancelled.
func (b *Broadcaster) SubscribeRoom(ctx context.Context, room string) (<-chan Event, string) {
	return b.subscribe(ctx, RoomChannel(room))
}

// SubscribeAIRoom registers a subscriber on a private AI room channel. The
// subscriber is authorized iff they are the owner named in the channel and
// an active AIRoom with that ID and owner exists. Everyone else gets
// ErrUnauthorized and nothing more.
func (b *Broadcaster) SubscribeAIRoom(ctx context.Context, subscriberID, ownerID int64, roomID string) (<-chan Event, string, error) {
	if subscriberID != ownerID {
		return nil, "", ErrUnauthorized
	}
	if _, err := b.rooms.GetOwnedRoom(ctx, roomID, ownerID); err != nil {
		return nil, "", ErrUnauthorized
	}

	ch, subID := b.subscribe(ctx, AIRoomChannel(ownerID, roomID))
	return ch, subID, nil
}

func (b *Broadcaster) subscribe(ctx context.Context, channel string) (<-chan Event, string) {
	subID := uuid.New().String()
	ch := make(chan Event, subscriberBufferSize)

	b.mu.Lock()
	if _, ok := b.subscribers[channel]; !ok {
		b.subscribers[channel] = make(map[string]chan Event)
	}
	b.subscribers[channel][subID] = ch
	b.mu.Unlock()

	b.logger.Debug("subscriber added", "channel", channel, "sub_id", subID)

	// Auto-cleanup on context cancellation
	go func() {
		<-ctx.Done()
		b.Unsubscribe(channel, subID)
	}()

	return ch, subID
}

// PublishRoomMessage delivers a human participant's message to everyone in
// the shared room.
func (b *Broadcaster) PublishRoomMessage(room string, sender Sender, text string) {
	b.publish(Event{
		Channel: RoomChannel(room),
		Name:    EventRoomMessage,
		Payload: RoomMessage{Room: room, Sender: sender, Text: text},
	})
}

// PublishRoomAIMessage delivers an AI reply to everyone in the shared
// room, attributed to the synthetic AI participant.
func (b *Broadcaster) PublishRoomAIMessage(room string, text string) {
	b.publish(Event{
		Channel: RoomChannel(room),
		Name:    EventRoomMessage,
		Payload: RoomMessage{
			Room:        room,
			Sender:      AISender(),
			Text:        text,
			HTML:        renderHTML(text),
			IsAIMessage: true,
		},
	})
}

// PublishAIRoomMessage delivers a completed (or failed-with-fallback)
// exchange to the AI room's private channel.
func (b *Broadcaster) PublishAIRoomMessage(ownerID int64, roomID, userMessage, aiResponse string) {
	b.publish(Event{
		Channel: AIRoomChannel(ownerID, roomID),
		Name:    EventAIRoomMessage,
		Payload: AIRoomMessage{
			OwnerID:     ownerID,
			RoomID:      roomID,
			UserMessage: userMessage,
			AIResponse:  aiResponse,
			HTML:        renderHTML(aiResponse),
			Timestamp:   time.Now().UTC(),
		},
	})
}

// publish sends an event to all subscribers of its channel. Non-blocking:
// events are dropped for subscribers whose buffers are full. The read lock
// is held across the sends; Unsubscribe closes channels under the write
// lock, so no send can race a close.
func (b *Broadcaster) publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers[event.Channel] {
		select {
		case ch <- event:
		default:
			b.logger.Debug("dropped event for slow subscriber",
				"channel", event.Channel,
				"event", event.Name)
		}
	}
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster) Unsubscribe(channel, subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.subscribers[channel]
	if !ok {
		return
	}
	ch, exists := subs[subID]
	if !exists {
		return
	}

	delete(subs, subID)
	close(ch)

	if len(subs) == 0 {
		delete(b.subscribers, channel)
	}

	b.logger.Debug("subscriber removed", "channel", channel, "sub_id", subID)
}

// Close shuts down the broadcaster and closes all subscriber channels.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for channel, subs := range b.subscribers {
		for subID, ch := range subs {
			close(ch)
			delete(subs, subID)
		}
		delete(b.subscribers, channel)
	}
}
