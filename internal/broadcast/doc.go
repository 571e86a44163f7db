// Package broadcast fans delivery events out to channel subscribers.
//
// # Channels
//
// Two channel shapes exist:
//
//   - room.<name>: presence-style, one per shared room, open to anyone in
//     the room. Carries human messages and AI replies (attributed to the
//     synthetic "ai" sender).
//   - ai-room.<owner>.<roomID>: private, one per AI room. Subscription is
//     granted only to the room's owner while the room is active; every
//     other request is denied with a single opaque error so the channel
//     name space leaks nothing.
//
// # Delivery semantics
//
// Publishing is non-blocking: each subscriber has a small buffered channel
// and events are dropped per-subscriber when the buffer is full. This keeps
// a stuck consumer from backing up the response pipeline. Subscriptions are
// tied to a context and removed automatically when it is cancelled.
//
// AI text is additionally rendered from markdown to HTML on publish so
// consumers can show a formatted view without their own renderer.
package broadcast
