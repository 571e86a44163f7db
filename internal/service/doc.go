// ABOUTME: Package doc for the service facade
// ABOUTME: One entry point for submissions, room lifecycle, history, and subscriptions

// Package service ties the pieces together for callers: it validates
// inbound input, delivers user messages immediately through the
// broadcaster, and queues AI work on the per-conversation dispatcher.
// Callers never wait for a generation; replies arrive as events.
package service
