// ABOUTME: Package doc for shared-room AI flags
// ABOUTME: Per-room enable/disable state with memory and Redis backends

// Package roomstate tracks which shared rooms have the AI enabled. The
// flag gates trigger handling only; it never affects private AI rooms.
// The in-memory backend suits a single process, the Redis backend a
// multi-process deployment.
package roomstate
