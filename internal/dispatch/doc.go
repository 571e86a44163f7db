// Package dispatch schedules pipeline work off the message ingestion path.
//
// The contract is deliberately narrow: Enqueue(key, task) returns
// immediately and the task runs exactly once on a background goroutine.
// Tasks that share a key run strictly in enqueue order, which is what
// prevents two generations for the same conversation from racing a stale
// history read past each other. Tasks with different keys may interleave
// arbitrarily.
//
// There is no persistence and no redelivery: a task that panics is logged
// and dropped, and once Close has been called Enqueue fails with ErrClosed
// so callers can surface the refusal instead of losing messages silently.
package dispatch
