// ABOUTME: Package doc for the response pipeline
// ABOUTME: Explains the state machine and its failure contract

// Package pipeline runs one AI generation per inbound message: normalize
// the text, assemble bounded context, call the generator, persist the
// completed turn, and deliver the reply through the broadcaster.
//
// Every outcome is delivered. Success delivers the generated reply; any
// failure delivers a fixed fallback string instead, and nothing is written
// to the store. Per-conversation ordering is the dispatcher's job; the
// pipeline itself is stateless between runs.
package pipeline
