// Package llm adapts the external completion backend to the pipeline.
//
// The Generator interface is deliberately small: assembled messages and
// per-conversation settings in, text out, or a typed *Failure. The adapter
// enforces the conversation's model, temperature and token limits exactly
// as configured and performs no retries; whether and when to retry is the
// pipeline's decision (today: never).
//
// Failure kinds cover the cases the pipeline distinguishes in fallback
// wording: timeout, rate limit, an empty or unusable response, and
// everything else.
package llm
