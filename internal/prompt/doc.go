// Package prompt turns conversation state into generation prompts.
//
// It owns two things:
//
//   - Personality: the closed set of system-prompt styles a conversation
//     can be configured with. The enum is exhaustive with an explicit
//     fallback, so an unknown personality in stored settings can never
//     produce an undefined prompt. Display metadata for each personality
//     (name, description, icon) is embedded as TOML and exposed via
//     Catalog for room-creation surfaces.
//
//   - Assembler: builds the bounded message list for a generation request:
//     one system entry, up to N most recent whole turns as (user,
//     assistant) pairs in chronological order, and the current user
//     message. Context growth is bounded strictly by whole turns; the
//     assembler never emits half a pair. History read failures degrade to
//     an empty-history prompt instead of failing the request.
package prompt
