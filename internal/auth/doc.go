// ABOUTME: Package doc for subscriber authentication
// ABOUTME: HS256 JWT verification mapping tokens to participant IDs

// Package auth verifies subscriber identity. Delivery channels for private
// AI rooms are scoped to the room owner, so every subscribe call presents a
// token; the verified participant ID is what the broadcaster checks
// ownership against.
package auth
