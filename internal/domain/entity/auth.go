// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is one authorized device session. The raw token lives only on
// the client; the server keeps a SHA-256 hash and compares on lookup. A user
// may hold several at once, bounded by the configured session limit.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string    // SHA-256 hex of the raw refresh token.
	ExpiresAt time.Time // Past this instant the session can no longer mint access tokens.
	CreatedAt time.Time
}
