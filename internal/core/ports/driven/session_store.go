package driven

import (
	"context"

	"github.com/custodia-labs/authgate/internal/core/domain"
)

// SessionStore handles refresh session persistence.
// Sessions are only ever soft-revoked; no method removes rows.
type SessionStore interface {
	// Create stores a new session lineage
	Create(ctx context.Context, session *domain.Session) error

	// GetActiveByDigest retrieves the active session whose current refresh
	// token digest matches. A rotated-away digest matches nothing, which is
	// how replay of a stale refresh token is detected.
	GetActiveByDigest(ctx context.Context, digest string) (*domain.Session, error)

	// Rotate atomically replaces the session's digest, jti, and expiry,
	// conditional on the old digest still being current. Returns false when
	// another rotation won the race or the session is no longer active.
	Rotate(ctx context.Context, sessionID string, rot domain.SessionRotation) (bool, error)

	// Revoke marks the session inactive and moves its expiry to now
	Revoke(ctx context.Context, sessionID string) error

	// RevokeAllForUser revokes every active session owned by the user
	RevokeAllForUser(ctx context.Context, userID int64) error
}
