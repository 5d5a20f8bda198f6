package postgres

import (
	"context"
	"database/sql"

	"github.com/custodia-labs/authgate/internal/core/domain"
	"github.com/custodia-labs/authgate/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore implements driven.SessionStore using PostgreSQL.
// Rows are only ever soft-revoked; nothing here deletes them. Reaping of
// long-dead rows is left to external housekeeping.
type SessionStore struct {
	db *DB
}

// NewSessionStore creates a new SessionStore
func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

// Create stores a new session lineage
func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, jti, refresh_hash, fingerprint, ip_address, is_active, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.JTI,
		session.RefreshHash,
		NullString(session.Fingerprint),
		NullString(session.IPAddress),
		session.Active,
		session.CreatedAt,
		session.ExpiresAt,
	)
	return err
}

// GetActiveByDigest retrieves the active session whose current refresh
// token digest matches
func (s *SessionStore) GetActiveByDigest(ctx context.Context, digest string) (*domain.Session, error) {
	query := `
		SELECT id, user_id, jti, refresh_hash, fingerprint, ip_address, is_active, created_at, expires_at
		FROM sessions
		WHERE refresh_hash = $1 AND is_active
	`

	var session domain.Session
	var fingerprint, ip sql.NullString

	err := s.db.QueryRowContext(ctx, query, digest).Scan(
		&session.ID,
		&session.UserID,
		&session.JTI,
		&session.RefreshHash,
		&fingerprint,
		&ip,
		&session.Active,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	session.Fingerprint = fingerprint.String
	session.IPAddress = ip.String
	return &session, nil
}

// Rotate replaces the session's digest, jti, and expiry in a single
// conditional update. The WHERE clause pins the old digest, so of two
// concurrent refreshes presenting the same token exactly one sees a row
// to update: first writer wins, the loser gets false.
func (s *SessionStore) Rotate(ctx context.Context, sessionID string, rot domain.SessionRotation) (bool, error) {
	query := `
		UPDATE sessions
		SET refresh_hash = $1, jti = $2, expires_at = $3
		WHERE id = $4 AND refresh_hash = $5 AND is_active
	`

	result, err := s.db.ExecContext(ctx, query,
		rot.NewRefreshHash,
		rot.NewJTI,
		rot.NewExpiresAt,
		sessionID,
		rot.OldRefreshHash,
	)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

// Revoke marks the session inactive and moves its expiry to now
func (s *SessionStore) Revoke(ctx context.Context, sessionID string) error {
	query := `UPDATE sessions SET is_active = FALSE, expires_at = now() WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query, sessionID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RevokeAllForUser revokes every active session owned by the user
func (s *SessionStore) RevokeAllForUser(ctx context.Context, userID int64) error {
	query := `UPDATE sessions SET is_active = FALSE, expires_at = now() WHERE user_id = $1 AND is_active`
	_, err := s.db.ExecContext(ctx, query, userID)
	return err
}
