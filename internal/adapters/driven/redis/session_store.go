package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/authgate/internal/core/domain"
	"github.com/custodia-labs/authgate/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SessionStore = (*SessionStore)(nil)

const (
	// Key prefixes for Redis
	sessionPrefix       = "session:"
	sessionDigestPrefix = "session:digest:"
	sessionUserPrefix   = "session:user:"

	// revokedRetention keeps revoked session blobs around for a while so
	// the lineage stays observable; Redis TTL reaps them afterwards.
	revokedRetention = 24 * time.Hour
)

// SessionStore implements driven.SessionStore using Redis.
// The digest index key is the rotation token: claiming it with GETDEL is
// atomic, which gives the same first-writer-wins guarantee the SQL store
// gets from its conditional UPDATE.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a new Redis-backed SessionStore
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Create stores a new session lineage
func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, sessionPrefix+session.ID, data, ttl)
	pipe.Set(ctx, sessionDigestPrefix+session.RefreshHash, session.ID, ttl)
	pipe.SAdd(ctx, userKey(session.UserID), session.ID)
	pipe.Expire(ctx, userKey(session.UserID), ttl+revokedRetention)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetActiveByDigest retrieves the active session whose current refresh
// token digest matches
func (s *SessionStore) GetActiveByDigest(ctx context.Context, digest string) (*domain.Session, error) {
	id, err := s.client.Get(ctx, sessionDigestPrefix+digest).Result()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve digest: %w", err)
	}

	session, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.Active || session.RefreshHash != digest {
		return nil, domain.ErrNotFound
	}
	return session, nil
}

// Rotate replaces the session's digest, jti, and expiry. The old digest
// index is claimed with GETDEL first; of two concurrent refreshes exactly
// one claim succeeds.
func (s *SessionStore) Rotate(ctx context.Context, sessionID string, rot domain.SessionRotation) (bool, error) {
	id, err := s.client.GetDel(ctx, sessionDigestPrefix+rot.OldRefreshHash).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to claim digest: %w", err)
	}
	if id != sessionID {
		return false, nil
	}

	session, err := s.get(ctx, id)
	if err != nil || !session.Active || session.RefreshHash != rot.OldRefreshHash {
		return false, err
	}

	session.RefreshHash = rot.NewRefreshHash
	session.JTI = rot.NewJTI
	session.ExpiresAt = rot.NewExpiresAt

	data, err := json.Marshal(session)
	if err != nil {
		return false, fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(rot.NewExpiresAt)
	pipe := s.client.Pipeline()
	pipe.Set(ctx, sessionPrefix+session.ID, data, ttl)
	pipe.Set(ctx, sessionDigestPrefix+rot.NewRefreshHash, session.ID, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to rotate session: %w", err)
	}
	return true, nil
}

// Revoke marks the session inactive and moves its expiry to now. The blob
// survives for the retention window; only the digest index goes away.
func (s *SessionStore) Revoke(ctx context.Context, sessionID string) error {
	session, err := s.get(ctx, sessionID)
	if err != nil {
		return err
	}

	digest := session.RefreshHash
	session.Active = false
	session.ExpiresAt = time.Now()

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, sessionPrefix+session.ID, data, revokedRetention)
	pipe.Del(ctx, sessionDigestPrefix+digest)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// RevokeAllForUser revokes every active session owned by the user
func (s *SessionStore) RevokeAllForUser(ctx context.Context, userID int64) error {
	ids, err := s.client.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("failed to list user sessions: %w", err)
	}

	for _, id := range ids {
		session, err := s.get(ctx, id)
		if err == domain.ErrNotFound {
			continue // reaped by TTL
		}
		if err != nil {
			return err
		}
		if !session.Active {
			continue
		}
		if err := s.Revoke(ctx, id); err != nil && err != domain.ErrNotFound {
			return err
		}
	}
	return nil
}

// get loads a session blob by ID
func (s *SessionStore) get(ctx context.Context, id string) (*domain.Session, error) {
	data, err := s.client.Get(ctx, sessionPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

func userKey(userID int64) string {
	return fmt.Sprintf("%s%d", sessionUserPrefix, userID)
}
