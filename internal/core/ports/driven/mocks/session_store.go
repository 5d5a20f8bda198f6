package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/authgate/internal/core/domain"
	"github.com/custodia-labs/authgate/internal/core/ports/driven"
)

// Ensure MockSessionStore implements SessionStore
var _ driven.SessionStore = (*MockSessionStore)(nil)

// MockSessionStore is an in-memory SessionStore for testing.
// It mirrors the soft-revoke semantics of the real stores: sessions are
// never removed, only flagged inactive.
type MockSessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session

	// CreateErr forces Create to fail when set
	CreateErr error
}

// NewMockSessionStore creates a new MockSessionStore
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{
		sessions: make(map[string]*domain.Session),
	}
}

func (m *MockSessionStore) Create(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	cp := *session
	m.sessions[session.ID] = &cp
	return nil
}

func (m *MockSessionStore) GetActiveByDigest(ctx context.Context, digest string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if s.Active && s.RefreshHash == digest {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockSessionStore) Rotate(ctx context.Context, sessionID string, rot domain.SessionRotation) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok || !s.Active || s.RefreshHash != rot.OldRefreshHash {
		return false, nil
	}
	s.RefreshHash = rot.NewRefreshHash
	s.JTI = rot.NewJTI
	s.ExpiresAt = rot.NewExpiresAt
	return true, nil
}

func (m *MockSessionStore) Revoke(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return domain.ErrNotFound
	}
	s.Active = false
	s.ExpiresAt = time.Now()
	return nil
}

func (m *MockSessionStore) RevokeAllForUser(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, s := range m.sessions {
		if s.UserID == userID && s.Active {
			s.Active = false
			s.ExpiresAt = now
		}
	}
	return nil
}

// Helper methods for testing

// Get returns the stored session by ID, or nil
func (m *MockSessionStore) Get(id string) *domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil
	}
	cp := *s
	return &cp
}

// Count reports the total number of stored sessions, revoked included
func (m *MockSessionStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ActiveCount reports the number of active sessions for a user
func (m *MockSessionStore) ActiveCount(userID int64) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, s := range m.sessions {
		if s.UserID == userID && s.Active {
			n++
		}
	}
	return n
}
