package mocks

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/authgate/internal/core/domain"
	"github.com/custodia-labs/authgate/internal/core/ports/driven"
)

// Ensure MockPasswordHasher implements PasswordHasher
var _ driven.PasswordHasher = (*MockPasswordHasher)(nil)

// MockPasswordHasher uses reversible plain text digests. NOT secure - testing only.
type MockPasswordHasher struct {
	// HashErr forces Hash to fail when set
	HashErr error
}

// NewMockPasswordHasher creates a new MockPasswordHasher
func NewMockPasswordHasher() *MockPasswordHasher {
	return &MockPasswordHasher{}
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashErr != nil {
		return "", m.HashErr
	}
	return "mock$" + password, nil
}

func (m *MockPasswordHasher) Verify(password, digest string) bool {
	return digest == "mock$"+password
}

// Ensure MockTokenCodec implements TokenCodec
var _ driven.TokenCodec = (*MockTokenCodec)(nil)

// MockTokenCodec encodes claims as base64 JSON instead of signing them.
// NOT secure - testing only.
type MockTokenCodec struct {
	mu  sync.Mutex
	seq int

	// TTL is the access token lifetime (default 15 minutes)
	TTL time.Duration

	// IssueErr forces Issue to fail when set
	IssueErr error
}

// NewMockTokenCodec creates a new MockTokenCodec
func NewMockTokenCodec() *MockTokenCodec {
	return &MockTokenCodec{TTL: 15 * time.Minute}
}

func (m *MockTokenCodec) Issue(subject int64, sessionID string, roles []string, tokenVersion int) (string, error) {
	if m.IssueErr != nil {
		return "", m.IssueErr
	}
	m.mu.Lock()
	m.seq++
	jti := fmt.Sprintf("access-jti-%d", m.seq)
	m.mu.Unlock()

	now := time.Now()
	claims := domain.AccessClaims{
		Subject:      subject,
		SessionID:    sessionID,
		Roles:        roles,
		TokenVersion: tokenVersion,
		IssuedAt:     now.Unix(),
		ExpiresAt:    now.Add(m.TTL).Unix(),
		JTI:          jti,
	}
	data, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

func (m *MockTokenCodec) Verify(token string) (*domain.AccessClaims, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}
	var claims domain.AccessClaims
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, domain.ErrTokenInvalid
	}
	if time.Now().Unix() > claims.ExpiresAt {
		return nil, domain.ErrTokenInvalid
	}
	return &claims, nil
}

func (m *MockTokenCodec) AccessTTL() int {
	return int(m.TTL.Seconds())
}

// Ensure MockRefreshTokenFactory implements RefreshTokenFactory
var _ driven.RefreshTokenFactory = (*MockRefreshTokenFactory)(nil)

// MockRefreshTokenFactory issues sequential, predictable refresh tokens.
// Digest is deterministic but trivially reversible. NOT secure - testing only.
type MockRefreshTokenFactory struct {
	mu  sync.Mutex
	seq int

	// GenerateErr forces Generate to fail when set
	GenerateErr error
}

// NewMockRefreshTokenFactory creates a new MockRefreshTokenFactory
func NewMockRefreshTokenFactory() *MockRefreshTokenFactory {
	return &MockRefreshTokenFactory{}
}

func (m *MockRefreshTokenFactory) Generate() (string, string, error) {
	if m.GenerateErr != nil {
		return "", "", m.GenerateErr
	}
	m.mu.Lock()
	m.seq++
	jti := fmt.Sprintf("refresh-jti-%d", m.seq)
	m.mu.Unlock()
	return jti + ".random", jti, nil
}

func (m *MockRefreshTokenFactory) Digest(raw string) string {
	return "digest$" + raw
}
