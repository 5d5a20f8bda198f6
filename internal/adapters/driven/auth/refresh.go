package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/custodia-labs/authgate/internal/core/ports/driven"
)

// Ensure RefreshFactory implements RefreshTokenFactory
var _ driven.RefreshTokenFactory = (*RefreshFactory)(nil)

const (
	refreshJTIBytes    = 16
	refreshSecretBytes = 32
)

// RefreshFactory generates opaque refresh tokens of the form "<jti>.<random>"
// and their storage-safe sha256 digests. The raw token is handed to the
// client exactly once; only the digest is ever persisted.
type RefreshFactory struct{}

// NewRefreshFactory creates a new RefreshFactory
func NewRefreshFactory() *RefreshFactory {
	return &RefreshFactory{}
}

// Generate returns a fresh raw refresh token and its jti
func (f *RefreshFactory) Generate() (string, string, error) {
	jtiBytes := make([]byte, refreshJTIBytes)
	if _, err := rand.Read(jtiBytes); err != nil {
		return "", "", fmt.Errorf("generate jti: %w", err)
	}
	secret := make([]byte, refreshSecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", "", fmt.Errorf("generate token secret: %w", err)
	}

	jti := base64.RawURLEncoding.EncodeToString(jtiBytes)
	raw := jti + "." + base64.RawURLEncoding.EncodeToString(secret)
	return raw, jti, nil
}

// Digest derives the hex-encoded sha256 digest of a raw token.
// Deterministic: the same input always produces the same output.
func (f *RefreshFactory) Digest(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
