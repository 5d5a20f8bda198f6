package driven

import "github.com/custodia-labs/authgate/internal/core/domain"

// PasswordHasher handles one-way password hashing.
// The digest is self-describing: verification needs no external parameters,
// and deprecated-but-verifiable legacy schemes are recognized transparently.
type PasswordHasher interface {
	// Hash produces a digest of the plaintext using the current default algorithm
	Hash(password string) (string, error)

	// Verify checks the plaintext against a digest. Fails closed: malformed
	// digests return false, never an error.
	Verify(password, digest string) bool
}

// TokenCodec signs and verifies compact, expiring access tokens
type TokenCodec interface {
	// Issue signs an access token carrying {sub, sid, roles, tv, iat, exp, jti}.
	// The jti is random per issuance and unrelated to refresh token jtis.
	Issue(subject int64, sessionID string, roles []string, tokenVersion int) (string, error)

	// Verify checks signature, shape, and expiry, returning the claims.
	// Fails with domain.ErrTokenInvalid. Does not check token version
	// currency; callers needing revocation-on-bump cross-check tv against
	// the live user record.
	Verify(token string) (*domain.AccessClaims, error)

	// AccessTTL reports the configured access token lifetime in seconds
	AccessTTL() int
}

// RefreshTokenFactory generates opaque refresh token material
type RefreshTokenFactory interface {
	// Generate returns an unguessable raw token of the form "<jti>.<random>"
	// along with its jti. The raw token reaches the client exactly once.
	Generate() (raw, jti string, err error)

	// Digest derives the storage-safe fixed-length hex digest of a raw token.
	// Deterministic and one-way; only digests are ever persisted.
	Digest(raw string) string
}
