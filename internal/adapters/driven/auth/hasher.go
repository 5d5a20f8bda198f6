package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/custodia-labs/authgate/internal/core/ports/driven"
)

// Ensure Hasher implements PasswordHasher
var _ driven.PasswordHasher = (*Hasher)(nil)

// Argon2idParams holds the argon2id cost parameters encoded into each digest
type Argon2idParams struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2idParams returns the current production parameters
func DefaultArgon2idParams() Argon2idParams {
	return Argon2idParams{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hasher hashes passwords with argon2id and transparently verifies legacy
// bcrypt digests. Digests are self-describing PHC strings, so verification
// needs no external parameter storage.
type Hasher struct {
	params Argon2idParams
}

// NewHasher creates a Hasher with default argon2id parameters
func NewHasher() *Hasher {
	return &Hasher{params: DefaultArgon2idParams()}
}

// NewHasherWithParams creates a Hasher with custom argon2id parameters
func NewHasherWithParams(params Argon2idParams) *Hasher {
	return &Hasher{params: params}
}

// Hash produces an argon2id PHC digest:
// $argon2id$v=19$m=<mem>,t=<iters>,p=<par>$<salt-b64>$<key-b64>
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt,
		h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory, h.params.Iterations, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify checks a plaintext against a stored digest. Argon2id digests are
// the default; bcrypt digests are recognized for verification only, so
// accounts hashed under the deprecated scheme keep working until rehashed.
// Fails closed: malformed digests return false.
func (h *Hasher) Verify(password, digest string) bool {
	switch {
	case strings.HasPrefix(digest, "$argon2id$"):
		return verifyArgon2id(password, digest)
	case strings.HasPrefix(digest, "$2a$"),
		strings.HasPrefix(digest, "$2b$"),
		strings.HasPrefix(digest, "$2y$"):
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
	default:
		return false
	}
}

// NeedsRehash reports whether a digest uses a deprecated scheme or stale
// argon2id parameters
func (h *Hasher) NeedsRehash(digest string) bool {
	if !strings.HasPrefix(digest, "$argon2id$") {
		return true
	}
	params, _, _, err := decodeArgon2id(digest)
	if err != nil {
		return true
	}
	return params != h.params
}

func verifyArgon2id(password, digest string) bool {
	params, salt, key, err := decodeArgon2id(digest)
	if err != nil {
		return false
	}

	candidate := argon2.IDKey([]byte(password), salt,
		params.Iterations, params.Memory, params.Parallelism, uint32(len(key)))

	return subtle.ConstantTimeCompare(candidate, key) == 1
}

// decodeArgon2id parses a PHC argon2id digest into its parameters, salt, and key
func decodeArgon2id(digest string) (Argon2idParams, []byte, []byte, error) {
	var params Argon2idParams

	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return params, nil, nil, fmt.Errorf("malformed argon2id digest")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return params, nil, nil, fmt.Errorf("malformed version: %w", err)
	}
	if version != argon2.Version {
		return params, nil, nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d",
		&params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return params, nil, nil, fmt.Errorf("malformed parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return params, nil, nil, fmt.Errorf("malformed salt: %w", err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return params, nil, nil, fmt.Errorf("malformed key: %w", err)
	}

	params.SaltLength = uint32(len(salt))
	params.KeyLength = uint32(len(key))
	return params, salt, key, nil
}
