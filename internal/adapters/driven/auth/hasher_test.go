package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// testParams keeps argon2id cheap enough for the test suite
func testParams() Argon2idParams {
	return Argon2idParams{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasherWithParams(testParams())

	digest, err := h.Hash("Abcdef12")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	if !strings.HasPrefix(digest, "$argon2id$v=19$") {
		t.Errorf("expected self-describing argon2id digest, got %q", digest)
	}
	if strings.Contains(digest, "Abcdef12") {
		t.Error("digest must not contain the plaintext")
	}

	if !h.Verify("Abcdef12", digest) {
		t.Error("expected correct password to verify")
	}
	if h.Verify("Abcdef13", digest) {
		t.Error("expected wrong password to fail")
	}
}

func TestHasher_HashIsSalted(t *testing.T) {
	h := NewHasherWithParams(testParams())

	first, err := h.Hash("Abcdef12")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	second, err := h.Hash("Abcdef12")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if first == second {
		t.Error("expected fresh salt per hash")
	}
	if !h.Verify("Abcdef12", first) || !h.Verify("Abcdef12", second) {
		t.Error("expected both digests to verify")
	}
}

func TestHasher_VerifyLegacyBcrypt(t *testing.T) {
	h := NewHasherWithParams(testParams())

	legacy, err := bcrypt.GenerateFromPassword([]byte("Abcdef12"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt hash failed: %v", err)
	}

	if !h.Verify("Abcdef12", string(legacy)) {
		t.Error("expected legacy bcrypt digest to verify")
	}
	if h.Verify("wrong", string(legacy)) {
		t.Error("expected wrong password against bcrypt digest to fail")
	}
	if !h.NeedsRehash(string(legacy)) {
		t.Error("expected bcrypt digest to be flagged for rehash")
	}
}

func TestHasher_VerifyFailsClosed(t *testing.T) {
	h := NewHasherWithParams(testParams())

	malformed := []string{
		"",
		"plaintext",
		"$argon2id$",
		"$argon2id$v=19$m=8192,t=1,p=1$not-base64!$also-not!",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$a2V5", // unsupported version
		"$unknown$digest$scheme",
	}

	for _, digest := range malformed {
		if h.Verify("Abcdef12", digest) {
			t.Errorf("expected malformed digest %q to fail verification", digest)
		}
	}
}

func TestHasher_NeedsRehash(t *testing.T) {
	h := NewHasherWithParams(testParams())

	digest, err := h.Hash("Abcdef12")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if h.NeedsRehash(digest) {
		t.Error("fresh digest should not need rehash")
	}

	stronger := NewHasher() // production parameters differ from testParams
	if !stronger.NeedsRehash(digest) {
		t.Error("digest with stale parameters should need rehash")
	}
}
