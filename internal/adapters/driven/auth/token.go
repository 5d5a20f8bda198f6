package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/custodia-labs/authgate/internal/core/domain"
	"github.com/custodia-labs/authgate/internal/core/ports/driven"
)

// Ensure TokenCodec implements driven.TokenCodec
var _ driven.TokenCodec = (*TokenCodec)(nil)

// DefaultAccessTTL is the access token lifetime unless configured otherwise
const DefaultAccessTTL = 15 * time.Minute

// jwtClaims wraps domain.AccessClaims for JWT compatibility
type jwtClaims struct {
	SessionID    string   `json:"sid"`
	Roles        []string `json:"roles"`
	TokenVersion int      `json:"tv"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies access tokens with a symmetric secret
type TokenCodec struct {
	secret    []byte
	method    jwt.SigningMethod
	accessTTL time.Duration
}

// NewTokenCodec creates a TokenCodec. alg selects the HMAC signing
// algorithm (HS256, HS384, HS512); empty means HS256. accessTTL <= 0 means
// the 15 minute default.
func NewTokenCodec(secret string, alg string, accessTTL time.Duration) (*TokenCodec, error) {
	if secret == "" {
		return nil, fmt.Errorf("signing secret is required")
	}
	if alg == "" {
		alg = "HS256"
	}
	method := jwt.GetSigningMethod(alg)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", alg)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing algorithm %q is not symmetric", alg)
	}
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	return &TokenCodec{
		secret:    []byte(secret),
		method:    method,
		accessTTL: accessTTL,
	}, nil
}

// Issue signs an access token carrying {sub, sid, roles, tv, iat, exp, jti}
func (c *TokenCodec) Issue(subject int64, sessionID string, roles []string, tokenVersion int) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		SessionID:    sessionID,
		Roles:        roles,
		TokenVersion: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", subject),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
			ID:        randomJTI(),
		},
	}

	token := jwt.NewWithClaims(c.method, claims)
	return token.SignedString(c.secret)
}

// Verify checks signature, shape, and expiry. The token version claim is
// returned as-is; currency against the live user record is the caller's
// concern.
func (c *TokenCodec) Verify(tokenString string) (*domain.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, domain.ErrTokenInvalid
	}

	var subject int64
	if _, err := fmt.Sscanf(claims.Subject, "%d", &subject); err != nil {
		return nil, domain.ErrTokenInvalid
	}

	return &domain.AccessClaims{
		Subject:      subject,
		SessionID:    claims.SessionID,
		Roles:        claims.Roles,
		TokenVersion: claims.TokenVersion,
		IssuedAt:     claims.IssuedAt.Unix(),
		ExpiresAt:    claims.ExpiresAt.Unix(),
		JTI:          claims.ID,
	}, nil
}

// AccessTTL reports the configured access token lifetime in seconds
func (c *TokenCodec) AccessTTL() int {
	return int(c.accessTTL.Seconds())
}

// randomJTI returns a fresh random token identifier
func randomJTI() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
