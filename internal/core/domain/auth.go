package domain

import "time"

// AccessClaims is the decoded payload of an access token
type AccessClaims struct {
	Subject      int64    `json:"sub"`
	SessionID    string   `json:"sid"`
	Roles        []string `json:"roles"`
	TokenVersion int      `json:"tv"`
	IssuedAt     int64    `json:"iat"`
	ExpiresAt    int64    `json:"exp"`
	JTI          string   `json:"jti"`
}

// HasRole checks whether the claims carry the given role label
func (c *AccessClaims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RegisterRequest represents a registration attempt
type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FullName   string `json:"full_name,omitempty"`
	TenantName string `json:"tenant_name,omitempty"`
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`

	// Captured from the transport, not the request body
	Fingerprint string `json:"-"`
	IPAddress   string `json:"-"`
}

// TokenPair is returned by operations that mint tokens. The access token
// goes in the response body; the refresh token travels only as an
// HTTP-only cookie and is never persisted raw.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"` // Always "bearer"
	ExpiresIn    int       `json:"expires_in"` // Access TTL in seconds
	RefreshToken string    `json:"-"`
	RefreshTTL   time.Time `json:"-"` // Cookie expiry
}

// GatewayRequest asks the dispatcher to forward a payload to a named
// downstream service
type GatewayRequest struct {
	Service string         `json:"service"`
	Payload map[string]any `json:"payload"`
}
