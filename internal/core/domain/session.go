package domain

import "time"

// Session represents one refresh token lineage for a device/client.
// Rotation mutates the same row (new digest/jti/expiry); the row is never
// hard-deleted, only soft-revoked via the active flag and expiry timestamp.
type Session struct {
	ID          string    `json:"id"` // Stable across rotations (the "sid" claim)
	UserID      int64     `json:"user_id"`
	JTI         string    `json:"jti"` // Identifier of the current refresh token
	RefreshHash string    `json:"refresh_hash"`
	Fingerprint string    `json:"fingerprint,omitempty"` // User-agent derived
	IPAddress   string    `json:"ip_address,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IsExpired checks whether the session lineage has passed its expiry
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsLive reports whether the session can still be refreshed
func (s *Session) IsLive() bool {
	return s.Active && !s.IsExpired()
}

// SessionRotation carries the replacement token material applied to a
// session row on a successful refresh.
type SessionRotation struct {
	OldRefreshHash string
	NewRefreshHash string
	NewJTI         string
	NewExpiresAt   time.Time
}
