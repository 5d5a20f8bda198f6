package driving

import (
	"context"

	"github.com/custodia-labs/authgate/internal/core/domain"
)

// AuthService orchestrates the session and token lifecycle
type AuthService interface {
	// Register creates a user (and its tenant, lazily), opens a session
	// lineage, and mints the first token pair
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.TokenPair, error)

	// Login validates credentials and opens a new session lineage
	Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenPair, error)

	// Refresh rotates the refresh token in place and mints a fresh access
	// token. A replayed (already rotated) token fails with ErrRefreshInvalid.
	Refresh(ctx context.Context, rawRefreshToken string) (*domain.TokenPair, error)

	// Logout revokes the session matching the refresh token. Missing or
	// unknown tokens are treated as already logged out.
	Logout(ctx context.Context, rawRefreshToken string) error

	// LogoutAll revokes every active session of the token's subject and
	// bumps the user's token version, invalidating outstanding access tokens
	LogoutAll(ctx context.Context, accessToken string) error

	// ValidateAccess verifies an access token for the gateway, cross-checking
	// the token version and active flag against the live user record
	ValidateAccess(ctx context.Context, accessToken string) (*domain.AccessClaims, error)
}
