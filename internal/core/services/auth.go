package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/authgate/internal/core/domain"
	"github.com/custodia-labs/authgate/internal/core/ports/driven"
	"github.com/custodia-labs/authgate/internal/core/ports/driving"
)

// Ensure authService implements AuthService
var _ driving.AuthService = (*authService)(nil)

// DefaultRefreshTTL is the refresh session lifetime unless configured otherwise
const DefaultRefreshTTL = 30 * 24 * time.Hour

// authService implements the AuthService interface
type authService struct {
	userStore    driven.UserStore
	tenantStore  driven.TenantStore
	sessionStore driven.SessionStore
	hasher       driven.PasswordHasher
	codec        driven.TokenCodec
	refresh      driven.RefreshTokenFactory
	refreshTTL   time.Duration
}

// AuthServiceConfig bundles the collaborators of the auth service
type AuthServiceConfig struct {
	UserStore    driven.UserStore
	TenantStore  driven.TenantStore
	SessionStore driven.SessionStore
	Hasher       driven.PasswordHasher
	Codec        driven.TokenCodec
	Refresh      driven.RefreshTokenFactory

	// RefreshTTL defaults to 30 days when zero
	RefreshTTL time.Duration
}

// NewAuthService creates a new AuthService
func NewAuthService(cfg AuthServiceConfig) driving.AuthService {
	ttl := cfg.RefreshTTL
	if ttl <= 0 {
		ttl = DefaultRefreshTTL
	}
	return &authService{
		userStore:    cfg.UserStore,
		tenantStore:  cfg.TenantStore,
		sessionStore: cfg.SessionStore,
		hasher:       cfg.Hasher,
		codec:        cfg.Codec,
		refresh:      cfg.Refresh,
		refreshTTL:   ttl,
	}
}

// Register creates a user and its first session lineage
func (s *authService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.TokenPair, error) {
	email := domain.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := domain.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	var tenantID *int64
	if req.TenantName != "" {
		tenant, err := s.ensureTenant(ctx, req.TenantName)
		if err != nil {
			return nil, err
		}
		tenantID = &tenant.ID
	}

	if _, err := s.userStore.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Roles:        []domain.Role{domain.RoleUser},
		TokenVersion: 0,
		Active:       true,
		TenantID:     tenantID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userStore.Create(ctx, user); err != nil {
		return nil, err
	}

	// New registrations carry a fixed fingerprint; there is no prior
	// client context to derive one from.
	return s.openSession(ctx, user, "register", "")
}

// Login validates credentials and opens a new session lineage
func (s *authService) Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenPair, error) {
	email := domain.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	// Unknown user and wrong password fail identically to prevent
	// account enumeration.
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, domain.ErrForbidden
	}
	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	return s.openSession(ctx, user, req.Fingerprint, req.IPAddress)
}

// Refresh rotates the refresh token and mints a fresh access token
func (s *authService) Refresh(ctx context.Context, rawRefreshToken string) (*domain.TokenPair, error) {
	if rawRefreshToken == "" {
		return nil, domain.ErrRefreshInvalid
	}

	// A rotated-away digest matches no active row, so replaying a stale
	// refresh token lands here with ErrNotFound.
	digest := s.refresh.Digest(rawRefreshToken)
	session, err := s.sessionStore.GetActiveByDigest(ctx, digest)
	if err != nil {
		return nil, domain.ErrRefreshInvalid
	}

	if session.IsExpired() {
		_ = s.sessionStore.Revoke(ctx, session.ID)
		return nil, domain.ErrRefreshInvalid
	}

	// Revoke only on a definitive answer. A transient store failure must
	// not burn the lineage.
	user, err := s.userStore.Get(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = s.sessionStore.Revoke(ctx, session.ID)
			return nil, domain.ErrForbidden
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.Active {
		_ = s.sessionStore.Revoke(ctx, session.ID)
		return nil, domain.ErrForbidden
	}

	newRaw, newJTI, err := s.refresh.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	expiresAt := time.Now().Add(s.refreshTTL)
	rotated, err := s.sessionStore.Rotate(ctx, session.ID, domain.SessionRotation{
		OldRefreshHash: digest,
		NewRefreshHash: s.refresh.Digest(newRaw),
		NewJTI:         newJTI,
		NewExpiresAt:   expiresAt,
	})
	if err != nil {
		return nil, err
	}
	if !rotated {
		// A concurrent refresh won the race; this presentation is stale.
		return nil, domain.ErrRefreshInvalid
	}

	access, err := s.codec.Issue(user.ID, session.ID, user.RoleStrings(), user.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  access,
		TokenType:    "bearer",
		ExpiresIn:    s.codec.AccessTTL(),
		RefreshToken: newRaw,
		RefreshTTL:   expiresAt,
	}, nil
}

// Logout revokes the session matching the refresh token. Idempotent:
// missing or unknown tokens are treated as already logged out.
func (s *authService) Logout(ctx context.Context, rawRefreshToken string) error {
	if rawRefreshToken == "" {
		return nil
	}
	session, err := s.sessionStore.GetActiveByDigest(ctx, s.refresh.Digest(rawRefreshToken))
	if err != nil {
		return nil
	}
	return s.sessionStore.Revoke(ctx, session.ID)
}

// LogoutAll revokes every session of the token's subject and bumps the
// token version, invalidating access tokens minted before the call.
func (s *authService) LogoutAll(ctx context.Context, accessToken string) error {
	claims, err := s.codec.Verify(accessToken)
	if err != nil {
		return domain.ErrTokenInvalid
	}
	if err := s.sessionStore.RevokeAllForUser(ctx, claims.Subject); err != nil {
		return err
	}
	return s.userStore.BumpTokenVersion(ctx, claims.Subject)
}

// ValidateAccess verifies an access token for the gateway. Beyond signature
// and expiry it cross-checks the token version and active flag against the
// live user record, so a LogoutAll bump rejects outstanding tokens at the
// cost of one user lookup per call.
func (s *authService) ValidateAccess(ctx context.Context, accessToken string) (*domain.AccessClaims, error) {
	claims, err := s.codec.Verify(accessToken)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	user, err := s.userStore.Get(ctx, claims.Subject)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}
	if !user.Active {
		return nil, domain.ErrForbidden
	}
	if claims.TokenVersion != user.TokenVersion {
		return nil, domain.ErrTokenInvalid
	}

	return claims, nil
}

// ensureTenant looks a tenant up by case-insensitive name, creating it on
// first reference
func (s *authService) ensureTenant(ctx context.Context, name string) (*domain.Tenant, error) {
	tenant, err := s.tenantStore.GetByName(ctx, name)
	if err == nil {
		return tenant, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	tenant = &domain.Tenant{Name: strings.TrimSpace(name), CreatedAt: time.Now()}
	if err := s.tenantStore.Create(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

// openSession generates the token material first, builds the complete
// session record once, and persists it once. A session store failure fails
// the whole operation; no tokens leave without a persisted session.
func (s *authService) openSession(ctx context.Context, user *domain.User, fingerprint, ip string) (*domain.TokenPair, error) {
	rawRefresh, jti, err := s.refresh.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	now := time.Now()
	session := &domain.Session{
		ID:          generateSessionID(),
		UserID:      user.ID,
		JTI:         jti,
		RefreshHash: s.refresh.Digest(rawRefresh),
		Fingerprint: fingerprint,
		IPAddress:   ip,
		Active:      true,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.refreshTTL),
	}
	if err := s.sessionStore.Create(ctx, session); err != nil {
		return nil, err
	}

	access, err := s.codec.Issue(user.ID, session.ID, user.RoleStrings(), user.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  access,
		TokenType:    "bearer",
		ExpiresIn:    s.codec.AccessTTL(),
		RefreshToken: rawRefresh,
		RefreshTTL:   session.ExpiresAt,
	}, nil
}

// Helper functions

func generateSessionID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
