package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/custodia-labs/authgate/internal/core/domain"
)

// Mock services for testing

type mockAuthService struct {
	registerFn       func(ctx context.Context, req domain.RegisterRequest) (*domain.TokenPair, error)
	loginFn          func(ctx context.Context, req domain.LoginRequest) (*domain.TokenPair, error)
	refreshFn        func(ctx context.Context, rawRefreshToken string) (*domain.TokenPair, error)
	logoutFn         func(ctx context.Context, rawRefreshToken string) error
	logoutAllFn      func(ctx context.Context, accessToken string) error
	validateAccessFn func(ctx context.Context, accessToken string) (*domain.AccessClaims, error)
}

func (m *mockAuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.TokenPair, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenPair, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) Refresh(ctx context.Context, rawRefreshToken string) (*domain.TokenPair, error) {
	if m.refreshFn != nil {
		return m.refreshFn(ctx, rawRefreshToken)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) Logout(ctx context.Context, rawRefreshToken string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, rawRefreshToken)
	}
	return nil
}

func (m *mockAuthService) LogoutAll(ctx context.Context, accessToken string) error {
	if m.logoutAllFn != nil {
		return m.logoutAllFn(ctx, accessToken)
	}
	return nil
}

func (m *mockAuthService) ValidateAccess(ctx context.Context, accessToken string) (*domain.AccessClaims, error) {
	if m.validateAccessFn != nil {
		return m.validateAccessFn(ctx, accessToken)
	}
	return nil, errors.New("not implemented")
}

type mockGatewayService struct {
	dispatchFn func(ctx context.Context, req domain.GatewayRequest) (map[string]any, error)
	servicesFn func() []string
}

func (m *mockGatewayService) Dispatch(ctx context.Context, req domain.GatewayRequest) (map[string]any, error) {
	if m.dispatchFn != nil {
		return m.dispatchFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockGatewayService) Services() []string {
	if m.servicesFn != nil {
		return m.servicesFn()
	}
	return nil
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.err
}

func testPair() *domain.TokenPair {
	return &domain.TokenPair{
		AccessToken:  "test-access-token",
		TokenType:    "bearer",
		ExpiresIn:    900,
		RefreshToken: "test-refresh-token",
		RefreshTTL:   time.Now().Add(30 * 24 * time.Hour),
	}
}

func findCookie(t *testing.T, rr *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Health endpoints

func TestHandleHealth(t *testing.T) {
	server := &Server{}

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	server.handleHealth(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
}

func TestHandleReady_AllHealthy(t *testing.T) {
	server := &Server{db: &mockPinger{}, redisClient: &mockPinger{}}

	req := httptest.NewRequest("GET", "/ready", nil)
	rr := httptest.NewRecorder()
	server.handleReady(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
}

func TestHandleReady_DatabaseDown(t *testing.T) {
	server := &Server{db: &mockPinger{err: errors.New("connection refused")}}

	req := httptest.NewRequest("GET", "/ready", nil)
	rr := httptest.NewRecorder()
	server.handleReady(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rr.Code)
	}
}

func TestHandleReady_CacheDown(t *testing.T) {
	server := &Server{db: &mockPinger{}, redisClient: &mockPinger{err: errors.New("connection refused")}}

	req := httptest.NewRequest("GET", "/ready", nil)
	rr := httptest.NewRecorder()
	server.handleReady(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rr.Code)
	}
}

func TestHandleVersion(t *testing.T) {
	server := &Server{version: "1.2.3"}

	req := httptest.NewRequest("GET", "/version", nil)
	rr := httptest.NewRecorder()
	server.handleVersion(rr, req)

	var response map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["version"] != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %s", response["version"])
	}
}

// Register

func TestHandleRegister_Success(t *testing.T) {
	mockAuth := &mockAuthService{
		registerFn: func(ctx context.Context, req domain.RegisterRequest) (*domain.TokenPair, error) {
			return testPair(), nil
		},
	}
	server := &Server{authService: mockAuth}

	body, _ := json.Marshal(domain.RegisterRequest{
		Email:    "new@example.com",
		Password: "Str0ngPass",
	})
	req := httptest.NewRequest("POST", "/auth/register", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()

	server.handleRegister(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	var response domain.TokenPair
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.AccessToken != "test-access-token" {
		t.Errorf("expected access token in body, got %q", response.AccessToken)
	}
	if response.TokenType != "bearer" {
		t.Errorf("expected token_type bearer, got %q", response.TokenType)
	}

	cookie := findCookie(t, rr, refreshCookieName)
	if cookie == nil {
		t.Fatal("expected refresh cookie to be set")
	}
	if cookie.Value != "test-refresh-token" {
		t.Errorf("expected refresh token in cookie, got %q", cookie.Value)
	}
	if !cookie.HttpOnly || !cookie.Secure {
		t.Error("expected HttpOnly and Secure cookie")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("expected SameSite=Lax, got %v", cookie.SameSite)
	}
	if cookie.Path != refreshCookiePath {
		t.Errorf("expected cookie path %s, got %s", refreshCookiePath, cookie.Path)
	}
}

func TestHandleRegister_RefreshTokenNotInBody(t *testing.T) {
	mockAuth := &mockAuthService{
		registerFn: func(ctx context.Context, req domain.RegisterRequest) (*domain.TokenPair, error) {
			return testPair(), nil
		},
	}
	server := &Server{authService: mockAuth}

	body, _ := json.Marshal(domain.RegisterRequest{Email: "new@example.com", Password: "Str0ngPass"})
	req := httptest.NewRequest("POST", "/auth/register", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()

	server.handleRegister(rr, req)

	var raw map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, found := raw["refresh_token"]; found {
		t.Error("refresh token must not appear in the response body")
	}
}

func TestHandleRegister_EmailTaken(t *testing.T) {
	mockAuth := &mockAuthService{
		registerFn: func(ctx context.Context, req domain.RegisterRequest) (*domain.TokenPair, error) {
			return nil, domain.ErrEmailTaken
		},
	}
	server := &Server{authService: mockAuth}

	body, _ := json.Marshal(domain.RegisterRequest{Email: "dup@example.com", Password: "Str0ngPass"})
	req := httptest.NewRequest("POST", "/auth/register", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()

	server.handleRegister(rr, req)

	if rr.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rr.Code)
	}
}

func TestHandleRegister_WeakPassword(t *testing.T) {
	mockAuth := &mockAuthService{
		registerFn: func(ctx context.Context, req domain.RegisterRequest) (*domain.TokenPair, error) {
			return nil, domain.ErrWeakPassword
		},
	}
	server := &Server{authService: mockAuth}

	body, _ := json.Marshal(domain.RegisterRequest{Email: "new@example.com", Password: "weak"})
	req := httptest.NewRequest("POST", "/auth/register", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()

	server.handleRegister(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected status 422, got %d", rr.Code)
	}
}

func TestHandleRegister_InvalidJSON(t *testing.T) {
	server := &Server{authService: &mockAuthService{}}

	req := httptest.NewRequest("POST", "/auth/register", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()

	server.handleRegister(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

// Login

func TestHandleLogin_Success(t *testing.T) {
	mockAuth := &mockAuthService{
		loginFn: func(ctx context.Context, req domain.LoginRequest) (*domain.TokenPair, error) {
			if req.Email == "test@example.com" && req.Password == "Passw0rd123" {
				return testPair(), nil
			}
			return nil, domain.ErrInvalidCredentials
		},
	}
	server := &Server{authService: mockAuth}

	body, _ := json.Marshal(domain.LoginRequest{
		Email:    "test@example.com",
		Password: "Passw0rd123",
	})
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()

	server.handleLogin(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if findCookie(t, rr, refreshCookieName) == nil {
		t.Error("expected refresh cookie to be set")
	}
}

func TestHandleLogin_CapturesClientContext(t *testing.T) {
	var captured domain.LoginRequest
	mockAuth := &mockAuthService{
		loginFn: func(ctx context.Context, req domain.LoginRequest) (*domain.TokenPair, error) {
			captured = req
			return testPair(), nil
		},
	}
	server := &Server{authService: mockAuth}

	body, _ := json.Marshal(domain.LoginRequest{Email: "test@example.com", Password: "Passw0rd123"})
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
	req.Header.Set("User-Agent", "test-agent/1.0")
	req.RemoteAddr = "203.0.113.9:51234"
	rr := httptest.NewRecorder()

	server.handleLogin(rr, req)

	if captured.Fingerprint != "test-agent/1.0" {
		t.Errorf("expected user agent as fingerprint, got %q", captured.Fingerprint)
	}
	if captured.IPAddress != "203.0.113.9" {
		t.Errorf("expected client IP without port, got %q", captured.IPAddress)
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	mockAuth := &mockAuthService{
		loginFn: func(ctx context.Context, req domain.LoginRequest) (*domain.TokenPair, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	server := &Server{authService: mockAuth}

	body, _ := json.Marshal(domain.LoginRequest{Email: "test@example.com", Password: "wrong"})
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()

	server.handleLogin(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
	if findCookie(t, rr, refreshCookieName) != nil {
		t.Error("expected no refresh cookie on failed login")
	}
}

func TestHandleLogin_AccountDisabled(t *testing.T) {
	mockAuth := &mockAuthService{
		loginFn: func(ctx context.Context, req domain.LoginRequest) (*domain.TokenPair, error) {
			return nil, domain.ErrForbidden
		},
	}
	server := &Server{authService: mockAuth}

	body, _ := json.Marshal(domain.LoginRequest{Email: "off@example.com", Password: "Passw0rd123"})
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()

	server.handleLogin(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", rr.Code)
	}
}

func TestHandleLogin_EmptyPassword(t *testing.T) {
	mockAuth := &mockAuthService{
		loginFn: func(ctx context.Context, req domain.LoginRequest) (*domain.TokenPair, error) {
			return nil, domain.ErrInvalidInput
		},
	}
	server := &Server{authService: mockAuth}

	body, _ := json.Marshal(domain.LoginRequest{Email: "a@b.com", Password: ""})
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()

	server.handleLogin(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected status 422, got %d", rr.Code)
	}
	if findCookie(t, rr, refreshCookieName) != nil {
		t.Error("expected no refresh cookie on rejected login")
	}
}

func TestHandleLogin_InvalidJSON(t *testing.T) {
	server := &Server{authService: &mockAuthService{}}

	req := httptest.NewRequest("POST", "/auth/login", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()

	server.handleLogin(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

// Refresh

func TestHandleRefresh_Success(t *testing.T) {
	rotated := testPair()
	rotated.RefreshToken = "rotated-refresh-token"
	mockAuth := &mockAuthService{
		refreshFn: func(ctx context.Context, raw string) (*domain.TokenPair, error) {
			if raw != "old-refresh-token" {
				return nil, domain.ErrRefreshInvalid
			}
			return rotated, nil
		},
	}
	server := &Server{authService: mockAuth}

	req := httptest.NewRequest("POST", "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "old-refresh-token"})
	rr := httptest.NewRecorder()

	server.handleRefresh(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	cookie := findCookie(t, rr, refreshCookieName)
	if cookie == nil {
		t.Fatal("expected rotated refresh cookie")
	}
	if cookie.Value != "rotated-refresh-token" {
		t.Errorf("expected rotated token in cookie, got %q", cookie.Value)
	}
}

func TestHandleRefresh_MissingCookie(t *testing.T) {
	server := &Server{authService: &mockAuthService{}}

	req := httptest.NewRequest("POST", "/auth/refresh", nil)
	rr := httptest.NewRecorder()

	server.handleRefresh(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

func TestHandleRefresh_ReplayedToken(t *testing.T) {
	mockAuth := &mockAuthService{
		refreshFn: func(ctx context.Context, raw string) (*domain.TokenPair, error) {
			return nil, domain.ErrRefreshInvalid
		},
	}
	server := &Server{authService: mockAuth}

	req := httptest.NewRequest("POST", "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "already-used"})
	rr := httptest.NewRecorder()

	server.handleRefresh(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}

	// cookie must be expired so the client stops retrying
	cookie := findCookie(t, rr, refreshCookieName)
	if cookie == nil {
		t.Fatal("expected cleared refresh cookie")
	}
	if cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Errorf("expected expired empty cookie, got value=%q maxAge=%d", cookie.Value, cookie.MaxAge)
	}
}

func TestHandleRefresh_DisabledUser(t *testing.T) {
	mockAuth := &mockAuthService{
		refreshFn: func(ctx context.Context, raw string) (*domain.TokenPair, error) {
			return nil, domain.ErrForbidden
		},
	}
	server := &Server{authService: mockAuth}

	req := httptest.NewRequest("POST", "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "valid-but-disabled"})
	rr := httptest.NewRecorder()

	server.handleRefresh(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", rr.Code)
	}
}

// Logout

func TestRefreshCookie_CoversLogoutPath(t *testing.T) {
	// The cookie scope must include /auth/logout, or a browser logout would
	// drop the client copy while the server session stays active.
	mockAuth := &mockAuthService{
		loginFn: func(ctx context.Context, req domain.LoginRequest) (*domain.TokenPair, error) {
			return testPair(), nil
		},
	}
	server := &Server{authService: mockAuth}

	body, _ := json.Marshal(domain.LoginRequest{Email: "a@b.com", Password: "Passw0rd123"})
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()
	server.handleLogin(rr, req)

	cookie := findCookie(t, rr, refreshCookieName)
	if cookie == nil {
		t.Fatal("expected refresh cookie")
	}
	if !strings.HasPrefix("/auth/logout", cookie.Path+"/") {
		t.Errorf("cookie path %q does not cover /auth/logout", cookie.Path)
	}
	if strings.HasPrefix("/gateway/services", cookie.Path) {
		t.Errorf("cookie path %q must not cover the gateway", cookie.Path)
	}
}

func TestHandleLogout_WithCookie(t *testing.T) {
	var loggedOut string
	mockAuth := &mockAuthService{
		logoutFn: func(ctx context.Context, raw string) error {
			loggedOut = raw
			return nil
		},
	}
	server := &Server{authService: mockAuth}

	req := httptest.NewRequest("POST", "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "my-refresh-token"})
	rr := httptest.NewRecorder()

	server.handleLogout(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", rr.Code)
	}
	if loggedOut != "my-refresh-token" {
		t.Errorf("expected logout called with cookie value, got %q", loggedOut)
	}

	cookie := findCookie(t, rr, refreshCookieName)
	if cookie == nil || cookie.MaxAge >= 0 {
		t.Error("expected refresh cookie to be cleared")
	}
}

func TestHandleLogout_NoCookie(t *testing.T) {
	called := false
	mockAuth := &mockAuthService{
		logoutFn: func(ctx context.Context, raw string) error {
			called = true
			return nil
		},
	}
	server := &Server{authService: mockAuth}

	req := httptest.NewRequest("POST", "/auth/logout", nil)
	rr := httptest.NewRecorder()

	server.handleLogout(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", rr.Code)
	}
	if called {
		t.Error("expected no service call without a cookie")
	}
}

func TestHandleLogout_ServiceErrorStillNoContent(t *testing.T) {
	mockAuth := &mockAuthService{
		logoutFn: func(ctx context.Context, raw string) error {
			return errors.New("store down")
		},
	}
	server := &Server{authService: mockAuth}

	req := httptest.NewRequest("POST", "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "whatever"})
	rr := httptest.NewRecorder()

	server.handleLogout(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", rr.Code)
	}
}

// LogoutAll

func TestHandleLogoutAll_Success(t *testing.T) {
	var revokedToken string
	mockAuth := &mockAuthService{
		logoutAllFn: func(ctx context.Context, accessToken string) error {
			revokedToken = accessToken
			return nil
		},
	}
	server := &Server{authService: mockAuth}

	req := httptest.NewRequest("POST", "/auth/logout_all", nil)
	req.Header.Set("Authorization", "Bearer my-access-token")
	rr := httptest.NewRecorder()

	server.handleLogoutAll(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", rr.Code)
	}
	if revokedToken != "my-access-token" {
		t.Errorf("expected bearer token passed through, got %q", revokedToken)
	}
}

func TestHandleLogoutAll_InvalidToken(t *testing.T) {
	mockAuth := &mockAuthService{
		logoutAllFn: func(ctx context.Context, accessToken string) error {
			return domain.ErrTokenInvalid
		},
	}
	server := &Server{authService: mockAuth}

	req := httptest.NewRequest("POST", "/auth/logout_all", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rr := httptest.NewRecorder()

	server.handleLogoutAll(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

// Gateway

func TestHandleGatewayDispatch_Success(t *testing.T) {
	mockGateway := &mockGatewayService{
		dispatchFn: func(ctx context.Context, req domain.GatewayRequest) (map[string]any, error) {
			if req.Service != "chat_completion" {
				return nil, domain.ErrServiceNotFound
			}
			return map[string]any{"id": "cmpl-1"}, nil
		},
	}
	server := &Server{gatewayService: mockGateway}

	body, _ := json.Marshal(domain.GatewayRequest{
		Service: "chat_completion",
		Payload: map[string]any{"model": "gpt-4o-mini"},
	})
	req := httptest.NewRequest("POST", "/gateway/services", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()

	server.handleGatewayDispatch(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var response map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["id"] != "cmpl-1" {
		t.Errorf("expected upstream response passthrough, got %+v", response)
	}
}

func TestHandleGatewayDispatch_UnknownService(t *testing.T) {
	mockGateway := &mockGatewayService{
		dispatchFn: func(ctx context.Context, req domain.GatewayRequest) (map[string]any, error) {
			return nil, domain.ErrServiceNotFound
		},
	}
	server := &Server{gatewayService: mockGateway}

	body, _ := json.Marshal(domain.GatewayRequest{Service: "no-such-service"})
	req := httptest.NewRequest("POST", "/gateway/services", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()

	server.handleGatewayDispatch(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

func TestHandleGatewayDispatch_HandlerFailurePassthrough(t *testing.T) {
	// handler failures come back as a structured payload, not an HTTP error
	mockGateway := &mockGatewayService{
		dispatchFn: func(ctx context.Context, req domain.GatewayRequest) (map[string]any, error) {
			return map[string]any{"error": "upstream timeout"}, nil
		},
	}
	server := &Server{gatewayService: mockGateway}

	body, _ := json.Marshal(domain.GatewayRequest{Service: "chat_completion"})
	req := httptest.NewRequest("POST", "/gateway/services", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()

	server.handleGatewayDispatch(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var response map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["error"] != "upstream timeout" {
		t.Errorf("expected error payload, got %+v", response)
	}
}

func TestHandleGatewayDispatch_InvalidJSON(t *testing.T) {
	server := &Server{gatewayService: &mockGatewayService{}}

	req := httptest.NewRequest("POST", "/gateway/services", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()

	server.handleGatewayDispatch(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

// Route wiring

func TestRoutes_GatewayRequiresAuth(t *testing.T) {
	server := NewServer(DefaultConfig(), &mockAuthService{}, &mockGatewayService{}, nil, nil)

	body, _ := json.Marshal(domain.GatewayRequest{Service: "chat_completion"})
	req := httptest.NewRequest("POST", "/gateway/services", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()

	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401 without bearer token, got %d", rr.Code)
	}
}

func TestRoutes_GatewayWithValidToken(t *testing.T) {
	mockAuth := &mockAuthService{
		validateAccessFn: func(ctx context.Context, token string) (*domain.AccessClaims, error) {
			if token != "good-token" {
				return nil, domain.ErrTokenInvalid
			}
			return &domain.AccessClaims{Subject: 1, Roles: []string{"user"}}, nil
		},
	}
	mockGateway := &mockGatewayService{
		dispatchFn: func(ctx context.Context, req domain.GatewayRequest) (map[string]any, error) {
			return map[string]any{"ok": true}, nil
		},
	}
	server := NewServer(DefaultConfig(), mockAuth, mockGateway, nil, nil)

	body, _ := json.Marshal(domain.GatewayRequest{Service: "chat_completion"})
	req := httptest.NewRequest("POST", "/gateway/services", bytes.NewBuffer(body))
	req.Header.Set("Authorization", "Bearer good-token")
	rr := httptest.NewRecorder()

	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestRoutes_LogoutAllRequiresAuth(t *testing.T) {
	mockAuth := &mockAuthService{
		validateAccessFn: func(ctx context.Context, token string) (*domain.AccessClaims, error) {
			return nil, domain.ErrTokenInvalid
		},
	}
	server := NewServer(DefaultConfig(), mockAuth, &mockGatewayService{}, nil, nil)

	req := httptest.NewRequest("POST", "/auth/logout_all", nil)
	req.Header.Set("Authorization", "Bearer stale-token")
	rr := httptest.NewRecorder()

	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}
