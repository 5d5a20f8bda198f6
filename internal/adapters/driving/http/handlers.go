package http

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/custodia-labs/authgate/internal/core/domain"
)

// refreshCookieName is the HTTP-only cookie carrying the refresh token.
// It is scoped to the auth prefix: narrow enough that browsers never send
// it to the gateway, wide enough to reach /auth/logout so logout can
// revoke the session server-side, not just drop the client copy.
const refreshCookieName = "refresh_token"

const refreshCookiePath = "/auth"

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns the readiness status of the API (checks database and cache connections)
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "A backing store is unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "cache unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Auth endpoints

// handleRegister godoc
// @Summary      Register user
// @Description  Create an account, open a session, and return the first token pair
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.RegisterRequest  true  "Registration details"
// @Success      201      {object}  domain.TokenPair
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      409      {object}  ErrorResponse  "Email already registered"
// @Failure      422      {object}  ErrorResponse  "Invalid email or weak password"
// @Router       /auth/register [post]
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, err := s.authService.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			writeError(w, http.StatusConflict, "email already registered")
		case errors.Is(err, domain.ErrWeakPassword):
			writeError(w, http.StatusUnprocessableEntity, "password does not meet requirements")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusUnprocessableEntity, "invalid input")
		default:
			writeError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	s.setRefreshCookie(w, pair)
	writeJSON(w, http.StatusCreated, pair)
}

// handleLogin godoc
// @Summary      User login
// @Description  Authenticate with email and password to receive a token pair
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.LoginRequest  true  "Login credentials"
// @Success      200      {object}  domain.TokenPair
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid credentials"
// @Failure      403      {object}  ErrorResponse  "Account disabled"
// @Failure      422      {object}  ErrorResponse  "Missing email or password"
// @Router       /auth/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Fingerprint = r.UserAgent()
	req.IPAddress = clientIP(r)

	pair, err := s.authService.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, domain.ErrForbidden):
			writeError(w, http.StatusForbidden, "account disabled")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusUnprocessableEntity, "email and password are required")
		default:
			writeError(w, http.StatusInternalServerError, "authentication failed")
		}
		return
	}

	s.setRefreshCookie(w, pair)
	writeJSON(w, http.StatusOK, pair)
}

// handleRefresh godoc
// @Summary      Refresh token
// @Description  Rotate the refresh cookie and mint a fresh access token
// @Tags         Authentication
// @Produce      json
// @Success      200  {object}  domain.TokenPair
// @Failure      401  {object}  ErrorResponse  "Missing, expired, or already used refresh token"
// @Router       /auth/refresh [post]
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		s.clearRefreshCookie(w)
		writeError(w, http.StatusUnauthorized, "missing refresh token")
		return
	}

	pair, err := s.authService.Refresh(r.Context(), cookie.Value)
	if err != nil {
		// Any failure invalidates the cookie: a replayed token has already
		// revoked its session, so there is nothing left to retry with.
		s.clearRefreshCookie(w)
		switch {
		case errors.Is(err, domain.ErrForbidden):
			writeError(w, http.StatusForbidden, "account disabled")
		default:
			writeError(w, http.StatusUnauthorized, "invalid refresh token")
		}
		return
	}

	s.setRefreshCookie(w, pair)
	writeJSON(w, http.StatusOK, pair)
}

// handleLogout godoc
// @Summary      Logout
// @Description  Revoke the session behind the refresh cookie. Safe to call repeatedly.
// @Tags         Authentication
// @Success      204  "Logged out"
// @Router       /auth/logout [post]
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		_ = s.authService.Logout(r.Context(), cookie.Value)
	}

	s.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleLogoutAll godoc
// @Summary      Logout everywhere
// @Description  Revoke every session of the authenticated user and invalidate all outstanding access tokens
// @Tags         Authentication
// @Security     BearerAuth
// @Success      204  "All sessions revoked"
// @Failure      401  {object}  ErrorResponse  "Invalid access token"
// @Router       /auth/logout_all [post]
func (s *Server) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r)

	if err := s.authService.LogoutAll(r.Context(), token); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	s.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Gateway endpoint

// handleGatewayDispatch godoc
// @Summary      Dispatch to a downstream service
// @Description  Forward a payload to a registered downstream handler and return its response
// @Tags         Gateway
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.GatewayRequest  true  "Service name and payload"
// @Success      200      {object}  map[string]any
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      404      {object}  ErrorResponse  "Unknown service"
// @Router       /gateway/services [post]
func (s *Server) handleGatewayDispatch(w http.ResponseWriter, r *http.Request) {
	var req domain.GatewayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.gatewayService.Dispatch(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrServiceNotFound):
			writeError(w, http.StatusNotFound, "unknown service")
		default:
			writeError(w, http.StatusInternalServerError, "dispatch failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Cookie helpers

func (s *Server) setRefreshCookie(w http.ResponseWriter, pair *domain.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    pair.RefreshToken,
		Path:     refreshCookiePath,
		Expires:  pair.RefreshTTL,
		MaxAge:   int(time.Until(pair.RefreshTTL).Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clientIP strips the port from the remote address
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
