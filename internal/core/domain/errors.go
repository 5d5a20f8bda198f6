package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken indicates a user with the same email already exists
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrWeakPassword indicates the password fails the acceptance policy
	ErrWeakPassword = errors.New("password too weak")

	// ErrInvalidCredentials indicates wrong email/password combination.
	// Deliberately identical for unknown user and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the account is disabled or lacks permission
	ErrForbidden = errors.New("forbidden")

	// ErrTokenInvalid indicates the access token is malformed, expired,
	// badly signed, or stale against the user's token version
	ErrTokenInvalid = errors.New("invalid or expired token")

	// ErrRefreshInvalid indicates the refresh token is missing, unknown,
	// already rotated, or expired
	ErrRefreshInvalid = errors.New("invalid or expired refresh token")

	// ErrServiceNotFound indicates the requested downstream service is not registered
	ErrServiceNotFound = errors.New("service not found")
)
