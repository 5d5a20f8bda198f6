package domain

import (
	"strings"
	"time"
	"unicode"
)

// Role defines a user permission label
type Role string

const (
	RoleUser    Role = "user"    // Default role for self-registered accounts
	RoleAdmin   Role = "admin"   // Manage users and tenants
	RoleAuditor Role = "auditor" // Read-only access to audit surfaces
)

// User represents an identity record
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"` // Normalized: trimmed, lowercased
	PasswordHash string    `json:"-"`     // Never serialize
	FullName     string    `json:"full_name,omitempty"`
	Roles        []Role    `json:"roles"`
	TokenVersion int       `json:"token_version"`
	Active       bool      `json:"active"`
	TenantID     *int64    `json:"tenant_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Tenant represents an optional organization grouping.
// Created lazily on first registration referencing it; never deleted here.
type Tenant struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// RoleStrings returns the role labels as plain strings for token claims
func (u *User) RoleStrings() []string {
	out := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		out[i] = string(r)
	}
	return out
}

// HasRole checks whether the user carries the given role label
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// NormalizeEmail canonicalizes an email for storage and lookup.
// Email uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePassword enforces the password acceptance policy:
// minimum length 8, at least one uppercase, one lowercase, one digit.
// Enforced by the registration flow, not by the hasher.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return ErrWeakPassword
	}
	return nil
}
