package domain

import (
	"testing"
	"time"
)

func TestSessionIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		expected  bool
	}{
		{"future expiry", time.Now().Add(time.Hour), false},
		{"past expiry", time.Now().Add(-time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Session{ExpiresAt: tt.expiresAt}
			if s.IsExpired() != tt.expected {
				t.Errorf("expected IsExpired() = %v", tt.expected)
			}
		})
	}
}

func TestSessionIsLive(t *testing.T) {
	tests := []struct {
		name      string
		active    bool
		expiresAt time.Time
		expected  bool
	}{
		{"active and unexpired", true, time.Now().Add(time.Hour), true},
		{"revoked", false, time.Now().Add(time.Hour), false},
		{"active but expired", true, time.Now().Add(-time.Minute), false},
		{"revoked and expired", false, time.Now().Add(-time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Session{Active: tt.active, ExpiresAt: tt.expiresAt}
			if s.IsLive() != tt.expected {
				t.Errorf("expected IsLive() = %v", tt.expected)
			}
		})
	}
}
