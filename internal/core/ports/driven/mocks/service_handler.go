package mocks

import (
	"context"

	"github.com/custodia-labs/authgate/internal/core/ports/driven"
)

// Ensure MockServiceHandler implements ServiceHandler
var _ driven.ServiceHandler = (*MockServiceHandler)(nil)

// MockServiceHandler is a configurable ServiceHandler for testing
type MockServiceHandler struct {
	// RequestFn handles the call when set; otherwise the payload is echoed back
	RequestFn func(ctx context.Context, payload map[string]any) (map[string]any, error)

	// Calls counts invocations
	Calls int
}

// NewMockServiceHandler creates a new MockServiceHandler
func NewMockServiceHandler() *MockServiceHandler {
	return &MockServiceHandler{}
}

func (m *MockServiceHandler) Request(ctx context.Context, payload map[string]any) (map[string]any, error) {
	m.Calls++
	if m.RequestFn != nil {
		return m.RequestFn(ctx, payload)
	}
	return payload, nil
}
