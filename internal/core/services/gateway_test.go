package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/authgate/internal/core/domain"
	"github.com/custodia-labs/authgate/internal/core/ports/driven"
	"github.com/custodia-labs/authgate/internal/core/ports/driven/mocks"
)

func TestGatewayService_Dispatch(t *testing.T) {
	handler := mocks.NewMockServiceHandler()
	handler.RequestFn = func(ctx context.Context, payload map[string]any) (map[string]any, error) {
		return map[string]any{"echo": payload["msg"]}, nil
	}

	svc := NewGatewayService(map[string]driven.ServiceHandler{
		"chat_completion": handler,
	}, nil)

	resp, err := svc.Dispatch(context.Background(), domain.GatewayRequest{
		Service: "chat_completion",
		Payload: map[string]any{"msg": "hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp["echo"])
	assert.Equal(t, 1, handler.Calls)
}

func TestGatewayService_Dispatch_UnknownService(t *testing.T) {
	svc := NewGatewayService(map[string]driven.ServiceHandler{}, nil)

	_, err := svc.Dispatch(context.Background(), domain.GatewayRequest{
		Service: "nonexistent",
		Payload: map[string]any{},
	})
	assert.ErrorIs(t, err, domain.ErrServiceNotFound)
}

func TestGatewayService_Dispatch_HandlerFailureBecomesPayload(t *testing.T) {
	handler := mocks.NewMockServiceHandler()
	handler.RequestFn = func(ctx context.Context, payload map[string]any) (map[string]any, error) {
		return nil, errors.New("upstream timeout")
	}

	svc := NewGatewayService(map[string]driven.ServiceHandler{
		"chat_completion": handler,
	}, nil)

	resp, err := svc.Dispatch(context.Background(), domain.GatewayRequest{
		Service: "chat_completion",
		Payload: map[string]any{},
	})

	// Downstream failures never surface as dispatch errors
	require.NoError(t, err)
	assert.Equal(t, "upstream timeout", resp["error"])
}

func TestGatewayService_RegistryIsImmutable(t *testing.T) {
	registry := map[string]driven.ServiceHandler{
		"chat_completion": mocks.NewMockServiceHandler(),
	}
	svc := NewGatewayService(registry, nil)

	// Mutating the caller's map after construction has no effect
	registry["injected"] = mocks.NewMockServiceHandler()
	delete(registry, "chat_completion")

	assert.Equal(t, []string{"chat_completion"}, svc.Services())

	_, err := svc.Dispatch(context.Background(), domain.GatewayRequest{Service: "injected"})
	assert.ErrorIs(t, err, domain.ErrServiceNotFound)
}
