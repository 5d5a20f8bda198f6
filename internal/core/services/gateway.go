package services

import (
	"context"
	"log/slog"
	"sort"

	"github.com/custodia-labs/authgate/internal/core/domain"
	"github.com/custodia-labs/authgate/internal/core/ports/driven"
	"github.com/custodia-labs/authgate/internal/core/ports/driving"
)

// Ensure gatewayService implements GatewayService
var _ driving.GatewayService = (*gatewayService)(nil)

// gatewayService dispatches requests to downstream service handlers.
// The registry is fixed at construction; nothing mutates it afterwards.
type gatewayService struct {
	registry map[string]driven.ServiceHandler
	logger   *slog.Logger
}

// NewGatewayService creates a new GatewayService over an explicit handler
// registry. The map is copied so later changes by the caller have no effect.
func NewGatewayService(registry map[string]driven.ServiceHandler, logger *slog.Logger) driving.GatewayService {
	if logger == nil {
		logger = slog.Default()
	}
	reg := make(map[string]driven.ServiceHandler, len(registry))
	for name, h := range registry {
		reg[name] = h
	}
	return &gatewayService{registry: reg, logger: logger}
}

// Dispatch forwards the payload to the named handler. Handler failures are
// surfaced as a structured error payload rather than propagated: the gateway
// never turns a downstream failure into a transport failure.
func (s *gatewayService) Dispatch(ctx context.Context, req domain.GatewayRequest) (map[string]any, error) {
	handler, ok := s.registry[req.Service]
	if !ok {
		return nil, domain.ErrServiceNotFound
	}

	s.logger.Info("dispatching service request", "service", req.Service)

	resp, err := handler.Request(ctx, req.Payload)
	if err != nil {
		s.logger.Error("service handler failed", "service", req.Service, "error", err)
		return map[string]any{"error": err.Error()}, nil
	}

	s.logger.Info("service request processed", "service", req.Service)
	return resp, nil
}

// Services lists the registered service names, sorted
func (s *gatewayService) Services() []string {
	names := make([]string, 0, len(s.registry))
	for name := range s.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
