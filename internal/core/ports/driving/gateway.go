package driving

import (
	"context"

	"github.com/custodia-labs/authgate/internal/core/domain"
)

// GatewayService dispatches verified requests to downstream service handlers
type GatewayService interface {
	// Dispatch forwards the payload to the named service handler and returns
	// its response unmodified. Unknown services fail with ErrServiceNotFound;
	// handler failures are surfaced as a structured {"error": ...} payload,
	// never as a transport failure.
	Dispatch(ctx context.Context, req domain.GatewayRequest) (map[string]any, error)

	// Services lists the registered service names
	Services() []string
}
