package driven

import "context"

// ServiceHandler forwards a gateway payload to one downstream service.
// Implementations must bound the call with a timeout; a failed or timed-out
// call returns an error, never hangs.
type ServiceHandler interface {
	// Request forwards the payload and returns the downstream response as-is
	Request(ctx context.Context, payload map[string]any) (map[string]any, error)
}
