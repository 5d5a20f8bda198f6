package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/authgate/internal/core/ports/driven"
)

// Ensure ChatCompletion implements ServiceHandler
var _ driven.ServiceHandler = (*ChatCompletion)(nil)

// ChatCompletion forwards chat payloads to an upstream completion API and
// returns the decoded response body
type ChatCompletion struct {
	apiKey string
	url    string
	client *http.Client
}

// NewChatCompletion creates a new chat completion proxy
func NewChatCompletion(url, apiKey string, timeout time.Duration) (*ChatCompletion, error) {
	if url == "" {
		return nil, fmt.Errorf("chat completion URL is required")
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &ChatCompletion{
		apiKey: apiKey,
		url:    url,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Request posts the payload upstream as-is and returns the upstream JSON
// body. Non-2xx responses and transport failures come back as errors for
// the gateway to translate.
func (c *ChatCompletion) Request(ctx context.Context, payload map[string]any) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upstream returned status %d: %s", resp.StatusCode, truncate(respBody, 256))
	}

	var result map[string]any
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse upstream response: %w", err)
	}

	return result, nil
}

// Close releases resources held by the proxy
func (c *ChatCompletion) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
