// Package collab contains adapters for external collaborators: HTTP
// webhooks and AI text generation.
package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultWebhookTimeout = 10 * time.Second

// HTTPWebhookCaller posts session variables as a JSON body to an
// operator-supplied URL and decodes a JSON object response.
type HTTPWebhookCaller struct {
	client *http.Client
}

// NewHTTPWebhookCaller creates a caller. A nil client gets a default
// with a bounded timeout.
func NewHTTPWebhookCaller(client *http.Client) *HTTPWebhookCaller {
	if client == nil {
		client = &http.Client{Timeout: defaultWebhookTimeout}
	}
	return &HTTPWebhookCaller{client: client}
}

func (c *HTTPWebhookCaller) Call(ctx context.Context, url string, payload map[string]any) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read webhook response: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	// Non-object bodies are legal but carry no variables.
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, nil
	}
	return fields, nil
}
