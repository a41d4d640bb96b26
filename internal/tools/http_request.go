package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dcversus/prp-sub007/internal/orchestrator"
)

const maxResponseBytes = 1 << 20 // 1 MiB

// HTTPRequestTool performs an HTTP call described by action parameters.
// Parameters: url (required), method (default GET), body, headers.
type HTTPRequestTool struct {
	Client *http.Client
}

func NewHTTPRequestTool() *HTTPRequestTool {
	return &HTTPRequestTool{Client: &http.Client{Timeout: 30 * time.Second}}
}

func (t *HTTPRequestTool) Name() string        { return "http_request" }
func (t *HTTPRequestTool) Description() string { return "Perform an HTTP request and return the response body" }

func (t *HTTPRequestTool) Execute(ctx context.Context, params map[string]any, _ *orchestrator.Signal) (any, error) {
	url, _ := params["url"].(string)
	if url == "" {
		return nil, fmt.Errorf("http_request: url parameter is required")
	}
	method, _ := params["method"].(string)
	if method == "" {
		method = http.MethodGet
	}
	method = strings.ToUpper(method)

	var body io.Reader
	if raw, ok := params["body"].(string); ok && raw != "" {
		body = strings.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("http_request: %w", err)
	}
	if headers, ok := params["headers"].(map[string]any); ok {
		for k, v := range headers {
			req.Header.Set(k, fmt.Sprint(v))
		}
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http_request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("http_request: reading response: %w", err)
	}
	return map[string]any{
		"status": resp.StatusCode,
		"body":   string(data),
	}, nil
}
