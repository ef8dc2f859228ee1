package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout bounds a single gateway call. No call is retried.
const DefaultTimeout = 5 * time.Second

// HTTPClient invokes tools on a remote gateway over HTTP.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.http = hc
	}
}

// NewHTTPClient creates a client for the gateway at baseURL.
func NewHTTPClient(baseURL string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Invoke posts req to /tools/invoke. Transport failures, server errors and
// undecodable responses are reported as ErrRetrievalUnavailable; 404 and 422
// map back to ErrToolNotFound and ErrInvalidParameters.
func (c *HTTPClient) Invoke(ctx context.Context, req InvocationRequest) (*InvocationResponse, error) {
	var resp InvocationResponse
	if err := c.do(ctx, http.MethodPost, "/tools/invoke", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListTools fetches the tool schemas from GET /tools.
func (c *HTTPClient) ListTools(ctx context.Context) ([]ToolSpec, error) {
	var resp ToolsListResponse
	if err := c.do(ctx, http.MethodGet, "/tools", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tools, nil
}

// Health fetches GET /health.
func (c *HTTPClient) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do performs one JSON request/response round trip.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("gateway: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	url := c.baseURL + path
	httpReq, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("gateway: create request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, uuid.NewString())

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrRetrievalUnavailable, method, url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrRetrievalUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		detail := errorDetail(respBody)
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrToolNotFound, detail)
		case http.StatusUnprocessableEntity:
			return fmt.Errorf("%w: %s", ErrInvalidParameters, detail)
		default:
			return fmt.Errorf("%w: %s %s: HTTP %d: %s", ErrRetrievalUnavailable, method, url, resp.StatusCode, detail)
		}
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrRetrievalUnavailable, err)
	}
	return nil
}

// errorDetail extracts the detail field from an error body, falling back to
// the raw body.
func errorDetail(body []byte) string {
	var e ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Detail != "" {
		return e.Detail
	}
	return strings.TrimSpace(string(body))
}
