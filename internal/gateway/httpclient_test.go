package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newGatewayServer runs a real gateway behind httptest.
func newGatewayServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(NewServer(newTestGateway(), WithServerLogger(quietLogger())).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTPClient_Invoke(t *testing.T) {
	ts := newGatewayServer(t)
	client := NewHTTPClient(ts.URL + "/")

	resp, err := client.Invoke(context.Background(), InvocationRequest{
		ToolName:   ToolDocumentRetriever,
		Parameters: map[string]any{"query": "fraud explainability", "top_k": 5},
	})
	require.NoError(t, err)
	assert.Equal(t, ToolDocumentRetriever, resp.ToolName)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "a.md", resp.Results[0].Source)
	assert.Equal(t, 1, resp.Meta.TotalResults)
}

func TestHTTPClient_SendsJSONAndRequestID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tools/invoke", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))

		var req InvocationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, ToolDocumentRetriever, req.ToolName)
		assert.Equal(t, "fraud", req.Parameters["query"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(InvocationResponse{ToolName: req.ToolName, Results: []Snippet{}})
	}))
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL).Invoke(context.Background(), InvocationRequest{
		ToolName:   ToolDocumentRetriever,
		Parameters: map[string]any{"query": "fraud"},
	})
	require.NoError(t, err)
}

func TestHTTPClient_ErrorMapping(t *testing.T) {
	ts := newGatewayServer(t)
	client := NewHTTPClient(ts.URL)

	_, err := client.Invoke(context.Background(), InvocationRequest{
		ToolName:   "unknown_tool",
		Parameters: map[string]any{"query": "x"},
	})
	assert.ErrorIs(t, err, ErrToolNotFound)

	_, err = client.Invoke(context.Background(), InvocationRequest{
		ToolName:   ToolDocumentRetriever,
		Parameters: map[string]any{},
	})
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestHTTPClient_ServerErrorIsUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"boom"}`))
	}))
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL).Invoke(context.Background(), InvocationRequest{ToolName: ToolDocumentRetriever})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetrievalUnavailable)
	assert.Contains(t, err.Error(), "boom")
}

func TestHTTPClient_MalformedResponseIsUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL).Invoke(context.Background(), InvocationRequest{ToolName: ToolDocumentRetriever})
	assert.ErrorIs(t, err, ErrRetrievalUnavailable)
}

func TestHTTPClient_ConnectionRefused(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := NewHTTPClient(url).Invoke(context.Background(), InvocationRequest{
		ToolName:   ToolDocumentRetriever,
		Parameters: map[string]any{"query": "fraud"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRetrievalUnavailable))
}

func TestHTTPClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer ts.Close()
	defer close(release)

	start := time.Now()
	_, err := NewHTTPClient(ts.URL, WithTimeout(100*time.Millisecond)).Invoke(context.Background(), InvocationRequest{
		ToolName:   ToolDocumentRetriever,
		Parameters: map[string]any{"query": "fraud"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetrievalUnavailable)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestHTTPClient_WithHTTPClient(t *testing.T) {
	hc := &http.Client{Timeout: time.Second}
	c := NewHTTPClient("http://example.invalid", WithHTTPClient(hc))
	assert.Same(t, hc, c.http)
}

func TestHTTPClient_ListToolsAndHealth(t *testing.T) {
	ts := newGatewayServer(t)
	client := NewHTTPClient(ts.URL)

	tools, err := client.ListTools(context.Background())
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, ToolDocumentRetriever, tools[0].Name)

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 2, health.DocumentsLoaded)
}
