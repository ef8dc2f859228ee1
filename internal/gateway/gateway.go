// Package gateway exposes retrieval as named, schema-described tools behind a
// request/response contract. The same Gateway is served in-process, over
// JSON/HTTP (Server, HTTPClient) and over MCP (package mcptools).
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dusk-indust/docqa/internal/corpus"
	"github.com/dusk-indust/docqa/internal/retrieval"
)

// Errors returned by invocations. Callers match them with errors.Is.
var (
	// ErrToolNotFound means the requested tool is not registered.
	ErrToolNotFound = errors.New("gateway: tool not found")

	// ErrInvalidParameters means the parameters failed validation.
	ErrInvalidParameters = errors.New("gateway: invalid parameters")

	// ErrRetrievalUnavailable means the gateway could not be reached or did
	// not answer usefully. It is fatal to the question being processed.
	ErrRetrievalUnavailable = errors.New("gateway: retrieval unavailable")
)

// Invoker runs tool invocations. Both *Gateway (in-process) and *HTTPClient
// (remote) implement it.
type Invoker interface {
	Invoke(ctx context.Context, req InvocationRequest) (*InvocationResponse, error)
}

// Compile-time interface checks.
var (
	_ Invoker = (*Gateway)(nil)
	_ Invoker = (*HTTPClient)(nil)
)

// Gateway dispatches invocations to registered tools.
type Gateway struct {
	registry *Registry
	corpus   *corpus.Corpus
	logger   *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the gateway logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// New creates a Gateway over c with the document_retriever tool registered.
func New(c *corpus.Corpus, r *retrieval.Retriever, opts ...Option) *Gateway {
	g := &Gateway{
		registry: NewRegistry(),
		corpus:   c,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	// Cannot fail: the registry is empty.
	_ = g.registry.Register(NewDocumentRetriever(r, c, g.logger))
	return g
}

// Register adds another tool to the gateway.
func (g *Gateway) Register(t Tool) error {
	return g.registry.Register(t)
}

// Invoke dispatches req to the named tool. Meta.LatencyMs covers lookup,
// validation and execution, in milliseconds rounded to two decimals.
func (g *Gateway) Invoke(ctx context.Context, req InvocationRequest) (*InvocationResponse, error) {
	start := time.Now()
	g.logger.Info("Tool invocation requested", slog.String("tool", req.ToolName))

	tool, ok := g.registry.Lookup(req.ToolName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrToolNotFound, req.ToolName)
	}
	params := req.Parameters
	if params == nil {
		params = map[string]any{}
	}
	resp, err := tool.Invoke(ctx, params)
	if err != nil {
		return nil, err
	}

	resp.Meta.LatencyMs = roundMillis(time.Since(start))
	g.logger.Info("Tool invocation completed",
		slog.String("tool", req.ToolName),
		slog.String("query", resp.Meta.Query),
		slog.Int("snippets_returned", len(resp.Results)),
		slog.Float64("latency_ms", resp.Meta.LatencyMs),
	)
	return resp, nil
}

// ListTools returns the schema of every registered tool.
func (g *Gateway) ListTools() []ToolSpec {
	return g.registry.Specs()
}

// DocumentsLoaded reports the corpus size for health checks.
func (g *Gateway) DocumentsLoaded() int {
	return g.corpus.Len()
}
