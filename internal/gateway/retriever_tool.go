package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/dusk-indust/docqa/internal/corpus"
	"github.com/dusk-indust/docqa/internal/retrieval"
)

// Compile-time interface check.
var _ Tool = (*DocumentRetriever)(nil)

// DocumentRetriever exposes keyword retrieval over a corpus snapshot as the
// document_retriever tool.
type DocumentRetriever struct {
	retriever *retrieval.Retriever
	corpus    *corpus.Corpus
	logger    *slog.Logger
}

// NewDocumentRetriever creates the retrieval tool over c.
func NewDocumentRetriever(r *retrieval.Retriever, c *corpus.Corpus, logger *slog.Logger) *DocumentRetriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentRetriever{retriever: r, corpus: c, logger: logger}
}

// Spec returns the document_retriever schema.
func (d *DocumentRetriever) Spec() ToolSpec {
	return ToolSpec{
		Name: ToolDocumentRetriever,
		Description: "Accepts a natural-language query and returns a list of relevant " +
			"text snippets from the local knowledge base, each tagged with its " +
			"source document name.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query to retrieve relevant document snippets.",
				},
				"top_k": map[string]any{
					"type":        "integer",
					"description": fmt.Sprintf("Maximum number of snippets to return (default: %d).", retrieval.DefaultTopK),
					"default":     retrieval.DefaultTopK,
				},
			},
			"required": []string{"query"},
		},
	}
}

// Invoke validates params and runs retrieval. Latency is filled in by
// Gateway.Invoke.
func (d *DocumentRetriever) Invoke(_ context.Context, params map[string]any) (*InvocationResponse, error) {
	query, topK, err := parseRetrieverParams(params)
	if err != nil {
		return nil, err
	}

	chunks := d.retriever.Retrieve(query, d.corpus, topK)
	results := make([]Snippet, len(chunks))
	for i, c := range chunks {
		results[i] = Snippet{Source: c.Source, Text: c.Text}
	}

	d.logger.Debug("document_retriever scored",
		slog.String("query", query),
		slog.Int("top_k", topK),
		slog.Int("chunk_size", d.retriever.ChunkSize()),
	)

	return &InvocationResponse{
		ToolName: ToolDocumentRetriever,
		Results:  results,
		Meta: InvocationMeta{
			Query:        query,
			TotalResults: len(results),
		},
	}, nil
}

// parseRetrieverParams extracts query and top_k. Numbers may arrive as
// float64 (encoding/json), json.Number (UseNumber) or Go ints (in-process).
func parseRetrieverParams(params map[string]any) (string, int, error) {
	raw, ok := params["query"]
	if !ok || raw == nil {
		return "", 0, fmt.Errorf("%w: parameter 'query' is required", ErrInvalidParameters)
	}
	query, ok := raw.(string)
	if !ok {
		return "", 0, fmt.Errorf("%w: parameter 'query' must be a string", ErrInvalidParameters)
	}
	if strings.TrimSpace(query) == "" {
		return "", 0, fmt.Errorf("%w: parameter 'query' is required", ErrInvalidParameters)
	}

	topK := retrieval.DefaultTopK
	if v, ok := params["top_k"]; ok && v != nil {
		n, ok := asInt(v)
		if !ok {
			return "", 0, fmt.Errorf("%w: parameter 'top_k' must be an integer", ErrInvalidParameters)
		}
		if n < 1 {
			return "", 0, fmt.Errorf("%w: parameter 'top_k' must be positive", ErrInvalidParameters)
		}
		topK = n
	}
	return query, topK, nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

func roundMillis(d time.Duration) float64 {
	ms := float64(d) / float64(time.Millisecond)
	return math.Round(ms*100) / 100
}
