package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/dusk-indust/docqa/internal/gateway"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RetrieverService adapts a gateway to MCP tool handlers. The gateway may be
// in-process or remote.
type RetrieverService struct {
	invoker gateway.Invoker
	lister  func() []gateway.ToolSpec
}

// NewRetrieverService creates a RetrieverService backed by an in-process
// gateway.
func NewRetrieverService(gw *gateway.Gateway) *RetrieverService {
	return &RetrieverService{invoker: gw, lister: gw.ListTools}
}

// Retrieve forwards a document_retriever call to the gateway.
func (s *RetrieverService) Retrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, RetrieveOutput{}, fmt.Errorf("query is required")
	}

	params := map[string]any{"query": input.Query}
	if input.TopK != 0 {
		params["top_k"] = input.TopK
	}

	resp, err := s.invoker.Invoke(ctx, gateway.InvocationRequest{
		ToolName:   gateway.ToolDocumentRetriever,
		Parameters: params,
	})
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	results := resp.Results
	if results == nil {
		results = []gateway.Snippet{}
	}
	return nil, RetrieveOutput{Results: results, Meta: resp.Meta}, nil
}

// ListTools reports the tools registered on the gateway.
func (s *RetrieverService) ListTools(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListToolsInput,
) (*mcp.CallToolResult, ListToolsOutput, error) {
	specs := s.lister()
	out := ListToolsOutput{Tools: make([]ToolSummary, len(specs))}
	for i, spec := range specs {
		out.Tools[i] = ToolSummary{Name: spec.Name, Description: spec.Description}
	}
	return nil, out, nil
}

// description returns the gateway's description of the named tool, so the
// MCP and HTTP listings stay identical.
func (s *RetrieverService) description(name string) string {
	for _, spec := range s.lister() {
		if spec.Name == name {
			return spec.Description
		}
	}
	return ""
}
