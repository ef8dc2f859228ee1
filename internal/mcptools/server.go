package mcptools

import (
	"context"
	"net/http"

	"github.com/dusk-indust/docqa/internal/gateway"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewRetrieverMCPServer creates an MCP server exposing the gateway's
// document_retriever tool and a tool listing.
func NewRetrieverMCPServer(svc *RetrieverService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "docqa-gateway",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        gateway.ToolDocumentRetriever,
		Description: svc.description(gateway.ToolDocumentRetriever),
	}, svc.Retrieve)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_tools",
		Description: "List the tools registered on the gateway with their descriptions.",
	}, svc.ListTools)

	return server
}

// NewHTTPHandler returns a streamable-HTTP handler serving server. The
// gateway mounts it at /mcp.
func NewHTTPHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)
}

// RunStdio runs the MCP server on stdio transport, blocking until stdin is
// closed or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
