package mcptools

import "github.com/dusk-indust/docqa/internal/gateway"

// RetrieveInput is the input for the document_retriever MCP tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the search query, typically the user's question or a refined version of it"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of snippets to return (default: 5)"`
}

// RetrieveOutput is the result of the document_retriever MCP tool.
type RetrieveOutput struct {
	Results []gateway.Snippet      `json:"results"`
	Meta    gateway.InvocationMeta `json:"meta"`
}

// ListToolsInput is the input for the list_tools MCP tool. It takes no
// arguments.
type ListToolsInput struct{}

// ListToolsOutput is the result of the list_tools MCP tool.
type ListToolsOutput struct {
	Tools []ToolSummary `json:"tools"`
}

// ToolSummary names one gateway tool.
type ToolSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
