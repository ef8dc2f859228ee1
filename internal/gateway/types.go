package gateway

// --- Wire types for the tool-invocation contract ---

// ToolDocumentRetriever is the name of the built-in retrieval tool.
const ToolDocumentRetriever = "document_retriever"

// InvocationRequest asks the gateway to run one named tool.
type InvocationRequest struct {
	ToolName   string         `json:"tool_name"`
	Parameters map[string]any `json:"parameters"`
}

// Snippet is one retrieved chunk tagged with its source document.
type Snippet struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

// InvocationMeta describes how an invocation ran.
type InvocationMeta struct {
	Query        string  `json:"query"`
	TotalResults int     `json:"total_results"`
	LatencyMs    float64 `json:"latency_ms"`
}

// InvocationResponse is the result of a successful invocation.
type InvocationResponse struct {
	ToolName string         `json:"tool_name"`
	Results  []Snippet      `json:"results"`
	Meta     InvocationMeta `json:"meta"`
}

// ToolSpec is the machine-readable description of a registered tool.
// Parameters holds a JSON Schema object.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolsListResponse is the body of GET /tools.
type ToolsListResponse struct {
	Tools []ToolSpec `json:"tools"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status          string `json:"status"`
	DocumentsLoaded int    `json:"documents_loaded"`
}

// ErrorResponse is the body of every non-2xx gateway response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
