package orchestrator

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/docqa/internal/gateway"
)

// ManagerSystemPrompt instructs the decision model to answer with exactly
// one JSON object.
const ManagerSystemPrompt = "You are the Manager Agent, an orchestrator responsible for answering complex " +
	"technical questions. You have access to a document_retriever tool that can fetch " +
	"relevant information from the internal knowledge base.\n\n" +
	"Your job is to decide what information is needed and respond with ONLY this JSON format:\n" +
	`{"action": "retrieve", "query": "your search query here", "top_k": 5}` + "\n\n" +
	"If no retrieval is needed, respond with:\n" +
	`{"action": "none"}` + "\n\n" +
	"Do NOT include any explanation or extra text. Only output valid JSON."

// NoContextSentinel is the context block used when nothing was retrieved.
const NoContextSentinel = "No relevant documents were retrieved from the knowledge base."

const snippetSeparator = "\n\n---\n\n"

// decisionPrompt is the user turn of the decision call.
func decisionPrompt(question string) string {
	return fmt.Sprintf("User question: %s\n\nRespond with JSON only.", question)
}

// BuildContextBlock renders snippets as numbered, source-tagged blocks, or
// the sentinel when there are none.
func BuildContextBlock(snippets []gateway.Snippet) string {
	if len(snippets) == 0 {
		return NoContextSentinel
	}
	blocks := make([]string, len(snippets))
	for i, s := range snippets {
		source := s.Source
		if source == "" {
			source = "unknown"
		}
		blocks[i] = fmt.Sprintf("[Snippet %d | Source: %s]\n%s", i+1, source, s.Text)
	}
	return strings.Join(blocks, snippetSeparator)
}

// BuildSpecialistPrompt embeds the question and context block verbatim.
func BuildSpecialistPrompt(question, contextBlock string) string {
	return fmt.Sprintf("USER QUESTION:\n%s\n\nRETRIEVED CONTEXT FROM KNOWLEDGE BASE:\n%s", question, contextBlock)
}
