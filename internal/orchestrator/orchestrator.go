// Package orchestrator implements the decision stage: it asks a model
// whether the knowledge base is needed, calls the document_retriever tool
// when it is, and assembles the hand-off prompt for synthesis.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dusk-indust/docqa/internal/gateway"
	"github.com/dusk-indust/docqa/internal/llm"
)

// Decision call parameters. Low temperature and a small budget: the model
// only has to emit one short JSON object.
const (
	DecisionTemperature = 0.1
	DecisionMaxTokens   = 200
	DefaultTopK         = 5
)

// ManagerOutput is the hand-off from the decision stage to synthesis.
type ManagerOutput struct {
	RunID             string            `json:"run_id,omitempty"`
	UserQuestion      string            `json:"user_question"`
	Decision          Decision          `json:"-"`
	RetrievedSnippets []gateway.Snippet `json:"retrieved_snippets"`
	ContextBlock      string            `json:"context_block"`
	SpecialistPrompt  string            `json:"specialist_prompt"`
}

// Orchestrator runs the decision stage for one question at a time. It holds
// no per-question state and is safe for concurrent use.
type Orchestrator struct {
	completer   llm.Completer
	invoker     gateway.Invoker
	logger      *slog.Logger
	progress    *ProgressReporter
	defaultTopK int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithProgress attaches a reporter that receives every state transition.
func WithProgress(pr *ProgressReporter) Option {
	return func(o *Orchestrator) {
		o.progress = pr
	}
}

// WithDefaultTopK sets the top_k used when the model omits it or its output
// cannot be parsed.
func WithDefaultTopK(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.defaultTopK = n
		}
	}
}

// New creates an Orchestrator that asks completer for decisions and sends
// retrievals to invoker.
func New(completer llm.Completer, invoker gateway.Invoker, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		completer:   completer,
		invoker:     invoker,
		logger:      slog.Default(),
		defaultTopK: DefaultTopK,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Decide runs the decision stage for question. A completion failure wraps
// llm.ErrProviderUnavailable and a gateway failure is returned as-is (usually
// gateway.ErrRetrievalUnavailable); both abort the question. Unparseable
// decision output does not: it falls back to retrieving with the question.
func (o *Orchestrator) Decide(ctx context.Context, question string) (ManagerOutput, error) {
	return o.decide(ctx, "", question)
}

// DecideRun is Decide with a correlation ID attached to logs, progress events
// and the output.
func (o *Orchestrator) DecideRun(ctx context.Context, runID, question string) (ManagerOutput, error) {
	return o.decide(ctx, runID, question)
}

func (o *Orchestrator) decide(ctx context.Context, runID, question string) (ManagerOutput, error) {
	logger := o.logger
	if runID != "" {
		logger = logger.With(slog.String("run_id", runID))
	}
	logger.Info("Received question", slog.String("question", question))
	o.emit(runID, StateAwaitingDecision, "")

	raw, err := o.completer.Complete(ctx, llm.Request{
		System:      ManagerSystemPrompt,
		User:        decisionPrompt(question),
		Temperature: DecisionTemperature,
		MaxTokens:   DecisionMaxTokens,
	})
	if err != nil {
		if !errors.Is(err, llm.ErrProviderUnavailable) {
			err = fmt.Errorf("%w: %w", llm.ErrProviderUnavailable, err)
		}
		return ManagerOutput{}, fmt.Errorf("orchestrator: decision: %w", err)
	}

	text := Sanitize(raw)
	logger.Info("Tool decision", slog.String("decision", text))

	decision := ParseDecision(text, question, o.defaultTopK)

	var snippets []gateway.Snippet
	switch d := decision.(type) {
	case Retrieve:
		logger.Info("Retrieving documents", slog.String("query", d.Query), slog.Int("top_k", d.TopK))
		o.emit(runID, StateRetrieving, d.Query)
		snippets, err = o.retrieve(ctx, d.Query, d.TopK)
	case Malformed:
		logger.Warn("Decision parse failed, falling back to direct retrieval", slog.Any("error", d.Err))
		o.emit(runID, StateRetrieving, question)
		snippets, err = o.retrieve(ctx, question, o.defaultTopK)
	case Skip:
		logger.Info("No retrieval needed", slog.String("action", d.Requested))
		o.emit(runID, StateSkippingRetrieval, d.Requested)
	}
	if err != nil {
		return ManagerOutput{}, fmt.Errorf("orchestrator: retrieve: %w", err)
	}
	if snippets == nil {
		snippets = []gateway.Snippet{}
	}

	contextBlock := BuildContextBlock(snippets)
	out := ManagerOutput{
		RunID:             runID,
		UserQuestion:      question,
		Decision:          decision,
		RetrievedSnippets: snippets,
		ContextBlock:      contextBlock,
		SpecialistPrompt:  BuildSpecialistPrompt(question, contextBlock),
	}

	logger.Info("Prompt ready", slog.Int("snippets", len(snippets)))
	o.emit(runID, StatePromptAssembled, fmt.Sprintf("%d snippets", len(snippets)))
	return out, nil
}

func (o *Orchestrator) retrieve(ctx context.Context, query string, topK int) ([]gateway.Snippet, error) {
	resp, err := o.invoker.Invoke(ctx, gateway.InvocationRequest{
		ToolName: gateway.ToolDocumentRetriever,
		Parameters: map[string]any{
			"query": query,
			"top_k": topK,
		},
	})
	if err != nil {
		return nil, err
	}
	o.logger.Info("Tool responded",
		slog.Int("snippets", len(resp.Results)),
		slog.Float64("latency_ms", resp.Meta.LatencyMs),
	)
	return resp.Results, nil
}

func (o *Orchestrator) emit(runID string, state State, msg string) {
	o.progress.Emit(ProgressEvent{RunID: runID, State: state, Message: msg})
}
