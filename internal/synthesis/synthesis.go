// Package synthesis produces the final cited answer from the decision
// stage's hand-off.
package synthesis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dusk-indust/docqa/internal/llm"
	"github.com/dusk-indust/docqa/internal/orchestrator"
)

// Synthesis call parameters.
const (
	Temperature = 0.2
	MaxTokens   = 1024
)

// SystemPrompt confines the model to the supplied context and asks for a
// Sources section. Cited sources are not checked against the snippets.
const SystemPrompt = "You are a meticulous technical analyst. Your job is to synthesize a clear, " +
	"concise answer based ONLY on the provided context and the user's question. " +
	"Do not use any external knowledge beyond what is explicitly stated in the context.\n\n" +
	"CITATION REQUIREMENT:\n" +
	"At the end of your answer, include a 'Sources' section that lists every document " +
	"snippet you referenced, using the format:\n" +
	"  [Source: <filename>] - <one-sentence summary of what that snippet contributed>\n\n" +
	"If the context does not contain enough information to answer the question, " +
	"clearly state that the information is not available in the knowledge base."

// Synthesizer turns a ManagerOutput into an answer.
type Synthesizer struct {
	completer llm.Completer
	logger    *slog.Logger
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesizer) {
		s.logger = logger
	}
}

// New creates a Synthesizer backed by completer.
func New(completer llm.Completer, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		completer: completer,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize asks the model for an answer to mo.SpecialistPrompt and returns
// it trimmed, otherwise verbatim.
func (s *Synthesizer) Synthesize(ctx context.Context, mo orchestrator.ManagerOutput) (string, error) {
	logger := s.logger
	if mo.RunID != "" {
		logger = logger.With(slog.String("run_id", mo.RunID))
	}
	logger.Info("Synthesizing answer",
		slog.String("question", mo.UserQuestion),
		slog.Int("snippets", len(mo.RetrievedSnippets)),
	)

	answer, err := s.completer.Complete(ctx, llm.Request{
		System:      SystemPrompt,
		User:        mo.SpecialistPrompt,
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	})
	if err != nil {
		if !errors.Is(err, llm.ErrProviderUnavailable) {
			err = fmt.Errorf("%w: %w", llm.ErrProviderUnavailable, err)
		}
		return "", fmt.Errorf("synthesis: %w", err)
	}

	answer = strings.TrimSpace(answer)
	logger.Info("Answer ready", slog.Int("length", len([]rune(answer))))
	return answer, nil
}
