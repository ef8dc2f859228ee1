// Package pipeline runs one question through the decision and synthesis
// stages in sequence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dusk-indust/docqa/internal/gateway"
	"github.com/dusk-indust/docqa/internal/orchestrator"
	"github.com/google/uuid"
)

// ErrEmptyQuestion is returned for a blank question.
var ErrEmptyQuestion = errors.New("pipeline: question is empty")

// Decider is the decision stage.
type Decider interface {
	DecideRun(ctx context.Context, runID, question string) (orchestrator.ManagerOutput, error)
}

// Synthesizer is the answer stage.
type Synthesizer interface {
	Synthesize(ctx context.Context, mo orchestrator.ManagerOutput) (string, error)
}

// Answer is the result of one pipeline run.
type Answer struct {
	RunID     string            `json:"run_id"`
	Question  string            `json:"question"`
	Action    string            `json:"action"`
	Snippets  []gateway.Snippet `json:"snippets"`
	Text      string            `json:"answer"`
	ElapsedMs int64             `json:"elapsed_ms"`
}

// Pipeline wires a Decider to a Synthesizer.
type Pipeline struct {
	decider     Decider
	synthesizer Synthesizer
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a Pipeline.
func New(d Decider, s Synthesizer, opts ...Option) *Pipeline {
	p := &Pipeline{
		decider:     d,
		synthesizer: s,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ask answers question. Any stage error aborts the run; no partial answer is
// returned.
func (p *Pipeline) Ask(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	start := time.Now()
	runID := uuid.NewString()
	logger := p.logger.With(slog.String("run_id", runID))
	logger.Info("Pipeline started")

	mo, err := p.decider.DecideRun(ctx, runID, question)
	if err != nil {
		logger.Error("Decision stage failed", slog.Any("error", err))
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	text, err := p.synthesizer.Synthesize(ctx, mo)
	if err != nil {
		logger.Error("Synthesis stage failed", slog.Any("error", err))
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	action := ""
	if mo.Decision != nil {
		action = mo.Decision.Action()
	}
	elapsed := time.Since(start)
	logger.Info("Pipeline finished", slog.Duration("elapsed", elapsed))

	return &Answer{
		RunID:     runID,
		Question:  question,
		Action:    action,
		Snippets:  mo.RetrievedSnippets,
		Text:      text,
		ElapsedMs: elapsed.Milliseconds(),
	}, nil
}
