package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/docqa/internal/config"
	"github.com/dusk-indust/docqa/internal/corpus"
	"github.com/dusk-indust/docqa/internal/gateway"
	"github.com/dusk-indust/docqa/internal/llm"
	"github.com/dusk-indust/docqa/internal/logging"
	"github.com/dusk-indust/docqa/internal/retrieval"
)

// app carries the state shared by every command.
type app struct {
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger *slog.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// newCompleter builds the completion client; tests replace it.
	newCompleter func(ctx context.Context, cfg config.LLMConfig) (llm.Completer, error)
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:        stdin,
		stdout:       stdout,
		stderr:       stderr,
		newCompleter: defaultCompleter,
		logger:       logging.Discard(),
	}
}

func defaultCompleter(ctx context.Context, cfg config.LLMConfig) (llm.Completer, error) {
	return llm.New(ctx, llm.Config{
		Provider:  cfg.Provider,
		Model:     cfg.Model,
		BaseURL:   cfg.BaseURL,
		APIKeyEnv: cfg.APIKeyEnv,
	})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "docqa",
		Short: "Answer questions from a local knowledge base with cited sources",
		Long: `docqa answers free-text questions in two stages. A decision model chooses
whether to search the knowledge base; matching snippets are fetched from the
document_retriever tool gateway; a synthesis model writes a cited answer.

Example usage:
  docqa serve                                   # Start the tool gateway
  docqa ask "When is explainability planned?"   # Ask through the gateway
  docqa ask --local "fraud model status"        # Retrieve in-process
  docqa search "fraud explainability"           # Inspect keyword scores`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./docqa.yml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging and progress output")

	root.AddCommand(
		newServeCmd(a),
		newAskCmd(a),
		newToolsCmd(a),
		newSearchCmd(a),
	)
	return root
}

// setup resolves config and builds the logger.
func (a *app) setup() error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.Resolve(dir, a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if a.verbose {
		level = slog.LevelDebug
	}
	a.cfg = cfg
	a.logger = logging.New(a.stderr, level)
	return nil
}

// loadCorpus reads the configured knowledge base.
func (a *app) loadCorpus(ctx context.Context) (*corpus.Corpus, error) {
	opts := []corpus.LoaderOption{
		corpus.WithIncludes(a.cfg.Corpus.Includes...),
		corpus.WithExcludes(a.cfg.Corpus.Excludes...),
		corpus.WithLogger(a.logger),
	}
	if a.verbose {
		opts = append(opts, corpus.WithProgress(a.stderr))
	}
	return corpus.NewLoader(opts...).Load(ctx, a.cfg.Corpus.Dir)
}

func (a *app) newRetriever() *retrieval.Retriever {
	return retrieval.NewRetriever(retrieval.WithChunkSize(a.cfg.Retrieval.ChunkSize))
}

// userError turns fatal pipeline errors into messages that say what to do.
func (a *app) userError(err error) error {
	switch {
	case errors.Is(err, gateway.ErrRetrievalUnavailable):
		return fmt.Errorf("retrieval gateway unreachable at %s (is `docqa serve` running?): %w", a.cfg.Gateway.URL, err)
	case errors.Is(err, llm.ErrProviderUnavailable):
		return fmt.Errorf("language model provider unavailable: %w", err)
	default:
		return err
	}
}
