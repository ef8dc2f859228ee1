package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/docqa/internal/gateway"
	"github.com/dusk-indust/docqa/internal/orchestrator"
	"github.com/dusk-indust/docqa/internal/pipeline"
	"github.com/dusk-indust/docqa/internal/synthesis"
	"github.com/dusk-indust/docqa/internal/tui"
)

type askOptions struct {
	local  bool
	asJSON bool
	width  int
}

func newAskCmd(a *app) *cobra.Command {
	var opts askOptions

	cmd := &cobra.Command{
		Use:   "ask [question...]",
		Short: "Answer a question from the knowledge base",
		Long: `Ask runs the decision stage, which may call the document_retriever tool,
then the synthesis stage, and prints the cited answer.

Without arguments the question is read interactively (or from stdin when it
is not a terminal). An empty question exits without calling any model.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.ask(cmd.Context(), args, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.local, "local", false, "retrieve in-process instead of calling the gateway")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the answer record as JSON")
	cmd.Flags().IntVar(&opts.width, "width", 0, "answer box width (0 = natural width)")
	return cmd
}

func (a *app) ask(ctx context.Context, args []string, opts askOptions) error {
	question, err := a.readQuestion(args)
	if errors.Is(err, tui.ErrCancelled) || (err == nil && question == "") {
		fmt.Fprintln(a.stdout, "No question entered. Exiting.")
		return nil
	}
	if err != nil {
		return err
	}

	invoker, err := a.invoker(ctx, opts.local)
	if err != nil {
		return err
	}
	completer, err := a.newCompleter(ctx, a.cfg.LLM)
	if err != nil {
		return err
	}

	orchOpts := []orchestrator.Option{
		orchestrator.WithLogger(a.logger),
		orchestrator.WithDefaultTopK(a.cfg.Retrieval.TopK),
	}
	var wg sync.WaitGroup
	if a.verbose && !opts.asJSON {
		pr := orchestrator.NewProgressReporter()
		orchOpts = append(orchOpts, orchestrator.WithProgress(pr))
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ev := range pr.Subscribe() {
				fmt.Fprintln(a.stderr, orchestrator.FormatProgress(ev))
			}
		}()
		defer func() {
			pr.Close()
			wg.Wait()
		}()
	}

	p := pipeline.New(
		orchestrator.New(completer, invoker, orchOpts...),
		synthesis.New(completer, synthesis.WithLogger(a.logger)),
		pipeline.WithLogger(a.logger),
	)

	if !opts.asJSON {
		fmt.Fprintln(a.stdout, tui.RenderQuestion(question))
	}

	answer, err := p.Ask(ctx, question)
	if err != nil {
		return a.userError(err)
	}

	if opts.asJSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	}
	fmt.Fprint(a.stdout, tui.RenderAnswer(answer, opts.width))
	return nil
}

// readQuestion joins args, or prompts when there are none.
func (a *app) readQuestion(args []string) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " ")), nil
	}
	if f, ok := a.stdin.(*os.File); ok && isTerminal(f) {
		return tui.AskQuestion(a.stdin, a.stdout)
	}
	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read question: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// invoker returns the gateway the decision stage calls: in-process with
// --local, otherwise the HTTP gateway at gateway.url.
func (a *app) invoker(ctx context.Context, local bool) (gateway.Invoker, error) {
	if !local {
		return gateway.NewHTTPClient(a.cfg.Gateway.URL, gateway.WithTimeout(a.cfg.Gateway.Timeout())), nil
	}
	c, err := a.loadCorpus(ctx)
	if err != nil {
		return nil, err
	}
	return gateway.New(c, a.newRetriever(), gateway.WithLogger(a.logger)), nil
}
