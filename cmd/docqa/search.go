package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/docqa/internal/tui"
)

func newSearchCmd(a *app) *cobra.Command {
	var (
		topK   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Score the knowledge base against a query without calling a model",
		Long: `Search chunks every document and prints the positively scored chunks in
rank order, the same ranking the document_retriever tool uses.

Examples:
  docqa search fraud explainability
  docqa search "quarterly budget" --top-k 10 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			c, err := a.loadCorpus(cmd.Context())
			if err != nil {
				return err
			}

			k := a.cfg.Retrieval.TopK
			if topK > 0 {
				k = topK
			}
			scored := a.newRetriever().Score(query, c)
			if len(scored) > k {
				scored = scored[:k]
			}

			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(scored)
			}
			fmt.Fprintf(a.stdout, "%d documents searched\n", c.Len())
			fmt.Fprint(a.stdout, tui.RenderScored(query, scored))
			return nil
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of results (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
