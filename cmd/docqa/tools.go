package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/docqa/internal/gateway"
)

func newToolsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools served by a running gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := gateway.NewHTTPClient(a.cfg.Gateway.URL, gateway.WithTimeout(a.cfg.Gateway.Timeout()))
			ctx := cmd.Context()

			health, err := client.Health(ctx)
			if err != nil {
				return a.userError(err)
			}
			tools, err := client.ListTools(ctx)
			if err != nil {
				return a.userError(err)
			}

			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(gateway.ToolsListResponse{Tools: tools})
			}

			fmt.Fprintf(a.stdout, "Gateway %s: %s, %d documents loaded\n\n", a.cfg.Gateway.URL, health.Status, health.DocumentsLoaded)
			for _, t := range tools {
				params, err := json.MarshalIndent(t.Parameters, "  ", "  ")
				if err != nil {
					return fmt.Errorf("marshal parameters for %s: %w", t.Name, err)
				}
				fmt.Fprintf(a.stdout, "%s\n  %s\n  %s\n", t.Name, t.Description, params)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
