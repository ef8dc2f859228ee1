package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/docqa/internal/gateway"
	"github.com/dusk-indust/docqa/internal/mcptools"
)

func newServeCmd(a *app) *cobra.Command {
	var stdio bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the knowledge base and serve the document_retriever tool",
		Long: `Serve loads every matching file under the knowledge base directory and
exposes the document_retriever tool over HTTP (/tools, /tools/invoke, /health,
mirrored under /mcp/v1) and over the Model Context Protocol at /mcp.

With --stdio the MCP server runs on stdin/stdout instead of HTTP.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, stdio)
		},
	}
	cmd.Flags().BoolVar(&stdio, "stdio", false, "serve MCP over stdio instead of HTTP")
	return cmd
}

func (a *app) serve(ctx context.Context, stdio bool) error {
	c, err := a.loadCorpus(ctx)
	if err != nil {
		return err
	}

	gw := gateway.New(c, a.newRetriever(), gateway.WithLogger(a.logger))
	mcpServer := mcptools.NewRetrieverMCPServer(mcptools.NewRetrieverService(gw))

	if stdio {
		a.logger.Info("Serving MCP over stdio", slog.Int("documents_loaded", c.Len()))
		return mcptools.RunStdio(ctx, mcpServer)
	}

	if !a.verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := gateway.NewServer(gw,
		gateway.WithServerLogger(a.logger),
		gateway.WithMCPHandler(mcptools.NewHTTPHandler(mcpServer)),
	)

	addr := a.cfg.Server.Addr()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("Tool gateway listening",
			slog.String("addr", addr),
			slog.Int("documents_loaded", c.Len()),
		)
		return srv.ListenAndServe(gctx, addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Shutting down tool gateway")
		return nil
	})
	return g.Wait()
}
