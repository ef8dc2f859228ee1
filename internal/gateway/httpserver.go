package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// legacyPrefix mirrors the tool routes under the MCP-style path.
const legacyPrefix = "/mcp/v1"

// Server is the HTTP front end of a Gateway.
type Server struct {
	gw     *Gateway
	mcp    http.Handler
	logger *slog.Logger
	engine *gin.Engine
	http   *http.Server
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithMCPHandler mounts an MCP streamable-HTTP handler at /mcp.
func WithMCPHandler(h http.Handler) ServerOption {
	return func(s *Server) {
		s.mcp = h
	}
}

// WithServerLogger sets the access logger.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server for gw and registers its routes.
func NewServer(gw *Gateway, opts ...ServerOption) *Server {
	s := &Server{
		gw:     gw,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), s.accessLog())

	for _, prefix := range []string{"", legacyPrefix} {
		grp := r.Group(prefix)
		grp.GET("/tools", s.handleListTools)
		grp.POST("/tools/invoke", s.handleInvoke)
	}
	r.GET("/health", s.handleHealth)
	if s.mcp != nil {
		r.Any("/mcp", gin.WrapH(s.mcp))
	}

	s.engine = r
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.http.Shutdown(shutdownCtx)
	}()

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleListTools serves the schema of every registered tool.
func (s *Server) handleListTools(c *gin.Context) {
	c.JSON(http.StatusOK, ToolsListResponse{Tools: s.gw.ListTools()})
}

// handleHealth reports liveness and corpus size.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", DocumentsLoaded: s.gw.DocumentsLoaded()})
}

// handleInvoke decodes an InvocationRequest and dispatches it. Numbers in
// parameters are decoded as json.Number so integers stay exact. A missing
// tool_name is a 422; a present but unknown one, empty included, is a 404.
func (s *Server) handleInvoke(c *gin.Context) {
	var body struct {
		ToolName   *string        `json:"tool_name"`
		Parameters map[string]any `json:"parameters"`
	}
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "invalid request body: " + err.Error()})
		return
	}
	if body.ToolName == nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Detail: "field 'tool_name' is required"})
		return
	}
	req := InvocationRequest{ToolName: *body.ToolName, Parameters: body.Parameters}

	resp, err := s.gw.Invoke(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusForError(err), ErrorResponse{Detail: err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// statusForError maps gateway errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrToolNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidParameters):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// requestID assigns a UUID to requests that arrive without one and echoes it
// in the response.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("request_id", c.GetString("request_id")),
		)
	}
}
