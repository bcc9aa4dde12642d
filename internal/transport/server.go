// Package transport binds the tool registry and prompt catalog to the
// mcp-go protocol runtime and serves it over stdio or streamable HTTP.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/net/netutil"

	"github.com/local-mcps/devtools-mcp/config"
	"github.com/local-mcps/devtools-mcp/internal/common"
	"github.com/local-mcps/devtools-mcp/internal/prompts"
	"github.com/local-mcps/devtools-mcp/pkg/mcp"
)

const (
	HTTPEndpoint    = "/mcp"
	shutdownTimeout = 5 * time.Second
)

type Server struct {
	mcpServer *server.MCPServer
	logger    *common.Logger
}

func NewServer(info config.ServerConfig, registry *mcp.Registry, catalog *prompts.Catalog, logger *common.Logger) *Server {
	s := server.NewMCPServer(
		info.Name,
		info.Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
		server.WithRecovery(),
	)

	for _, tool := range registry.Tools() {
		s.AddTool(toMCPTool(tool), toolHandler(registry, tool.Name))
	}
	for _, res := range registry.Resources() {
		s.AddResource(toMCPResource(res), resourceHandler(registry, res))
	}
	for _, p := range catalog.List() {
		s.AddPrompt(mcpgo.NewPrompt(p.Name, mcpgo.WithPromptDescription(p.Description)), promptHandler(catalog, p.Name))
	}

	return &Server{
		mcpServer: s,
		logger:    logger.WithField("component", "transport"),
	}
}

func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Serve blocks until ctx is cancelled or the transport fails.
func (s *Server) Serve(ctx context.Context, cfg config.TransportConfig, stdin io.Reader, stdout io.Writer) error {
	switch cfg.Mode {
	case "http":
		ln, err := net.Listen("tcp", cfg.HTTPAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.HTTPAddr, err)
		}
		return s.ServeHTTP(ctx, netutil.LimitListener(ln, cfg.HTTPMaxConnections))
	default:
		return s.ServeStdio(ctx, stdin, stdout)
	}
}

func (s *Server) ServeStdio(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(s.logger.StandardLog())

	s.logger.Info("serving over stdio")
	err := stdio.Listen(ctx, stdin, stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio transport: %w", err)
	}
	return nil
}

// ServeHTTP serves the streamable HTTP transport at HTTPEndpoint on ln
// and shuts down gracefully when ctx is cancelled.
func (s *Server) ServeHTTP(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle(HTTPEndpoint, server.NewStreamableHTTPServer(s.mcpServer))

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          s.logger.StandardLog(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("http shutdown", "error", err)
		}
	}()

	s.logger.Info("serving over streamable http", "addr", ln.Addr().String(), "endpoint", HTTPEndpoint)
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http transport: %w", err)
	}
	return nil
}
