// Package mcp exposes the declaration catalog as an MCP tool over stdio.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
)

// MCPServer manages the MCP server lifecycle.
type MCPServer struct {
	analyzer Analyzer
	mcp      *server.MCPServer
	logger   *slog.Logger
}

// NewMCPServer creates an MCP server with the analyze_repository tool registered.
func NewMCPServer(analyzer Analyzer, version string, logger *slog.Logger) (*MCPServer, error) {
	if analyzer == nil {
		return nil, fmt.Errorf("analyzer is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	mcpServer := server.NewMCPServer(
		"declcat",
		version,
		server.WithToolCapabilities(true),
	)

	AddAnalyzeRepositoryTool(mcpServer, analyzer)

	return &MCPServer{
		analyzer: analyzer,
		mcp:      mcpServer,
		logger:   logger,
	}, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *MCPServer) Serve(ctx context.Context) error {
	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// Start MCP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("mcp.start", "transport", "stdio")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-sigCh:
		s.logger.Info("mcp.shutdown")
		cancel()
		return nil
	case err := <-errCh:
		cancel()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
