package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/declcat/internal/mcp"
	"github.com/mvp-joe/declcat/internal/service"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server exposing the analyze_repository tool",
	Long: `Start the Model Context Protocol (MCP) server so coding assistants can
catalog the declarations of a repository.

The MCP server:
- Provides the analyze_repository tool (repo_url, optional categories)
- Clones remote repositories into a temporary directory per call
- Communicates via stdio (standard MCP transport)

Example:
  declcat mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// stdout carries the protocol, so logs go to stderr
	logger := newLogger(cfg.Logging, os.Stderr)

	fmt.Fprintf(os.Stderr, "declcat MCP Server %s\n\n", Version)

	svc, err := service.NewFromConfig(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer svc.Close()

	server, err := mcp.NewMCPServer(svc, Version, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	// Serve (blocks until shutdown)
	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
