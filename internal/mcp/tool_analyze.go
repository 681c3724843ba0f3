package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/declcat/internal/catalog"
	"github.com/mvp-joe/declcat/internal/git"
	"github.com/mvp-joe/declcat/internal/project"
	"github.com/mvp-joe/declcat/internal/source"
)

// AnalyzeRepositoryToolName is the registered tool name.
const AnalyzeRepositoryToolName = "analyze_repository"

// Analyzer runs one analysis for a repository locator.
type Analyzer interface {
	Analyze(ctx context.Context, locator string) (*catalog.AnalysisResult, error)
}

// AnalyzeRepositoryRequest represents the JSON request schema for the analyze_repository tool.
type AnalyzeRepositoryRequest struct {
	RepoURL    string   `json:"repo_url" jsonschema:"required,description=Git URL or local directory"`
	Categories []string `json:"categories,omitempty" jsonschema:"description=Declaration lists to keep"`
}

// AddAnalyzeRepositoryTool registers the analyze_repository tool with an MCP server.
// This function is composable - it can be combined with other tool registrations.
func AddAnalyzeRepositoryTool(s *server.MCPServer, analyzer Analyzer) {
	names := make([]string, 0, len(catalog.Categories))
	for _, c := range catalog.Categories {
		names = append(names, string(c))
	}

	tool := mcp.NewTool(
		AnalyzeRepositoryToolName,
		mcp.WithDescription(`Catalog the top-level declarations of a TypeScript/JavaScript repository.

Returns one entry per source file (files under node_modules are excluded) with
seven lists: functions, arrowFunctions, reactComponents, classes, interfaces,
enums and typeAliases. Each record holds the declaration name and its verbatim
source text. The repository needs a tsconfig.json at its root.`),
		mcp.WithString("repo_url",
			mcp.Required(),
			mcp.Description("Git URL (https, ssh, git@, file) or local directory path")),
		mcp.WithArray("categories",
			mcp.Description("Only fill these lists: "+strings.Join(names, ", ")+". Default: all")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createAnalyzeRepositoryHandler(analyzer))
}

// createAnalyzeRepositoryHandler creates the handler function for the analyze_repository tool.
func createAnalyzeRepositoryHandler(analyzer Analyzer) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := argumentsMap(request.Params.Arguments)
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		var args AnalyzeRepositoryRequest
		if err := bindArguments(argsMap, &args); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if strings.TrimSpace(args.RepoURL) == "" {
			return mcp.NewToolResultError("repo_url parameter is required"), nil
		}

		categories, err := catalog.ParseCategories(args.Categories)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, err := analyzer.Analyze(ctx, args.RepoURL)
		if err != nil {
			// Problems with the caller's repository are tool errors;
			// anything else is a system error.
			if isUserError(err) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return nil, fmt.Errorf("analysis failed: %w", err)
		}

		filtered := result.Only(categories...)
		jsonData, err := json.Marshal(filtered)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}

		// Return as text result (mcp-go convention)
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

func isUserError(err error) bool {
	return errors.Is(err, git.ErrInvalidLocator) ||
		errors.Is(err, git.ErrCloneFailed) ||
		errors.Is(err, project.ErrConfigNotFound) ||
		errors.Is(err, project.ErrInvalidConfig) ||
		errors.Is(err, source.ErrMalformed)
}
