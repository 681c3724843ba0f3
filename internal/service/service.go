// Package service wires acquisition, project loading and the declaration
// catalog into one operation shared by the CLI, HTTP and MCP surfaces.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mvp-joe/declcat/internal/catalog"
	"github.com/mvp-joe/declcat/internal/config"
	"github.com/mvp-joe/declcat/internal/git"
	"github.com/mvp-joe/declcat/internal/parsers"
	"github.com/mvp-joe/declcat/internal/project"
	"github.com/mvp-joe/declcat/internal/source"
)

// ProjectLoader builds a parsed project from a directory.
type ProjectLoader interface {
	Load(ctx context.Context, root string) (*source.Project, error)
}

// Service runs analyses. It is safe for concurrent use.
type Service struct {
	acquirer git.Acquirer
	loader   ProjectLoader
	analyzer *catalog.Analyzer
	cache    *parsers.Cache
	logger   *slog.Logger
}

// New creates a Service from its parts. cache may be nil; when set, Close
// releases it.
func New(acquirer git.Acquirer, loader ProjectLoader, analyzer *catalog.Analyzer, cache *parsers.Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		acquirer: acquirer,
		loader:   loader,
		analyzer: analyzer,
		cache:    cache,
		logger:   logger,
	}
}

// NewFromConfig builds the production Service: a git acquirer, a cached
// parser and a loader and analyzer configured from cfg.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, progress catalog.ProgressReporter) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	policy, err := catalog.ParsePolicy(cfg.Analysis.OnParseError)
	if err != nil {
		return nil, err
	}

	var parserOpts []parsers.Option
	var cache *parsers.Cache
	if cfg.Project.CacheSize > 0 {
		cache, err = parsers.NewCache(cfg.Project.CacheSize)
		if err != nil {
			return nil, err
		}
		parserOpts = append(parserOpts, parsers.WithCache(cache))
	}

	loader := project.NewLoader(parsers.NewParser(parserOpts...),
		project.WithConfigName(cfg.Project.TSConfig),
		project.WithRequireConfig(cfg.Project.RequireTSConfig),
		project.WithWorkers(cfg.Analysis.Workers),
		project.WithLogger(logger),
	)

	analyzer := catalog.NewAnalyzer(
		catalog.WithVendorMarker(cfg.Analysis.VendorMarker),
		catalog.WithWorkers(cfg.Analysis.Workers),
		catalog.WithPolicy(policy),
		catalog.WithProgress(progress),
		catalog.WithLogger(logger),
	)

	acquirer := git.NewAcquirer(git.Options{
		Binary:     cfg.Git.Binary,
		Depth:      cfg.Git.Depth,
		Timeout:    cfg.Git.Timeout,
		TempDir:    cfg.Git.TempDir,
		AllowLocal: cfg.Git.AllowLocal,
	})

	return New(acquirer, loader, analyzer, cache, logger), nil
}

// Analyze acquires the repository behind locator, loads it as a project and
// returns its declaration inventory. The workspace is released before
// Analyze returns, whatever the outcome.
func (s *Service) Analyze(ctx context.Context, locator string) (*catalog.AnalysisResult, error) {
	id := uuid.NewString()
	logger := s.logger.With("analysis_id", id, "locator", locator)
	start := time.Now()
	logger.Info("analysis.start")

	var result *catalog.AnalysisResult
	err := git.WithWorkspace(ctx, s.acquirer, locator, func(ws *git.Workspace) error {
		logger.Debug("analysis.workspace", "dir", ws.Dir, "remote", ws.Remote)

		p, err := s.loader.Load(ctx, ws.Dir)
		if err != nil {
			return err
		}
		logger.Debug("analysis.project.loaded", "files", len(p.Files))

		result, err = s.analyzer.Analyze(ctx, p)
		return err
	})
	if err != nil {
		logger.Error("analysis.failed", "err", err, "duration", time.Since(start))
		return nil, fmt.Errorf("analysis of %s failed: %w", locator, err)
	}

	logger.Info("analysis.done", "files", len(result.Files), "duration", time.Since(start))
	return result, nil
}

// CacheStats reports parse cache counters; ok is false without a cache.
func (s *Service) CacheStats() (stats parsers.CacheStats, ok bool) {
	if s.cache == nil {
		return parsers.CacheStats{}, false
	}
	return s.cache.Stats(), true
}

// Close releases the parse cache.
func (s *Service) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}
