package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/declcat/internal/parsers"
	"github.com/mvp-joe/declcat/internal/source"
)

// DefaultConfigName is the compiler configuration file looked up at the root.
const DefaultConfigName = "tsconfig.json"

// Loader builds a source.Project from a directory on disk.
type Loader struct {
	parser        *parsers.Parser
	configName    string
	requireConfig bool
	workers       int
	logger        *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithConfigName overrides the configuration file name, relative to the root.
func WithConfigName(name string) Option {
	return func(l *Loader) {
		if name != "" {
			l.configName = name
		}
	}
}

// WithRequireConfig controls whether a missing configuration file is an
// error. When false, DefaultConfig is used instead.
func WithRequireConfig(required bool) Option {
	return func(l *Loader) {
		l.requireConfig = required
	}
}

// WithWorkers bounds concurrent read and parse. Values below 1 use NumCPU.
func WithWorkers(n int) Option {
	return func(l *Loader) {
		l.workers = n
	}
}

// WithLogger sets the loader's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a Loader that parses with parser.
func NewLoader(parser *parsers.Parser, opts ...Option) *Loader {
	l := &Loader{
		parser:        parser,
		configName:    DefaultConfigName,
		requireConfig: true,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load resolves root's configuration, discovers its source files and parses
// them. Files keep discovery order. Syntax errors are recorded on each
// SourceFile rather than failing the load.
func (l *Loader) Load(ctx context.Context, root string) (*source.Project, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidConfig, root)
	}

	cfg, err := LoadConfig(root, l.configName)
	if err != nil {
		if !errors.Is(err, ErrConfigNotFound) || l.requireConfig {
			return nil, err
		}
		l.logger.Debug("project.config.default", "root", root)
		cfg = DefaultConfig()
	}

	fd, err := newFileDiscovery(root, cfg)
	if err != nil {
		return nil, err
	}
	paths, err := fd.discover()
	if err != nil {
		return nil, err
	}
	l.logger.Debug("project.discovered", "root", root, "config", cfg.Path, "files", len(paths))

	files := make([]*source.SourceFile, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(l.workers))
	for i, relPath := range paths {
		g.Go(func() error {
			src, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(relPath)))
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", relPath, err)
			}
			sf, err := l.parser.ParseFile(gctx, relPath, src)
			if err != nil {
				return err
			}
			files[i] = sf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &source.Project{
		Root:       root,
		ConfigPath: cfg.Path,
		Files:      files,
	}, nil
}

func workerCount(n int) int {
	if n < 1 {
		return runtime.NumCPU()
	}
	return n
}
