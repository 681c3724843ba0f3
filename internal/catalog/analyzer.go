package catalog

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/declcat/internal/source"
)

// Analyzer runs Select, Classify and Assemble over a project. Classification
// of different files shares no state, so it is spread over a worker pool and
// collected by index to keep selector order.
type Analyzer struct {
	selector Selector
	workers  int
	policy   Policy
	progress ProgressReporter
	logger   *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithVendorMarker sets the path substring that excludes a file.
func WithVendorMarker(marker string) Option {
	return func(a *Analyzer) {
		a.selector = NewSelector(marker)
	}
}

// WithWorkers bounds classification concurrency. Values below 1 use NumCPU.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithPolicy sets how malformed files are handled.
func WithPolicy(p Policy) Option {
	return func(a *Analyzer) {
		a.policy = p
	}
}

// WithProgress attaches a progress reporter.
func WithProgress(r ProgressReporter) Option {
	return func(a *Analyzer) {
		if r != nil {
			a.progress = r
		}
	}
}

// WithLogger sets the logger used for skipped files.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAnalyzer creates an Analyzer. Defaults: node_modules marker, NumCPU
// workers, abort policy.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		selector: NewSelector(DefaultVendorMarker),
		policy:   PolicyAbort,
		progress: NoOpProgressReporter{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze builds the inventory of a project. Under PolicyAbort the first
// malformed file fails the analysis and no result is returned; under
// PolicySkip malformed files are logged and left out.
func (a *Analyzer) Analyze(ctx context.Context, p *source.Project) (*AnalysisResult, error) {
	files := a.selector.Select(p)
	a.progress.OnClassifyStart(len(files))

	results := make([]*FileAnalysis, len(files))
	failures := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workerCount(len(files)))
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			fa, err := Classify(f)
			if err != nil {
				if a.policy != PolicySkip {
					return err
				}
				failures[i] = err
				a.progress.OnFileSkipped(f.Path, err)
				return nil
			}

			results[i] = &fa
			a.progress.OnFileClassified(f.Path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.progress.OnClassifyFailed(err)
		return nil, err
	}

	summary := Summary{Selected: len(files)}
	classified := make([]FileAnalysis, 0, len(files))
	for i, fa := range results {
		if fa == nil {
			summary.Skipped = append(summary.Skipped, files[i].Path)
			a.logger.Warn("analysis.file.skipped", "path", files[i].Path, "err", failures[i])
			continue
		}
		classified = append(classified, *fa)
	}
	summary.Classified = len(classified)
	a.progress.OnClassifyComplete(summary)

	result := Assemble(classified)
	return &result, nil
}

func (a *Analyzer) workerCount(files int) int {
	n := a.workers
	if n < 1 {
		n = runtime.NumCPU()
	}
	if n > files {
		n = files
	}
	if n < 1 {
		n = 1
	}
	return n
}
