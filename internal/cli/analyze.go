package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/declcat/internal/catalog"
	"github.com/mvp-joe/declcat/internal/git"
	"github.com/mvp-joe/declcat/internal/parsers"
	"github.com/mvp-joe/declcat/internal/service"
	"github.com/mvp-joe/declcat/internal/watcher"
)

// analyzeOptions holds the analyze command's flags.
type analyzeOptions struct {
	format       string
	out          string
	watch        bool
	onParseError string
	only         []string
	quiet        bool
}

var analyzeOpts analyzeOptions

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <path|url>",
	Short: "Catalog the declarations of a project",
	Long: `Analyze a TypeScript/JavaScript project and print its declaration catalog.

The argument is a local directory or a git URL (https://, ssh://, git@, file://).
Remote repositories are shallow-cloned into a temporary directory that is
removed afterwards.

Examples:
  declcat analyze .
  declcat analyze https://github.com/owner/repo.git --format yaml
  declcat analyze ./web --only reactComponents,arrowFunctions --out catalog.json
  declcat analyze ./web --watch --on-parse-error skip`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVarP(&analyzeOpts.format, "format", "f", FormatJSON, "output format: json or yaml")
	f.StringVarP(&analyzeOpts.out, "out", "o", "", "write the result to a file instead of stdout")
	f.BoolVarP(&analyzeOpts.watch, "watch", "w", false, "re-run when local sources change")
	f.StringVar(&analyzeOpts.onParseError, "on-parse-error", "", "abort or skip malformed files (overrides analysis.on_parse_error)")
	f.StringSliceVar(&analyzeOpts.only, "only", nil, "only fill these declaration lists, e.g. functions,classes")
	f.BoolVarP(&analyzeOpts.quiet, "quiet", "q", false, "suppress progress output")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	locator := args[0]
	opts := analyzeOpts

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.onParseError != "" {
		cfg.Analysis.OnParseError = opts.onParseError
	}
	categories, err := catalog.ParseCategories(opts.only)
	if err != nil {
		return err
	}
	if opts.watch && git.IsRemote(locator) {
		return fmt.Errorf("--watch requires a local directory, got %s", locator)
	}

	logger := newLogger(cfg.Logging, cmd.ErrOrStderr())
	progress := NewCLIProgressReporter(cmd.ErrOrStderr(), opts.quiet)

	svc, err := service.NewFromConfig(cfg, logger, progress)
	if err != nil {
		return err
	}
	defer svc.Close()

	run := func(ctx context.Context) error {
		return analyzeOnce(ctx, svc, locator, categories, opts, cmd.OutOrStdout())
	}

	if !opts.watch {
		return run(cmd.Context())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchAndAnalyze(ctx, locator, cfg.Project.TSConfig, cfg.Analysis.VendorMarker, logger, run)
}

// analyzeOnce runs one analysis and writes the result.
func analyzeOnce(ctx context.Context, svc *service.Service, locator string, categories []catalog.Category, opts analyzeOptions, stdout io.Writer) error {
	result, err := svc.Analyze(ctx, locator)
	if err != nil {
		return err
	}

	filtered := result.Only(categories...)
	if opts.out != "" {
		return writeResultFile(opts.out, filtered, opts.format)
	}
	return writeResult(stdout, filtered, opts.format)
}

// watchAndAnalyze runs once, then again after every batch of changes, until
// ctx is cancelled. Failed runs are logged and watching continues.
func watchAndAnalyze(ctx context.Context, dir, tsconfig, vendorMarker string, logger *slog.Logger, run func(context.Context) error) error {
	if err := run(ctx); err != nil {
		logger.Error("watch.analysis.failed", "err", err)
	}

	w, err := watcher.NewFileWatcher(dir, watcher.Options{
		Extensions: parsers.Extensions(),
		Names:      []string{filepath.Base(tsconfig)},
		SkipDirs:   []string{vendorMarker},
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	defer w.Stop()

	// A pending run covers any batch that arrives while one is queued
	changes := make(chan []string, 1)
	if err := w.Start(ctx, func(files []string) {
		select {
		case changes <- files:
		default:
		}
	}); err != nil {
		return err
	}

	logger.Info("watch.start", "dir", dir)
	for {
		select {
		case <-ctx.Done():
			logger.Info("watch.stop")
			return nil
		case files := <-changes:
			logger.Info("watch.changed", "files", len(files))
			w.Pause()
			if err := run(ctx); err != nil {
				logger.Error("watch.analysis.failed", "err", err)
			}
			w.Resume()
		}
	}
}
