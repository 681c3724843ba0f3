package cli

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/declcat/internal/catalog"
)

// CLIProgressReporter implements catalog.ProgressReporter with a progress
// bar. Classification runs on several goroutines, so every method locks.
type CLIProgressReporter struct {
	mu        sync.Mutex
	quiet     bool
	out       io.Writer
	fileBar   *progressbar.ProgressBar
	startTime time.Time
	total     int
	done      int
	skipped   []string
}

// NewCLIProgressReporter creates a reporter writing to out.
func NewCLIProgressReporter(out io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet: quiet,
		out:   out,
	}
}

func (c *CLIProgressReporter) OnClassifyStart(totalFiles int) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.startTime = time.Now()
	c.total = totalFiles
	c.done = 0
	c.skipped = nil
	c.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Classifying files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnFileClassified(path string) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.done++
	if c.fileBar != nil {
		c.fileBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnFileSkipped(path string, err error) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.skipped = append(c.skipped, fmt.Sprintf("%s: %v", path, err))
	c.done++
	if c.fileBar != nil {
		c.fileBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnClassifyComplete(summary catalog.Summary) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}

	fmt.Fprintf(c.out, "✓ Classified %s of %s files in %.1fs\n",
		formatNumber(summary.Classified),
		formatNumber(summary.Selected),
		time.Since(c.startTime).Seconds())
	if len(c.skipped) > 0 {
		fmt.Fprintf(c.out, "  Skipped %d malformed files:\n", len(c.skipped))
		for _, s := range c.skipped {
			fmt.Fprintf(c.out, "    %s\n", s)
		}
	}
}

func (c *CLIProgressReporter) OnClassifyFailed(err error) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fileBar == nil {
		return
	}
	_ = c.fileBar.Exit()
	c.fileBar = nil

	// The error itself is printed by the command
	fmt.Fprintf(c.out, "\n✗ Classification stopped after %s of %s files\n",
		formatNumber(c.done), formatNumber(c.total))
}

// formatNumber adds thousands separators (1234567 -> 1,234,567).
func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}

	var out []byte
	pre := len(s) % 3
	if pre > 0 {
		out = append(out, s[:pre]...)
	}
	for i := pre; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
