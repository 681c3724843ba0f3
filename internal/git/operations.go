package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidLocator indicates a locator that is neither a remote URL nor
	// an existing local directory.
	ErrInvalidLocator = errors.New("invalid repository locator")

	// ErrCloneFailed indicates the repository could not be cloned.
	ErrCloneFailed = errors.New("failed to clone repository")
)

// remotePrefixes are the locator forms handed to git clone.
var remotePrefixes = []string{"https://", "http://", "ssh://", "git@", "file://"}

// Workspace is a directory holding a repository's files for the duration of
// one analysis. Release must be called once the caller is done with Dir.
type Workspace struct {
	// Dir is the repository root on local disk.
	Dir string

	// Locator is what the workspace was acquired from.
	Locator string

	// Remote reports whether Dir is a temporary clone.
	Remote bool

	release func() error
}

// Release frees the workspace. Temporary clones are removed; local
// directories are left untouched. Calling Release more than once is safe.
func (w *Workspace) Release() error {
	if w.release == nil {
		return nil
	}
	release := w.release
	w.release = nil
	return release()
}

// Acquirer turns a repository locator into a Workspace.
// This allows mocking git commands in tests.
type Acquirer interface {
	// Acquire makes the repository available on disk.
	// Returns ErrInvalidLocator or ErrCloneFailed on failure.
	Acquire(ctx context.Context, locator string) (*Workspace, error)
}

// Options configures the clone-based Acquirer.
type Options struct {
	// Binary is the git executable. Defaults to "git".
	Binary string

	// Depth is passed as --depth. Zero clones the full history.
	Depth int

	// Timeout bounds a single clone. Zero means no timeout.
	Timeout time.Duration

	// TempDir is the parent of clone directories. Empty uses os.TempDir.
	TempDir string

	// AllowLocal accepts local directories and file:// URLs. When false only
	// network remotes are cloned and everything else is ErrInvalidLocator.
	AllowLocal bool
}

// cloneAcquirer is the real implementation using exec.Command.
type cloneAcquirer struct {
	opts Options
}

// NewAcquirer returns the default Acquirer: remote locators are shallow
// cloned, local directories are used in place when opts.AllowLocal is set.
func NewAcquirer(opts Options) Acquirer {
	if opts.Binary == "" {
		opts.Binary = "git"
	}
	return &cloneAcquirer{opts: opts}
}

// IsRemote reports whether locator names a repository git must clone.
func IsRemote(locator string) bool {
	for _, prefix := range remotePrefixes {
		if strings.HasPrefix(locator, prefix) {
			return true
		}
	}
	return false
}

// IsLocal reports whether locator reads from the machine running the
// analysis: a filesystem path or a file:// URL.
func IsLocal(locator string) bool {
	return !IsRemote(locator) || strings.HasPrefix(locator, "file://")
}

func (a *cloneAcquirer) Acquire(ctx context.Context, locator string) (*Workspace, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return nil, fmt.Errorf("%w: empty locator", ErrInvalidLocator)
	}

	if !a.opts.AllowLocal && IsLocal(locator) {
		return nil, fmt.Errorf("%w: local paths are not accepted: %s", ErrInvalidLocator, locator)
	}
	if !IsRemote(locator) {
		return localWorkspace(locator)
	}

	dir, err := os.MkdirTemp(a.opts.TempDir, "repo-")
	if err != nil {
		return nil, fmt.Errorf("failed to create clone directory: %w", err)
	}

	if err := a.clone(ctx, locator, dir); err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}

	return &Workspace{
		Dir:     dir,
		Locator: locator,
		Remote:  true,
		release: func() error {
			return os.RemoveAll(dir)
		},
	}, nil
}

func (a *cloneAcquirer) clone(ctx context.Context, locator, dir string) error {
	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	args := []string{"clone", "--quiet"}
	if a.opts.Depth > 0 {
		args = append(args, "--depth", strconv.Itoa(a.opts.Depth))
	}
	args = append(args, "--", locator, dir)

	cmd := exec.CommandContext(ctx, a.opts.Binary, args...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %s: %w", ErrCloneFailed, locator, ctxErr)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("%w: %s: %s", ErrCloneFailed, locator, msg)
	}
	return nil
}

func localWorkspace(locator string) (*Workspace, error) {
	dir, err := filepath.Abs(locator)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLocator, err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory or remote URL", ErrInvalidLocator, locator)
	}
	return &Workspace{Dir: dir, Locator: locator}, nil
}

// WithWorkspace acquires locator, runs fn and releases the workspace on
// every exit path. A release failure is reported only if fn succeeded.
func WithWorkspace(ctx context.Context, acq Acquirer, locator string, fn func(*Workspace) error) (err error) {
	ws, err := acq.Acquire(ctx, locator)
	if err != nil {
		return err
	}
	defer func() {
		if relErr := ws.Release(); relErr != nil && err == nil {
			err = fmt.Errorf("failed to release workspace: %w", relErr)
		}
	}()
	return fn(ws)
}
