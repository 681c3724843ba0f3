// Package watcher reports batches of changed project files.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a batch is reported.
const DefaultDebounce = 500 * time.Millisecond

// Options selects which changes a FileWatcher reports.
type Options struct {
	// Extensions to monitor, with leading dot (".ts", ".tsx").
	Extensions []string

	// Names are exact base names to monitor regardless of extension,
	// e.g. "tsconfig.json".
	Names []string

	// SkipDirs are directory base names never watched, e.g. "node_modules".
	// Hidden directories are always skipped.
	SkipDirs []string

	// Debounce is the quiet period before firing. Zero uses DefaultDebounce.
	Debounce time.Duration

	Logger *slog.Logger
}

// fileWatcher implements FileWatcher interface.
type fileWatcher struct {
	watcher       *fsnotify.Watcher
	root          string
	extensions    map[string]bool
	names         map[string]bool
	skipDirs      map[string]bool
	debounceTime  time.Duration        // Quiet period before firing callback
	logger        *slog.Logger
	callback      func(files []string) // Callback to invoke with changed files
	ctx           context.Context
	cancel        context.CancelFunc
	paused        bool         // Whether watching is paused
	pausedMu      sync.RWMutex // Protects paused flag
	accumulated   map[string]bool
	accumulatedMu sync.Mutex // Protects accumulated map
	debounceTimer *time.Timer
	timerMu       sync.Mutex // Protects debounce timer
	stopOnce      sync.Once  // Ensures Stop() is idempotent
	doneCh        chan struct{}
}

// NewFileWatcher creates a watcher over the directory tree at root.
func NewFileWatcher(root string, opts Options) (FileWatcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "watch", Path: root, Err: fs.ErrInvalid}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &fileWatcher{
		watcher:      watcher,
		root:         root,
		extensions:   toSet(opts.Extensions),
		names:        toSet(opts.Names),
		skipDirs:     toSet(opts.SkipDirs),
		debounceTime: opts.Debounce,
		logger:       opts.Logger,
		accumulated:  make(map[string]bool),
		doneCh:       make(chan struct{}),
	}
	if fw.debounceTime <= 0 {
		fw.debounceTime = DefaultDebounce
	}
	if fw.logger == nil {
		fw.logger = slog.Default()
	}

	if err := fw.addDirectoriesRecursively(root); err != nil {
		watcher.Close()
		return nil, err
	}

	return fw, nil
}

// Start begins watching for file changes.
func (fw *fileWatcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return nil
	}

	fw.callback = callback
	fw.ctx, fw.cancel = context.WithCancel(ctx)

	go fw.watch()
	return nil
}

// Stop stops the file watcher.
func (fw *fileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		if fw.cancel != nil {
			fw.cancel()
			// Wait for the event loop (only if Start() was called)
			<-fw.doneCh
		} else {
			close(fw.doneCh)
		}
		err = fw.watcher.Close()
	})
	return err
}

// Pause stops firing callbacks but continues accumulating events.
func (fw *fileWatcher) Pause() {
	fw.pausedMu.Lock()
	defer fw.pausedMu.Unlock()
	fw.paused = true
}

// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
func (fw *fileWatcher) Resume() {
	fw.pausedMu.Lock()
	wasPaused := fw.paused
	fw.paused = false
	fw.pausedMu.Unlock()

	if wasPaused {
		fw.flush()
	}
}

// watch is the main event loop.
func (fw *fileWatcher) watch() {
	defer close(fw.doneCh)

	fireCh := make(chan struct{}, 1)

	for {
		select {
		case <-fw.ctx.Done():
			fw.stopDebounceTimer()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			// New directories are watched too
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !fw.skipDir(event.Name) {
						if err := fw.addDirectoriesRecursively(event.Name); err != nil {
							fw.logger.Warn("watcher.add_dir.failed", "dir", event.Name, "err", err)
						}
					}
					continue
				}
			}

			if !fw.shouldProcessEvent(event) {
				continue
			}

			fw.accumulatedMu.Lock()
			fw.accumulated[event.Name] = true
			fw.accumulatedMu.Unlock()

			fw.resetDebounceTimer(fireCh)

		case <-fireCh:
			fw.pausedMu.RLock()
			paused := fw.paused
			fw.pausedMu.RUnlock()
			// Paused - keep accumulating until Resume
			if !paused {
				fw.flush()
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watcher.error", "err", err)
		}
	}
}

// flush hands accumulated files to the callback, sorted.
func (fw *fileWatcher) flush() {
	fw.accumulatedMu.Lock()
	if len(fw.accumulated) == 0 {
		fw.accumulatedMu.Unlock()
		return
	}
	files := make([]string, 0, len(fw.accumulated))
	for file := range fw.accumulated {
		files = append(files, file)
	}
	fw.accumulated = make(map[string]bool)
	fw.accumulatedMu.Unlock()

	sort.Strings(files)
	if fw.callback != nil {
		fw.callback(files)
	}
}

// resetDebounceTimer restarts the quiet period.
func (fw *fileWatcher) resetDebounceTimer(fireCh chan struct{}) {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}

	fw.debounceTimer = time.AfterFunc(fw.debounceTime, func() {
		select {
		case fireCh <- struct{}{}:
		default:
		}
	})
}

func (fw *fileWatcher) stopDebounceTimer() {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
		fw.debounceTimer = nil
	}
}

// shouldProcessEvent keeps writes, creates, removes and renames of monitored files.
func (fw *fileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if fw.names[filepath.Base(event.Name)] {
		return true
	}
	return fw.extensions[strings.ToLower(filepath.Ext(event.Name))]
}

func (fw *fileWatcher) skipDir(path string) bool {
	if path == fw.root {
		return false
	}
	name := filepath.Base(path)
	return strings.HasPrefix(name, ".") || fw.skipDirs[name]
}

// addDirectoriesRecursively adds every non-skipped directory under rootPath.
func (fw *fileWatcher) addDirectoriesRecursively(rootPath string) error {
	return filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == rootPath {
				return err
			}
			fw.logger.Warn("watcher.walk.failed", "path", path, "err", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if fw.skipDir(path) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			fw.logger.Warn("watcher.add_dir.failed", "dir", path, "err", err)
		}
		return nil
	})
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
