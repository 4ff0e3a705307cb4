// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a command when matching files change. Filesystem
// events inside the debounce window coalesce into a single callback, so an
// editor's write-then-rename dance triggers one re-run, not three.
package watch

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is the quiet period after the last event before the
// callback fires.
const defaultDebounce = 400 * time.Millisecond

// defaultIgnores excludes VCS metadata, dependency caches, and build output
// that would otherwise re-trigger the very command the watcher just ran.
var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/target/**",
	"**/dist/**",
	"**/.dev/**",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
}

type (
	// Config parameterizes a Watcher.
	Config struct {
		// Root is the directory tree to watch.
		Root string
		// Patterns select which changed files trigger the callback
		// (doublestar globs relative to Root). Empty matches everything
		// not ignored.
		Patterns []string
		// Ignore adds globs to the built-in ignore set.
		Ignore []string
		// Debounce overrides the default quiet period when positive.
		Debounce time.Duration
		// OnChange runs after the debounce window with the deduplicated
		// changed paths, relative to Root.
		OnChange func(ctx context.Context, changed []string) error
		// Logger receives watcher diagnostics. Nil means the default.
		Logger *log.Logger
	}

	// Watcher monitors a directory tree and fires debounced callbacks.
	// Run may be called once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		ignores  []string
		root     string
		debounce time.Duration
		logger   *log.Logger
		started  atomic.Bool
	}
)

// New builds a watcher over cfg.Root and registers every non-ignored
// directory beneath it.
func New(cfg Config) (*Watcher, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve watch root: %w", err)
	}

	for _, pattern := range append(append([]string{}, cfg.Patterns...), cfg.Ignore...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid watch pattern %q", pattern)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		ignores:  append(append([]string{}, defaultIgnores...), cfg.Ignore...),
		root:     root,
		debounce: debounce,
		logger:   logger,
	}

	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run blocks until ctx is cancelled, dispatching debounced callbacks as
// matching files change.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return fmt.Errorf("watcher already running")
	}
	defer w.fsw.Close()

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		busy    atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		// A run slower than the debounce window must not overlap the
		// next; reschedule instead so pending changes are not lost.
		if !busy.CompareAndSwap(false, true) {
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer busy.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		if w.cfg.OnChange == nil {
			return
		}
		if err := w.cfg.OnChange(ctx, changed); err != nil {
			w.logger.Error("watch callback failed", "err", err)
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watch event channel closed")
			}

			rel, err := filepath.Rel(w.root, event.Name)
			if err != nil {
				rel = event.Name
			}
			if w.ignored(rel) || !w.matches(rel) {
				continue
			}

			// Directories created after startup join the watch set.
			if event.Has(fsnotify.Create) {
				w.maybeAddDir(event.Name)
			}

			mu.Lock()
			pending[filepath.ToSlash(rel)] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watch error channel closed")
			}
			w.logger.Warn("watch error", "err", err)
		}
	}
}

// addTree registers every non-ignored directory under dir.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.logger.Debug("skipping unreadable path", "path", path, "err", walkErr)
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return nil
		}
		if rel != "." && w.ignored(rel) {
			return filepath.SkipDir
		}

		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil || w.ignored(rel) {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		w.logger.Debug("cannot watch new directory", "path", path, "err", err)
	}
}

func (w *Watcher) ignored(rel string) bool {
	return matchAny(w.ignores, rel) || matchAny(w.ignores, rel+"/")
}

func (w *Watcher) matches(rel string) bool {
	if len(w.cfg.Patterns) == 0 {
		return true
	}
	return matchAny(w.cfg.Patterns, rel)
}

func matchAny(patterns []string, rel string) bool {
	normalized := filepath.ToSlash(rel)
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, normalized); err == nil && ok {
			return true
		}
	}
	return false
}
