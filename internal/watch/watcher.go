// Package watch monitors the source tree and runs the task bound to each
// matching change event.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/sitewright/sitewright/internal/config"
	swerrors "github.com/sitewright/sitewright/internal/errors"
	"github.com/sitewright/sitewright/internal/logfields"
	"github.com/sitewright/sitewright/internal/task"
)

// RunObserver is called after each triggered run. Used by the CLI for
// history/metrics recording and by tests for synchronization.
type RunObserver func(taskName string, report *task.Report, err error)

// Watcher binds file-system change events to task runs. Each matching
// create/write event triggers exactly one run of the bound task; there is
// deliberately no debounce or skip-if-unchanged logic.
type Watcher struct {
	root     string
	bindings []config.Binding
	registry *task.Registry
	observer RunObserver

	fsw *fsnotify.Watcher
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithObserver registers a post-run observer.
func WithObserver(o RunObserver) Option {
	return func(w *Watcher) { w.observer = o }
}

// New creates a watcher over root. Bindings are validated eagerly: a binding
// naming an unregistered task is a configuration error at startup.
func New(root string, bindings []config.Binding, registry *task.Registry, opts ...Option) (*Watcher, error) {
	for _, b := range bindings {
		if _, ok := registry.Lookup(b.Task); !ok {
			return nil, swerrors.ConfigError("watch binding references unregistered task").
				WithContext("task", b.Task).WithContext("glob", b.Glob)
		}
		if !doublestar.ValidatePattern(b.Glob) {
			return nil, swerrors.ConfigError("invalid watch binding glob").WithContext("glob", b.Glob)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, swerrors.Wrap(err, swerrors.CategoryWatch, swerrors.SeverityFatal, "create file watcher")
	}

	w := &Watcher{root: root, bindings: bindings, registry: registry, fsw: fsw}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.addDirsRecursive(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes file-system events until ctx is done. A failed task run is
// logged and the loop keeps handling subsequent events; the next change to a
// source file is the retry mechanism.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fsw.Close() }()

	slog.Info("watching for changes", slog.String("root", w.root), slog.Int("bindings", len(w.bindings)))

	for {
		select {
		case <-ctx.Done():
			slog.Info("watch loop stopped")
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, ev fsnotify.Event) {
	if shouldIgnore(ev.Name) {
		return
	}

	// Newly created directories join the watch set so files below them
	// produce events too.
	if ev.Op.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addDirsRecursive(ev.Name)
			return
		}
	}
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
		return
	}

	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	slog.Debug("change detected", logfields.Path(rel), slog.String("op", ev.Op.String()))

	for _, b := range w.bindings {
		matched, err := doublestar.Match(b.Glob, rel)
		if err != nil || !matched {
			continue
		}
		binding := b
		// One run per change event per matching binding. The run executes off
		// the loop goroutine so a hung action stalls only its own invocation.
		go func() {
			report, err := w.registry.Run(ctx, binding.Task)
			if err != nil {
				slog.Error("watch-triggered run failed",
					logfields.Task(binding.Task), logfields.Path(rel), logfields.Error(err))
			}
			if w.observer != nil {
				w.observer(binding.Task, report, err)
			}
		}()
	}
}

func (w *Watcher) addDirsRecursive(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(filepath.Base(path), ".") && path != root {
				return fs.SkipDir
			}
			if err := w.fsw.Add(path); err != nil {
				slog.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
	if err != nil {
		return swerrors.Wrap(err, swerrors.CategoryWatch, swerrors.SeverityFatal, "watch source tree")
	}
	return nil
}

// shouldIgnore returns true for filesystem events that should not trigger runs.
func shouldIgnore(path string) bool {
	base := filepath.Base(path)

	// Hidden files
	if strings.HasPrefix(base, ".") {
		return true
	}

	// Editor temp/swap files
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}

	if base == "Thumbs.db" {
		return true
	}

	return false
}
