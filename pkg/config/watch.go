package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	sserr "github.com/StricklySoft/stricklysoft-reliability/pkg/errors"
)

// DefaultDebounce is the quiet period after a file change before the
// reload callback runs. Editors and deploy tooling often produce several
// filesystem events per save; the debounce collapses them into one reload.
const DefaultDebounce = 2 * time.Second

// ReloadFunc is called after the watched file changes and the debounce
// window has elapsed. Implementations typically re-run a [Loader] against
// the changed file and apply the result. A returned error is logged and
// the watcher keeps running; the next file change triggers another
// reload attempt.
type ReloadFunc func() error

// Watcher monitors a configuration file for changes and invokes a
// [ReloadFunc] after changes settle. It is designed for hot-reloading
// long-running processes without a restart:
//
//	w, err := config.NewWatcher("config.yaml", func() error {
//	    var next AppConfig
//	    if err := config.New().WithFile("config.yaml").Load(&next); err != nil {
//	        return err
//	    }
//	    return apply(next)
//	})
//	if err != nil {
//	    return err
//	}
//	if err := w.Start(ctx); err != nil {
//	    return err
//	}
//	defer w.Close()
//
// The reload callback runs on the watcher's timer goroutine; it must not
// block indefinitely.
type Watcher struct {
	path     string
	reload   ReloadFunc
	debounce time.Duration
	logger   *slog.Logger

	fsw      *fsnotify.Watcher
	reloadCh chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// WatcherOption customizes a [Watcher] created by [NewWatcher].
type WatcherOption func(*Watcher)

// WithDebounce overrides the quiet period before a reload runs. Values
// at or below zero are ignored.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatchLogger sets the logger used for watch and reload events.
// Defaults to [slog.Default].
func WithWatchLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher creates a Watcher for the given file path. The reload
// callback is invoked after the file changes and [DefaultDebounce] (or
// the [WithDebounce] override) has elapsed without further changes.
// Call [Watcher.Start] to begin watching.
func NewWatcher(path string, reload ReloadFunc, opts ...WatcherOption) (*Watcher, error) {
	if path == "" {
		return nil, sserr.Configuration("config: watch path is required")
	}
	if reload == nil {
		return nil, sserr.Configuration("config: reload function is required")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, sserr.Wrap(err, sserr.CategoryConfiguration,
			"config: failed to create file watcher")
	}

	w := &Watcher{
		path:     path,
		reload:   reload,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		fsw:      fsw,
		reloadCh: make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Start begins watching the file and returns immediately. Watching stops
// when ctx is cancelled or [Watcher.Close] is called. Start must be
// called at most once.
func (w *Watcher) Start(ctx context.Context) error {
	// Watch the directory rather than the file itself. Atomic replaces
	// (write to temp, rename over) drop inotify watches on the file but
	// not on its directory.
	dir := filepath.Dir(w.path)
	if err := w.fsw.Add(dir); err != nil {
		return sserr.Wrapf(err, sserr.CategoryConfiguration,
			"config: failed to watch directory %q", dir)
	}

	w.wg.Add(2)
	go w.watchLoop(ctx)
	go w.reloadLoop(ctx)

	w.logger.Info("config: watching file for changes",
		"path", w.path,
		"debounce", w.debounce)

	return nil
}

// Close stops watching and releases filesystem resources. It is safe to
// call multiple times and safe to call without a prior Start.
func (w *Watcher) Close() error {
	w.stopOnce.Do(func() { close(w.stopCh) })
	err := w.fsw.Close()
	w.wg.Wait()

	if err != nil {
		return sserr.Wrap(err, sserr.CategoryServerError,
			"config: failed to close file watcher")
	}
	return nil
}

// watchLoop consumes filesystem events, filters them down to the watched
// file, and requests reloads. Events for sibling files in the same
// directory are ignored.
func (w *Watcher) watchLoop(ctx context.Context) {
	defer w.wg.Done()

	base := filepath.Base(w.path)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			switch {
			case event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename):
				w.triggerReload()
			case event.Has(fsnotify.Remove):
				w.logger.Warn("config: watched file removed", "path", w.path)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("config: file watcher error", "error", err)
		}
	}
}

// triggerReload requests a reload without blocking. The channel holds a
// single pending request, so bursts of filesystem events collapse into
// one reload.
func (w *Watcher) triggerReload() {
	select {
	case w.reloadCh <- struct{}{}:
	default:
	}
}

// reloadLoop debounces reload requests. Each request resets the timer, so
// the callback runs once after writes settle rather than once per event.
func (w *Watcher) reloadLoop(ctx context.Context) {
	defer w.wg.Done()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-w.reloadCh:
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.performReload)
		}
	}
}

// performReload runs the reload callback and logs the outcome. Errors do
// not stop the watcher.
func (w *Watcher) performReload() {
	w.logger.Info("config: reloading after file change", "path", w.path)

	if err := w.reload(); err != nil {
		w.logger.Error("config: reload failed",
			"path", w.path,
			"error", err)
		return
	}

	w.logger.Info("config: reload applied", "path", w.path)
}
