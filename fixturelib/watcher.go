package fixturelib

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher reloads a Library when its profile directory changes on disk.
// Changes are debounced so an editor save or a git checkout triggers one
// reload, not one per file.
type Watcher struct {
	lib      *Library
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	pendingMu sync.Mutex
	pending   bool

	// reloads receives one value per completed reload. Buffered so slow
	// consumers never stall the watch loop.
	reloads chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce overrides the debounce interval.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// NewWatcher creates a watcher for the library's directory.
func NewWatcher(lib *Library, logger *slog.Logger, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	w := &Watcher{
		lib:      lib,
		watcher:  fsw,
		logger:   logger,
		debounce: defaultDebounce,
		reloads:  make(chan struct{}, 8),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Reloads returns a channel receiving a value after each completed reload.
func (w *Watcher) Reloads() <-chan struct{} {
	return w.reloads
}

// Start begins watching. The watch loop runs until ctx is cancelled or the
// watcher is stopped.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(w.lib.Dir()); err != nil {
		return err
	}

	go w.run(ctx)

	w.logger.Info("Fixture library watcher started",
		"dir", w.lib.Dir(),
		"debounce", w.debounce)
	return nil
}

// Stop closes the underlying filesystem watcher. The reloads channel is
// closed by the watch loop when it exits.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if strings.HasPrefix(base, ".") && path != root {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.reloads)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Fixture library watch error", "error", err)

		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				w.logger.Warn("Failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}

	if !strings.EqualFold(filepath.Ext(event.Name), ".json") {
		return
	}

	w.pendingMu.Lock()
	w.pending = true
	w.pendingMu.Unlock()
	w.logger.Debug("Fixture profile change detected", "path", event.Name, "op", event.Op.String())
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	dirty := w.pending
	w.pending = false
	w.pendingMu.Unlock()
	if !dirty {
		return
	}

	if err := w.lib.Reload(); err != nil {
		w.logger.Error("Fixture library reload failed", "error", err)
		return
	}

	select {
	case w.reloads <- struct{}{}:
	default:
	}
}
