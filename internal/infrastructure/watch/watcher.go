// Package watch reloads shared state when adoready files change on
// disk, so a scan run from the CLI shows up in a running API server.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// CacheWatcher fires a callback when the scan cache file changes. The
// API server uses it to pick up scans written by the CLI while the
// server is running.
type CacheWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onChange func()
	logger   *zap.Logger
}

// NewCacheWatcher creates a watcher for the given cache file path.
func NewCacheWatcher(cachePath string, debounce time.Duration, onChange func(), logger *zap.Logger) (*CacheWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if debounce == 0 {
		debounce = 250 * time.Millisecond
	}
	return &CacheWatcher{
		watcher:  w,
		path:     filepath.Clean(cachePath),
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}, nil
}

// Run blocks until the context is cancelled. It watches the directory
// containing the cache file rather than the file itself, which
// survives the remove-and-recreate dance atomic writers do. A write
// burst is coalesced through the settle timer: each relevant event
// re-arms it, and the callback runs once the file has been quiet for
// the debounce window.
func (w *CacheWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	settle := time.NewTimer(w.debounce)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-settle.C:
			w.onChange()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}

			w.logger.Debug("scan cache changed", zap.String("op", event.Op.String()))
			settle.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}
