// Package watch re-runs a callback whenever a snapshot file is replaced or
// rewritten.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 200 * time.Millisecond

// Watcher watches the directory holding Path, since snapshots are replaced by
// rename and a watch on the file itself would be lost on the first save.
type Watcher struct {
	Path     string
	Debounce time.Duration
	OnChange func(ctx context.Context) error
	Log      *slog.Logger
}

// Run blocks until ctx is done or the underlying watcher fails. Bursts of
// events within Debounce collapse into one OnChange call. Callback errors
// are logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	logger := w.Log
	if logger == nil {
		logger = slog.Default()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	target, err := filepath.Abs(w.Path)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch: add %s: %w", filepath.Dir(target), err)
	}
	logger.Info("watching", "path", target)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				timer.Reset(debounce)
			} else if ev.Has(fsnotify.Remove) {
				logger.Warn("snapshot removed", "path", target)
			}

		case <-timer.C:
			if err := w.OnChange(ctx); err != nil {
				logger.Error("rebuild failed", "path", target, "err", err)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		}
	}
}
