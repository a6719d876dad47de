package engine

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/opmodel/projgen/internal/output"
)

// Watch invalidates cache entries whose files change on disk. It watches
// dirs, or the directories of the currently cached templates when dirs is
// empty, and blocks until ctx is done.
func (e *Engine) Watch(ctx context.Context, dirs ...string) error {
	if len(dirs) == 0 {
		seen := map[string]bool{}
		for _, k := range e.CacheStats().Keys {
			if d := filepath.Dir(k); !seen[d] {
				seen[d] = true
				dirs = append(dirs, d)
			}
		}
	}
	if len(dirs) == 0 {
		return fmt.Errorf("nothing to watch")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	// Directories rather than files so editors' rename-over saves are seen.
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("watching %s: %w", d, err)
		}
	}
	output.Debug("watching template directories", "dirs", dirs)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if e.Invalidate(ev.Name) {
				output.Info("template changed, cache entry dropped", "path", ev.Name)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			output.Warn("template watcher error", "err", err)
		}
	}
}
