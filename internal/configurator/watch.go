package configurator

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
)

const DefaultWatchDebounce = 500 * time.Millisecond

// Watch reloads store whenever a catalog asset in dir changes, until ctx is
// done. Bursts of events (editors write, rename and chmod on save) collapse
// into one reload after debounce. A failed reload keeps the previous snapshot.
func Watch(ctx context.Context, log *logger.Logger, dir string, store *Store, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	log = log.With("service", "CatalogWatcher")

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create catalog watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory, not the files, so atomic renames are seen.
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	log.Info("Watching catalog directory", "dir", dir)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !isCatalogAsset(ev.Name) || ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			log.Debug("Catalog asset changed", "file", ev.Name, "op", ev.Op.String())
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("Catalog watcher error", "error", err)
		case <-timer.C:
			if _, err := store.Reload(ctx); err != nil {
				log.Warn("Catalog reload after change failed; keeping previous snapshot", "error", err)
			}
		}
	}
}

func isCatalogAsset(name string) bool {
	switch filepath.Base(name) {
	case ProductCatalogAsset, SceneCatalogAsset:
		return true
	}
	return false
}
