package catalogfile

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/alchemorsel/mealcart/internal/ports/outbound"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher reloads a catalog file into a CatalogWriter whenever it changes.
// A file that fails to parse or validate is logged and the previous
// catalog stays in place.
type Watcher struct {
	path     string
	writer   outbound.CatalogWriter
	debounce time.Duration
	logger   *zap.Logger

	// reloaded is signalled after every reload attempt; tests hook it
	reloaded func(err error)
}

// NewWatcher creates a watcher for path
func NewWatcher(path string, writer outbound.CatalogWriter, debounce time.Duration, logger *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{
		path:     filepath.Clean(path),
		writer:   writer,
		debounce: debounce,
		logger:   logger.Named("catalog-file"),
	}
}

// Sync loads the file once and replaces the catalog
func (w *Watcher) Sync(ctx context.Context) error {
	dishes, err := LoadFile(w.path)
	if err != nil {
		return err
	}
	if err := w.writer.Replace(ctx, dishes); err != nil {
		return fmt.Errorf("failed to replace catalog: %w", err)
	}

	w.logger.Info("Catalog loaded",
		zap.String("path", w.path),
		zap.Int("dishes", len(dishes)),
	)
	return nil
}

// Run watches the file's directory until ctx is cancelled. The directory is
// watched rather than the file so editors that save by rename are followed.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch catalog directory: %w", err)
	}

	w.logger.Info("Watching catalog file", zap.String("path", w.path))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", zap.Error(err))

		case <-timer.C:
			err := w.Sync(ctx)
			if err != nil {
				w.logger.Warn("Catalog reload rejected, keeping previous catalog",
					zap.String("path", w.path),
					zap.Error(err),
				)
			}
			if w.reloaded != nil {
				w.reloaded(err)
			}
		}
	}
}
