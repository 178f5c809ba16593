package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/limbus/typegen/cmd/typegen/internal/ui"
)

const watchDebounce = 100 * time.Millisecond

// watchSchema reruns regenerate whenever the schema file changes, until ctx
// is cancelled. The parent directory is watched because editors often
// replace the file instead of writing it in place.
func watchSchema(ctx context.Context, schemaPath string, logger *slog.Logger, out io.Writer, regenerate func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	target, err := filepath.Abs(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", schemaPath, err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	ui.Step(out, "Watching %s for changes... (Press Ctrl+C to stop)", schemaPath)

	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isSchemaEvent(event, target) {
				continue
			}
			pending = true
			debounce.Reset(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", "error", err)

		case <-debounce.C:
			if !pending {
				continue
			}
			pending = false
			logger.Info("Schema changed, regenerating", "schema", schemaPath)
			if err := regenerate(ctx); err != nil {
				logger.Error("Regeneration failed", "error", err)
			}
		}
	}
}

func isSchemaEvent(event fsnotify.Event, target string) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return abs == target
}
