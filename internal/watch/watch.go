// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch reruns analysis whenever a report file appears or changes
// in a directory.
package watch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/pdiddy/nbo-sop/internal/export"
)

// Handler is called with the path of each created or written report.
type Handler func(ctx context.Context, path string) error

// Matches reports whether ev concerns a file named like pattern that was
// created or written. Analysis outputs never match.
func Matches(ev fsnotify.Event, pattern string) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return false
	}
	if export.IsArtifact(ev.Name) {
		return false
	}
	ok, err := filepath.Match(pattern, filepath.Base(ev.Name))
	return err == nil && ok
}

// Dir watches dir until ctx is done, calling h for each matching event.
// Handler errors are logged and do not stop the watch.
func Dir(ctx context.Context, dir, pattern string, h Handler, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	log.Info("watching for reports", zap.String("dir", dir), zap.String("pattern", pattern))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !Matches(ev, pattern) {
				continue
			}
			log.Debug("report changed", zap.String("path", ev.Name), zap.Stringer("op", ev.Op))
			if err := h(ctx, ev.Name); err != nil {
				log.Error("report failed", zap.String("path", ev.Name), zap.Error(err))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", zap.Error(err))
		}
	}
}
