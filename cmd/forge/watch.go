package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 300 * time.Millisecond

// watchManifests rebuilds a manifest after it is written. Directories are
// watched rather than files because editors often save by renaming a temp
// file over the original. Runs until ctx is done.
func watchManifests(ctx context.Context, paths []string, b *builder) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	manifests := make(map[string]string) // absolute -> as given
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		manifests[abs] = p
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	b.log.Info("Watching manifests", "count", len(manifests))

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.log.Info("Watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if _, ok := manifests[abs]; ok {
				pending[abs] = time.Now()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			b.log.Error("Watcher error", "error", err)

		case now := <-ticker.C:
			for abs, at := range pending {
				if now.Sub(at) < debounce {
					continue
				}
				delete(pending, abs)
				// Failures are logged by build; keep watching.
				_, _ = b.build(ctx, manifests[abs])
			}
		}
	}
}
