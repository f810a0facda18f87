package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 500 * time.Millisecond

// WatchConfig watches the configuration file at path and emits a freshly
// loaded SystemConfig each time it changes. Bursts of events are debounced.
// A change that fails to load or validate is logged and skipped, so the
// previously applied config stays in effect.
//
// The parent directory is watched rather than the file itself so editors
// that save by rename (Vim, most IDEs) keep being tracked.
// The returned channel is closed when ctx is canceled.
func WatchConfig(ctx context.Context, path string) <-chan *SystemConfig {
	out := make(chan *SystemConfig, 1)

	absPath, err := filepath.Abs(path)
	if err != nil {
		slog.Warn("Could not resolve absolute path for config file", "file", path, "error", err)
		close(out)
		return out
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Error("Failed to create fsnotify watcher", "error", err)
		close(out)
		return out
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		slog.Warn("Could not watch config directory", "dir", filepath.Dir(absPath), "error", err)
		watcher.Close()
		close(out)
		return out
	}
	slog.Debug("Watching configuration file", "file", absPath)

	go func() {
		defer watcher.Close()
		defer close(out)

		timer := time.NewTimer(reloadDebounce)
		timer.Stop()
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != absPath {
					continue
				}
				if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Rename) {
					timer.Reset(reloadDebounce)
				}
			case <-timer.C:
				cfg, err := Load(absPath)
				if err != nil {
					slog.Warn("Ignoring configuration change", "file", absPath, "error", err)
					continue
				}
				slog.Info("Configuration change detected", "file", absPath)
				// Keep only the newest config if the consumer is behind.
				select {
				case <-out:
				default:
				}
				out <- cfg
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("Watcher encountered an error", "error", err)
			}
		}
	}()

	return out
}
