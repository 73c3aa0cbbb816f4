// Package watch reports changes under the registered library roots.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/lectern/internal/pathutil"
	"github.com/starford/lectern/internal/scanner"
)

// DefaultDebounce is used when a non-positive debounce is passed to Watch.
const DefaultDebounce = 300 * time.Millisecond

// resyncInterval bounds how long a newly registered root goes unwatched when
// nothing else changes.
const resyncInterval = 5 * time.Second

// RootSource lists the canonical roots to watch. It is re-read after every
// debounced batch and periodically.
type RootSource interface {
	Roots() []string
}

// ChangeFunc is called once per root for every debounced batch of changes.
type ChangeFunc func(root string)

// Watch watches every root recursively until ctx is cancelled.
func Watch(ctx context.Context, roots RootSource, debounce time.Duration, logger *slog.Logger, cb ChangeFunc) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	watched := make(map[string]struct{})
	syncRoots := func() {
		current := make(map[string]struct{})
		for _, root := range roots.Roots() {
			current[root] = struct{}{}
			if _, ok := watched[root]; ok {
				continue
			}
			if err := addDirsRecursive(w, root); err != nil {
				logger.Warn("watcher: add root failed", slog.String("root", root), slog.String("error", err.Error()))
				continue
			}
			watched[root] = struct{}{}
			logger.Info("watcher: watching", slog.String("root", root))
		}
		for root := range watched {
			if _, ok := current[root]; ok {
				continue
			}
			for _, p := range w.WatchList() {
				if pathutil.IsWithinRoot(p, root) {
					_ = w.Remove(p)
				}
			}
			delete(watched, root)
			logger.Info("watcher: unwatched", slog.String("root", root))
		}
	}
	syncRoots()

	pending := make(map[string]struct{})
	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time
	schedule := func() {
		if debounceTimer == nil {
			debounceTimer = time.NewTimer(debounce)
			debounceCh = debounceTimer.C
		} else {
			debounceTimer.Reset(debounce)
		}
	}

	resync := time.NewTicker(resyncInterval)
	defer resync.Stop()

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-resync.C:
			syncRoots()

		case <-debounceCh:
			for root := range pending {
				logger.Debug("watcher: library changed", slog.String("root", root))
				if cb != nil {
					cb(root)
				}
			}
			clear(pending)
			syncRoots()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					markRoot(pending, watched, ev.Name)
					schedule()
					continue
				}
			}
			if !relevant(ev) {
				continue
			}
			if markRoot(pending, watched, ev.Name) {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// relevant reports whether ev can change a scan result. Removed or renamed
// paths may have been directories, so they always count.
func relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		return true
	}
	if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return false
	}
	return scanner.IsSupportedType(scanner.Extension(ev.Name))
}

func markRoot(pending, watched map[string]struct{}, path string) bool {
	for root := range watched {
		if pathutil.IsWithinRoot(path, root) {
			pending[root] = struct{}{}
			return true
		}
	}
	return false
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
