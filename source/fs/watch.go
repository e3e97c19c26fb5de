package fs

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/yacchi/clausewitz/watcher"
)

// Subscribe watches the save file with fsnotify and calls notify(nil) on
// every write, create or rename of it. It implements
// watcher.SubscriptionHandler.
//
// The parent directory is watched rather than the file, since games and
// Save replace the file by renaming a new one over it.
func (s *Source) Subscribe(ctx context.Context, notify watcher.NotifyFunc) (watcher.StopFunc, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	path := s.ResolvedPath()
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch directory %q: %w", dir, err)
	}
	filename := filepath.Base(path)

	go func() {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != filename {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					s.logger.Debug("save file event", "path", event.Name, "op", event.Op.String())
					notify(nil)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				notify(err)
			case <-ctx.Done():
				return
			}
		}
	}()

	return func(context.Context) error { return w.Close() }, nil
}

// Watch returns an fsnotify-driven watcher. Its results carry the raw file
// bytes; reading for the watcher does not affect the modification check of
// Save.
func (s *Source) Watch() watcher.Watcher {
	return watcher.NewSubscription(watcher.SubscriptionHandlerFunc(s.Subscribe), s.fetch)
}

// WatchPolling returns a watcher that polls the file instead of relying on
// file system events, for network drives and synced folders.
func (s *Source) WatchPolling() watcher.Watcher {
	return watcher.NewPolling(s.fetch)
}

func (s *Source) fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return osReadFile(s.ResolvedPath())
}
