package watcher

import (
	"context"
	"sync"
)

// noopWatcher never reports anything. Its Results channel closes when the
// context ends or Stop is called.
type noopWatcher struct {
	results chan WatchResult
	stopCh  chan struct{}

	mu      sync.Mutex
	running bool
}

// NewNoop returns a Watcher for sources that cannot change, such as
// in-memory bytes.
func NewNoop() Watcher {
	return &noopWatcher{}
}

func (w *noopWatcher) Type() Type {
	return TypeNoop
}

func (w *noopWatcher) Start(ctx context.Context, cfg WatchConfig) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	w.running = true
	w.results = make(chan WatchResult)
	w.stopCh = make(chan struct{})
	results, stopCh := w.results, w.stopCh

	go func() {
		defer close(results)
		select {
		case <-ctx.Done():
		case <-stopCh:
		}
	}()
	return nil
}

func (w *noopWatcher) Stop(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return nil
	}
	w.running = false
	close(w.stopCh)
	return nil
}

func (w *noopWatcher) Results() <-chan WatchResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.results
}
