package watcher

import (
	"context"
	"sync"
	"time"
)

// pollingWatcher calls fetch every interval and reports changed data.
type pollingWatcher struct {
	fetch FetchFunc

	results chan WatchResult
	stopCh  chan struct{}

	mu      sync.Mutex
	running bool
}

// NewPolling returns a Watcher that reads the file with fetch at every
// PollInterval. The first read happens immediately and is always reported;
// later reads are reported only when CompareFunc says they changed. Read
// errors are reported every time.
func NewPolling(fetch FetchFunc) Watcher {
	return &pollingWatcher{fetch: fetch}
}

func (w *pollingWatcher) Type() Type {
	return TypePolling
}

func (w *pollingWatcher) Start(ctx context.Context, cfg WatchConfig) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.results = make(chan WatchResult)
	w.stopCh = make(chan struct{})
	results, stopCh := w.results, w.stopCh
	w.mu.Unlock()

	det := &detector{compare: cfg.compare()}
	interval := cfg.interval()

	send := func(r WatchResult) bool {
		select {
		case results <- r:
			return true
		case <-ctx.Done():
		case <-stopCh:
		}
		return false
	}

	go func() {
		defer close(results)

		timer := time.NewTimer(0)
		defer timer.Stop()
		for {
			select {
			case <-timer.C:
			case <-ctx.Done():
				return
			case <-stopCh:
				return
			}

			started := time.Now()
			data, err := w.fetch(ctx)
			switch {
			case err != nil:
				if !send(WatchResult{Error: err}) {
					return
				}
			case det.changed(data):
				if !send(WatchResult{Data: data}) {
					return
				}
			}
			timer.Reset(max(interval-time.Since(started), 0))
		}
	}()

	return nil
}

func (w *pollingWatcher) Stop(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	close(w.stopCh)
	return nil
}

func (w *pollingWatcher) Results() <-chan WatchResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.results
}
