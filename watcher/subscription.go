package watcher

import (
	"context"
	"sync"
)

// SubscriptionHandler registers for change events, for example through
// fsnotify. It calls notify(nil) for each event and notify(err) when
// watching fails.
type SubscriptionHandler interface {
	Subscribe(ctx context.Context, notify NotifyFunc) (StopFunc, error)
}

// SubscriptionHandlerFunc is a function that implements SubscriptionHandler.
type SubscriptionHandlerFunc func(ctx context.Context, notify NotifyFunc) (StopFunc, error)

// Subscribe implements SubscriptionHandler.
func (f SubscriptionHandlerFunc) Subscribe(ctx context.Context, notify NotifyFunc) (StopFunc, error) {
	return f(ctx, notify)
}

// subscriptionWatcher reads the file with fetch after each event.
type subscriptionWatcher struct {
	handler SubscriptionHandler
	fetch   FetchFunc

	results chan WatchResult
	stopCh  chan struct{}
	stopFn  StopFunc
	det     *detector

	mu      sync.Mutex
	running bool

	// fetchMu serializes notifications and guards sends against Stop
	// closing results.
	fetchMu sync.Mutex
}

// NewSubscription returns an event-driven Watcher. Start reads the file
// once and reports it, then every event from handler triggers a fetch.
// Fetched data is reported only when it changed, so the burst of events a
// single save produces yields one result.
func NewSubscription(handler SubscriptionHandler, fetch FetchFunc) Watcher {
	return &subscriptionWatcher{handler: handler, fetch: fetch}
}

func (w *subscriptionWatcher) Type() Type {
	return TypeSubscription
}

func (w *subscriptionWatcher) Start(ctx context.Context, cfg WatchConfig) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.results = make(chan WatchResult)
	w.stopCh = make(chan struct{})
	w.det = &detector{compare: cfg.compare()}
	results, stopCh := w.results, w.stopCh
	w.mu.Unlock()

	send := func(r WatchResult) {
		select {
		case results <- r:
		case <-ctx.Done():
		case <-stopCh:
		}
	}

	notify := func(err error) {
		w.fetchMu.Lock()
		defer w.fetchMu.Unlock()
		select {
		case <-stopCh:
			return
		default:
		}
		if err == nil {
			var data []byte
			data, err = w.fetch(ctx)
			if err == nil {
				if w.det.changed(data) {
					send(WatchResult{Data: data})
				}
				return
			}
		}
		send(WatchResult{Error: err})
	}

	stop, err := w.handler.Subscribe(ctx, notify)
	if err != nil {
		w.mu.Lock()
		w.running = false
		close(w.stopCh)
		close(w.results)
		w.mu.Unlock()
		return err
	}

	w.mu.Lock()
	w.stopFn = stop
	w.mu.Unlock()

	go notify(nil)
	return nil
}

func (w *subscriptionWatcher) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.stopCh)
	stop := w.stopFn
	w.stopFn = nil
	w.mu.Unlock()

	var err error
	if stop != nil {
		err = stop(ctx)
	}

	w.fetchMu.Lock()
	w.mu.Lock()
	close(w.results)
	w.mu.Unlock()
	w.fetchMu.Unlock()

	return err
}

func (w *subscriptionWatcher) Results() <-chan WatchResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.results
}
