package watcher

import "context"

// Watcher watches a save file and reports its contents when they change.
// Implementations are returned by NewPolling, NewSubscription and NewNoop.
type Watcher interface {
	// Type returns the watcher kind, for logging.
	Type() Type

	// Start begins watching. The first result carries the current data.
	// Calling Start on a running watcher is a no-op.
	Start(ctx context.Context, cfg WatchConfig) error

	// Stop stops watching. After Stop returns, no more results are sent
	// and the Results channel is closed.
	Stop(ctx context.Context) error

	// Results returns the channel created by Start.
	// Returns nil if Start has not been called.
	Results() <-chan WatchResult
}
