// Package watcher detects changes to save files, either by polling or by
// subscribing to file system events, and delivers the new bytes on a channel.
package watcher

import (
	"bytes"
	"context"
	"crypto/sha256"
	"time"
)

// DefaultPollInterval is the default polling interval. Games autosave every
// few in-game months, so a few seconds is enough.
const DefaultPollInterval = 5 * time.Second

// Type identifies a watcher implementation.
type Type string

// Watcher types.
const (
	TypePolling      Type = "polling"
	TypeSubscription Type = "subscription"
	TypeNoop         Type = "noop"
)

// CompareFunc reports whether old and new differ.
type CompareFunc func(old, new []byte) bool

// DefaultCompareFunc compares byte slices directly using bytes.Equal.
func DefaultCompareFunc(old, new []byte) bool {
	return !bytes.Equal(old, new)
}

// HashCompareFunc compares SHA-256 digests. Use it for large gamestates
// where the comparison runs on every poll.
func HashCompareFunc(old, new []byte) bool {
	return sha256.Sum256(old) != sha256.Sum256(new)
}

// WatchConfig configures watcher behavior.
type WatchConfig struct {
	// PollInterval is the interval between polls. Only used by the polling
	// watcher. Default is DefaultPollInterval.
	PollInterval time.Duration

	// CompareFunc detects changes between consecutive reads.
	// Default is DefaultCompareFunc.
	CompareFunc CompareFunc
}

// WatchConfigOption is a functional option for WatchConfig.
type WatchConfigOption func(*WatchConfig)

// WithPollInterval sets the polling interval.
func WithPollInterval(d time.Duration) WatchConfigOption {
	return func(c *WatchConfig) {
		c.PollInterval = d
	}
}

// WithCompareFunc sets the comparison function for change detection.
func WithCompareFunc(f CompareFunc) WatchConfigOption {
	return func(c *WatchConfig) {
		c.CompareFunc = f
	}
}

// NewWatchConfig creates a WatchConfig with the given options applied over
// the defaults.
func NewWatchConfig(opts ...WatchConfigOption) WatchConfig {
	cfg := WatchConfig{
		PollInterval: DefaultPollInterval,
		CompareFunc:  DefaultCompareFunc,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (c WatchConfig) compare() CompareFunc {
	if c.CompareFunc == nil {
		return DefaultCompareFunc
	}
	return c.CompareFunc
}

func (c WatchConfig) interval() time.Duration {
	if c.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return c.PollInterval
}

// WatchResult is one delivery from a watcher: either the latest data or an
// error from reading it.
type WatchResult struct {
	Data  []byte
	Error error
}

// FetchFunc reads the current data.
type FetchFunc func(ctx context.Context) ([]byte, error)

// NotifyFunc is called by a SubscriptionHandler when the watched file
// changed (err == nil) or watching failed.
type NotifyFunc func(err error)

// StopFunc ends a subscription.
type StopFunc func(ctx context.Context) error

// detector remembers the last delivered data and filters unchanged reads.
type detector struct {
	compare CompareFunc
	last    []byte
	seen    bool
}

// changed records data and reports whether it differs from the last call.
// The first call always reports a change.
func (d *detector) changed(data []byte) bool {
	if d.seen && !d.compare(d.last, data) {
		return false
	}
	d.seen = true
	d.last = data
	return true
}
