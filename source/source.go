// Package source abstracts where save data is read from and written to.
// Sources move raw bytes only; unpacking archives and parsing happen in
// savefile and format/clausewitz.
package source

import (
	"context"
	"errors"

	"github.com/yacchi/clausewitz/watcher"
)

// ErrSaveNotSupported is returned when Save is called on a read-only source.
var ErrSaveNotSupported = errors.New("save not supported for this source")

// ErrSourceModified is returned by Save when the data changed since the last
// Load, for example because the game autosaved in between. No write occurs.
var ErrSourceModified = errors.New("source has been modified since last load")

// UpdateFunc produces the bytes to write. It receives the current bytes,
// read while the source is locked.
type UpdateFunc func(current []byte) ([]byte, error)

// Source loads and optionally saves raw save data.
type Source interface {
	// Load reads the raw data.
	Load(ctx context.Context) ([]byte, error)

	// Save writes the bytes returned by updateFunc.
	//
	// Returns ErrSaveNotSupported if the source is read-only, and
	// ErrSourceModified if the data changed since the last Load.
	//
	// Example:
	//
	//	err := src.Save(ctx, func(current []byte) ([]byte, error) {
	//		return archive.Bytes()
	//	})
	Save(ctx context.Context, updateFunc UpdateFunc) error

	// CanSave reports whether Save is supported.
	CanSave() bool
}

// Watchable is implemented by sources that can report changes.
type Watchable interface {
	// Watch returns a watcher whose results carry the source's new data.
	Watch() watcher.Watcher
}
