// Package bytes provides a read-only source backed by a byte slice, used for
// saves read from stdin and in tests.
package bytes

import (
	"context"
	"slices"

	"github.com/yacchi/clausewitz/source"
	"github.com/yacchi/clausewitz/watcher"
)

// Source serves a fixed byte slice.
type Source struct {
	data []byte
}

var (
	_ source.Source    = (*Source)(nil)
	_ source.Watchable = (*Source)(nil)
)

// New creates a source from raw bytes.
func New(data []byte) *Source {
	return &Source{data: data}
}

// FromString creates a source from a string.
//
// Example:
//
//	src := bytes.FromString(`date="2200.01.01"`)
func FromString(data string) *Source {
	return New([]byte(data))
}

// Load returns a copy of the data.
func (s *Source) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(s.data), nil
}

// Save always returns source.ErrSaveNotSupported.
func (s *Source) Save(ctx context.Context, updateFunc source.UpdateFunc) error {
	return source.ErrSaveNotSupported
}

// CanSave returns false.
func (s *Source) CanSave() bool {
	return false
}

// Watch returns a watcher that never fires; the data cannot change.
func (s *Source) Watch() watcher.Watcher {
	return watcher.NewNoop()
}
