package savefile

import (
	"fmt"
	"strings"
)

// StreamNotFoundError is returned when an archive has no stream of the
// requested name.
type StreamNotFoundError struct {
	Name      string
	Available []string
}

func (e *StreamNotFoundError) Error() string {
	return fmt.Sprintf("stream %q not found in save (have %s)", e.Name, strings.Join(e.Available, ", "))
}

// EncodeError is returned when stream text cannot be represented in the
// stream's encoding, for example a non-Latin name in a Windows-1252 save.
type EncodeError struct {
	Name     string
	Encoding Encoding
	Err      error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("stream %q: cannot encode as %s: %v", e.Name, e.Encoding, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
