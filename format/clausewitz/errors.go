package clausewitz

import (
	"fmt"
)

// ErrorKind classifies a ParseError.
type ErrorKind uint8

const (
	// UnterminatedString is a quoted string with no closing quote.
	UnterminatedString ErrorKind = iota + 1
	// UnterminatedBlock is a '{' with no matching '}' before end of input.
	UnterminatedBlock
	// MaxDepthExceeded is a '{' that would nest deeper than the configured bound.
	MaxDepthExceeded
	// UnexpectedClose is a '}' at the top level.
	UnexpectedClose
	// MissingValue is a key= with no value before '}', another key or end of input.
	MissingValue
	// TrailingInput is text left over after the single value read by ParseValue.
	TrailingInput
)

func (k ErrorKind) String() string {
	switch k {
	case UnterminatedString:
		return "unterminated string"
	case UnterminatedBlock:
		return "unterminated block"
	case MaxDepthExceeded:
		return "maximum nesting depth exceeded"
	case UnexpectedClose:
		return "unexpected '}'"
	case MissingValue:
		return "missing value"
	case TrailingInput:
		return "unexpected input after value"
	default:
		return fmt.Sprintf("ErrorKind(%d)", uint8(k))
	}
}

// Sentinel errors for errors.Is checks against a *ParseError.
//
//	if errors.Is(err, clausewitz.ErrMaxDepthExceeded) { ... }
var (
	ErrUnterminatedString = &ParseError{Kind: UnterminatedString}
	ErrUnterminatedBlock  = &ParseError{Kind: UnterminatedBlock}
	ErrMaxDepthExceeded   = &ParseError{Kind: MaxDepthExceeded}
	ErrUnexpectedClose    = &ParseError{Kind: UnexpectedClose}
	ErrMissingValue       = &ParseError{Kind: MissingValue}
	ErrTrailingInput      = &ParseError{Kind: TrailingInput}
)

// ParseError reports where and why a parse failed. No document is returned
// alongside it.
type ParseError struct {
	Kind ErrorKind
	// Offset is the byte offset of the fault in the parsed input. For spans
	// re-parsed with ParseSpan it is relative to the input the span was
	// captured from.
	Offset int
	// Line and Column are 1-based. They are zero for span re-parses, where
	// only the absolute Offset is known.
	Line   int
	Column int
	// Key is the pending key for MissingValue errors.
	Key string
}

func (e *ParseError) Error() string {
	msg := e.Kind.String()
	if e.Key != "" {
		msg += fmt.Sprintf(" for key %q", e.Key)
	}
	if e.Line > 0 {
		return fmt.Sprintf("clausewitz: %s at line %d, column %d (offset %d)", msg, e.Line, e.Column, e.Offset)
	}
	return fmt.Sprintf("clausewitz: %s at offset %d", msg, e.Offset)
}

// Is matches any ParseError of the same Kind, so the sentinel values above
// work with errors.Is.
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	return ok && t.Kind == e.Kind
}

// position converts a byte offset in src to a 1-based line and column.
func position(src string, offset int) (line, col int) {
	if offset > len(src) {
		offset = len(src)
	}
	line, col = 1, 1
	for i := 0; i < offset; i++ {
		if src[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
