// Package json provides a standard library (encoding/json) codec for
// documents.
//
// Objects keep document key order in both directions. Comments are not
// supported; use the jsonc package for that.
package json

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/yacchi/clausewitz/document"
	"github.com/yacchi/clausewitz/format"
)

// NewCodec creates a new JSON codec.
//
// Example:
//
//	codec := json.NewCodec()
//	out, err := codec.Encode(doc)
func NewCodec() document.Codec {
	return format.NewCodec(document.FormatJSON, Encode, Decode, format.CodecConfig{
		Extensions: []string{".json"},
	})
}

// Encode writes doc as indented JSON.
func Encode(doc *document.Document) ([]byte, error) {
	if err := doc.ValidatePlain(); err != nil {
		return nil, err
	}
	b, err := json.MarshalIndent(document.Ordered(doc), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(b, '\n'), nil
}

// Decode parses JSON data into a Document.
//
// The root value must be a JSON object. Empty/whitespace input is treated as an
// empty object.
func Decode(data []byte) (*document.Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return document.New(), nil
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return document.New(), nil
	}

	var root document.OrderedMap
	if err := json.Unmarshal(trimmed, &root); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return document.FromOrdered(root)
}
