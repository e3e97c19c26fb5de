// Package toml provides a TOML codec for documents using
// github.com/pelletier/go-toml/v2.
//
// TOML tables are decoded through Go maps, so key order is not kept: keys
// come back sorted.
package toml

import (
	"bytes"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/yacchi/clausewitz/document"
	"github.com/yacchi/clausewitz/format"
)

// NewCodec creates a new TOML codec.
func NewCodec() document.Codec {
	return format.NewCodec(document.FormatTOML, Encode, Decode, format.CodecConfig{
		Extensions: []string{".toml"},
	})
}

// Encode writes doc as TOML. Keys inside each table are sorted.
func Encode(doc *document.Document) ([]byte, error) {
	if err := doc.ValidatePlain(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(document.Plain(doc)); err != nil {
		return nil, fmt.Errorf("failed to marshal TOML: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses TOML data into a Document.
// Returns an empty document if data is nil or empty.
func Decode(data []byte) (*document.Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return document.New(), nil
	}

	var result map[string]any
	if err := toml.Unmarshal(trimmed, &result); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return document.FromPlain(result)
}
