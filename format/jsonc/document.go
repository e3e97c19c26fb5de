// Package jsonc provides a JSONC (JSON with comments) codec for documents.
//
// Encoding builds a github.com/tailscale/hujson AST so exported files can
// carry header comments and are laid out by hujson's formatter. Decoding
// accepts comments and trailing commas.
package jsonc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tailscale/hujson"
	"github.com/yacchi/clausewitz/document"
	"github.com/yacchi/clausewitz/format"
)

// Option configures the JSONC encoder.
type Option func(*options)

type options struct {
	header []string
}

// WithHeader writes each line as a // comment above the root object.
func WithHeader(lines ...string) Option {
	return func(o *options) {
		o.header = append(o.header, lines...)
	}
}

// NewCodec returns a JSONC codec.
//
// Example:
//
//	codec := jsonc.NewCodec(jsonc.WithHeader("exported from autosave.sav"))
func NewCodec(opts ...Option) document.Codec {
	encode := func(doc *document.Document) ([]byte, error) {
		return Encode(doc, opts...)
	}
	return format.NewCodec(document.FormatJSONC, encode, Decode, format.CodecConfig{
		Extensions: []string{".jsonc"},
	})
}

// Encode writes doc as formatted JSONC.
func Encode(doc *document.Document, opts ...Option) ([]byte, error) {
	if err := doc.ValidatePlain(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	root := hujson.Value{Value: toAST(document.Ordered(doc))}
	if len(o.header) > 0 {
		var b strings.Builder
		for _, line := range o.header {
			b.WriteString("// ")
			b.WriteString(strings.ReplaceAll(line, "\n", " "))
			b.WriteByte('\n')
		}
		root.BeforeExtra = hujson.Extra(b.String())
	}
	root.Format()
	return root.Pack(), nil
}

func toAST(v any) hujson.ValueTrimmed {
	switch val := v.(type) {
	case document.OrderedMap:
		obj := &hujson.Object{Members: make([]hujson.ObjectMember, 0, len(val))}
		for _, mem := range val {
			obj.Members = append(obj.Members, hujson.ObjectMember{
				Name:  hujson.Value{Value: hujson.String(mem.Key)},
				Value: hujson.Value{Value: toAST(mem.Value)},
			})
		}
		return obj
	case []any:
		arr := &hujson.Array{Elements: make([]hujson.ArrayElement, 0, len(val))}
		for _, elem := range val {
			arr.Elements = append(arr.Elements, hujson.ArrayElement{Value: toAST(elem)})
		}
		return arr
	case int64:
		return hujson.Int(val)
	case float64:
		return hujson.Literal(document.FormatFloat(val))
	case bool:
		return hujson.Bool(val)
	case string:
		return hujson.String(val)
	default:
		return hujson.Literal("null")
	}
}

// Decode parses JSONC data into a Document.
// Returns an empty document if data is nil or empty.
func Decode(data []byte) (*document.Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return document.New(), nil
	}

	v, err := hujson.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSONC: %w", err)
	}

	// Standardize to remove comments for decoding
	v.Standardize()

	var root document.OrderedMap
	if err := json.Unmarshal(v.Pack(), &root); err != nil {
		return nil, fmt.Errorf("failed to decode JSONC: %w", err)
	}
	return document.FromOrdered(root)
}
