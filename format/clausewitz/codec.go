package clausewitz

import (
	"github.com/yacchi/clausewitz/document"
	"github.com/yacchi/clausewitz/format"
)

// NewCodec returns the native codec. opts apply to both directions.
//
// The codec is lossless for documents parsed in ModeFull. Shallow documents
// encode their spans verbatim, so they decode to fully parsed blocks.
//
// Example:
//
//	reg := format.NewRegistry(clausewitz.NewCodec(), yaml.NewCodec())
func NewCodec(opts ...Option) document.Codec {
	encode := func(doc *document.Document) ([]byte, error) {
		return Marshal(doc, opts...)
	}
	decode := func(data []byte) (*document.Document, error) {
		return Parse(data, opts...)
	}
	return format.NewCodec(document.FormatClausewitz, encode, decode, format.CodecConfig{
		Lossless:   format.Ptr(true),
		Extensions: []string{".txt", ".gamestate", ".meta"},
	})
}
