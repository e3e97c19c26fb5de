// Package cbor provides a binary codec for documents using deterministic
// CBOR (RFC 8949 core deterministic encoding) via github.com/fxamacker/cbor/v2.
//
// Maps are encoded with sorted keys, so equal documents always produce equal
// bytes. Key order of the source document is not kept.
package cbor

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/yacchi/clausewitz/document"
	"github.com/yacchi/clausewitz/format"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		IntDec:         cbor.IntDecConvertSignedOrFail,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// NewCodec creates a new CBOR codec.
func NewCodec() document.Codec {
	return format.NewCodec(document.FormatCBOR, Encode, Decode, format.CodecConfig{
		Extensions: []string{".cbor"},
	})
}

// Encode writes doc as deterministic CBOR.
func Encode(doc *document.Document) ([]byte, error) {
	if err := doc.ValidatePlain(); err != nil {
		return nil, err
	}
	data, err := encMode.Marshal(document.Plain(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal CBOR: %w", err)
	}
	return data, nil
}

// Decode reads CBOR data into a Document. The top-level item must be a map.
// Returns an empty document if data is empty.
func Decode(data []byte) (*document.Document, error) {
	if len(data) == 0 {
		return document.New(), nil
	}

	var root any
	if err := decMode.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse CBOR: %w", err)
	}
	switch v := root.(type) {
	case nil:
		return document.New(), nil
	case map[string]any:
		return document.FromPlain(v)
	default:
		return nil, fmt.Errorf("CBOR root must be a map, got %T", root)
	}
}
