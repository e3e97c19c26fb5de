// Package decoder turns generic maps, and documents through their plain
// shape, into Go structs.
package decoder

import (
	"github.com/yacchi/clausewitz/document"
)

// Func decodes a map[string]any into target, which must be a pointer.
type Func func(data map[string]any, target any) error

// Document decodes doc into target with fn, via document.Plain. Keyless
// items of a block that also has keys appear under document.ItemsKey; a
// document that itself uses that key fails document.ValidatePlain.
//
// Example:
//
//	var meta struct {
//		Version string `json:"version"`
//		Date    string `json:"date"`
//	}
//	err := decoder.Document(doc, &meta, decoder.Mapstructure)
func Document(doc *document.Document, target any, fn Func) error {
	if fn == nil {
		fn = Mapstructure
	}
	if err := doc.ValidatePlain(); err != nil {
		return err
	}
	return fn(document.Plain(doc), target)
}
