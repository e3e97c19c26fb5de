// Package format provides common utilities for document codec implementations.
package format

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/yacchi/clausewitz/document"
)

// EncodeFunc serializes a Document.
type EncodeFunc func(*document.Document) ([]byte, error)

// DecodeFunc reads bytes into a Document.
type DecodeFunc func([]byte) (*document.Document, error)

// CodecConfig configures optional codec behavior.
type CodecConfig struct {
	// Lossless indicates whether a decode of the encoded bytes reproduces
	// the document exactly.
	// Default: false
	Lossless *bool

	// Extensions are the file extensions, with the leading dot, that
	// select this codec in a Registry.
	Extensions []string
}

// NewCodec creates a Codec with the given format and conversion functions.
//
// The format, encode and decode arguments are required. Optional
// configuration can be provided via CodecConfig.
//
// Example:
//
//	codec := format.NewCodec(document.FormatYAML, yaml.Encode, yaml.Decode, format.CodecConfig{
//	    Extensions: []string{".yaml", ".yml"},
//	})
func NewCodec(f document.DocumentFormat, encode EncodeFunc, decode DecodeFunc, cfg CodecConfig) document.Codec {
	lossless := false
	if cfg.Lossless != nil {
		lossless = *cfg.Lossless
	}

	return &codec{
		format:     f,
		encodeFunc: encode,
		decodeFunc: decode,
		lossless:   lossless,
		extensions: cfg.Extensions,
	}
}

// codec implements document.Codec using the provided configuration.
type codec struct {
	format     document.DocumentFormat
	encodeFunc EncodeFunc
	decodeFunc DecodeFunc
	lossless   bool
	extensions []string
}

// Ensure codec implements the document.Codec interface.
var _ document.Codec = (*codec)(nil)

// Format implements the document.Codec interface.
func (c *codec) Format() document.DocumentFormat {
	return c.format
}

// Encode implements the document.Codec interface.
func (c *codec) Encode(doc *document.Document) ([]byte, error) {
	return c.encodeFunc(doc)
}

// Decode implements the document.Codec interface.
func (c *codec) Decode(data []byte) (*document.Document, error) {
	return c.decodeFunc(data)
}

// Lossless implements the document.Codec interface.
func (c *codec) Lossless() bool {
	return c.lossless
}

// Extensions returns the file extensions registered for c, if it was built
// by NewCodec.
func Extensions(c document.Codec) []string {
	if cc, ok := c.(*codec); ok {
		return cc.extensions
	}
	return nil
}

// Ptr returns a pointer to the given value.
// This is a helper for setting optional fields in CodecConfig.
//
// Example:
//
//	format.NewCodec(document.FormatClausewitz, enc, dec, format.CodecConfig{
//	    Lossless: format.Ptr(true),
//	})
func Ptr[T any](v T) *T {
	return &v
}

// UnknownFormatError is returned when no codec is registered for a name or
// file extension.
type UnknownFormatError struct {
	Name string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown format %q", e.Name)
}

// Registry maps format names and file extensions to codecs.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byName map[document.DocumentFormat]document.Codec
	byExt  map[string]document.Codec
}

// NewRegistry returns a registry holding codecs.
func NewRegistry(codecs ...document.Codec) *Registry {
	r := &Registry{
		byName: make(map[document.DocumentFormat]document.Codec),
		byExt:  make(map[string]document.Codec),
	}
	for _, c := range codecs {
		r.Register(c)
	}
	return r
}

// Register adds c, replacing any codec with the same format or extension.
func (r *Registry) Register(c document.Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[c.Format()] = c
	for _, ext := range Extensions(c) {
		r.byExt[strings.ToLower(ext)] = c
	}
}

// Lookup returns the codec for a format name such as "yaml".
func (r *Registry) Lookup(name string) (document.Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.byName[document.DocumentFormat(strings.ToLower(name))]; ok {
		return c, nil
	}
	return nil, &UnknownFormatError{Name: name}
}

// ForPath returns the codec registered for the extension of path.
func (r *Registry) ForPath(path string) (document.Codec, error) {
	ext := strings.ToLower(filepath.Ext(path))
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.byExt[ext]; ok {
		return c, nil
	}
	return nil, &UnknownFormatError{Name: ext}
}

// Formats returns the registered format names in sorted order.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for f := range r.byName {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}
