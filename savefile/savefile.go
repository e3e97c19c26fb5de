// Package savefile reads and writes Paradox save archives: zip files that
// hold named Clausewitz text streams, usually "meta" and "gamestate".
//
// Plain-text saves (written with compression disabled in the game) are read
// as an archive with a single gamestate stream and written back as plain
// text.
package savefile

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yacchi/clausewitz/document"
	"github.com/yacchi/clausewitz/format/clausewitz"
	"github.com/yacchi/clausewitz/source"
)

// Well-known stream names.
const (
	StreamMeta      = "meta"
	StreamGamestate = "gamestate"
)

// Archive is a save file held in memory. Stream order is kept for writing.
// Methods are safe for concurrent use.
type Archive struct {
	mu      sync.RWMutex
	streams []*stream
	plain   bool
	opts    options
}

type stream struct {
	name     string
	text     []byte
	encoding Encoding
	bom      bool
	modified time.Time
}

type options struct {
	encoding Encoding
	logger   *slog.Logger
}

// Option configures reading and writing.
type Option func(*options)

// WithEncoding sets how streams are decoded. Default is EncodingUTF8.
func WithEncoding(enc Encoding) Option {
	return func(o *options) {
		o.encoding = enc
	}
}

// WithLogger sets the logger. Default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) options {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// IsArchive reports whether data starts with a zip header.
func IsArchive(data []byte) bool {
	return bytes.HasPrefix(data, []byte("PK\x03\x04")) || bytes.HasPrefix(data, []byte("PK\x05\x06"))
}

// New returns an empty archive.
func New(opts ...Option) *Archive {
	return &Archive{opts: newOptions(opts)}
}

// Open loads a save from src. See Read.
func Open(ctx context.Context, src source.Source, opts ...Option) (*Archive, error) {
	data, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	return Read(data, opts...)
}

// Read decodes a save. Zip archives yield one stream per file entry;
// anything else is taken as a plain-text gamestate.
func Read(data []byte, opts ...Option) (*Archive, error) {
	a := New(opts...)
	if !IsArchive(data) {
		text, enc, bom, err := decode(data, a.opts.encoding)
		if err != nil {
			return nil, fmt.Errorf("decode plain save: %w", err)
		}
		a.plain = true
		a.streams = []*stream{{name: StreamGamestate, text: text, encoding: enc, bom: bom}}
		a.opts.logger.Debug("read plain save", "bytes", len(data), "encoding", enc.String())
		return a, nil
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open save archive: %w", err)
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		raw, err := readEntry(f)
		if err != nil {
			return nil, fmt.Errorf("read stream %q: %w", f.Name, err)
		}
		text, enc, bom, err := decode(raw, a.opts.encoding)
		if err != nil {
			return nil, fmt.Errorf("decode stream %q: %w", f.Name, err)
		}
		a.streams = append(a.streams, &stream{
			name:     f.Name,
			text:     text,
			encoding: enc,
			bom:      bom,
			modified: f.Modified,
		})
		a.opts.logger.Debug("read stream", "name", f.Name, "bytes", len(raw), "encoding", enc.String())
	}
	return a, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// IsPlain reports whether the save was read from plain text.
func (a *Archive) IsPlain() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.plain
}

// Names returns the stream names in archive order.
func (a *Archive) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.names()
}

func (a *Archive) names() []string {
	names := make([]string, len(a.streams))
	for i, s := range a.streams {
		names[i] = s.name
	}
	return names
}

func (a *Archive) find(name string) *stream {
	for _, s := range a.streams {
		if s.name == name {
			return s
		}
	}
	return nil
}

// Stream returns a copy of the UTF-8 text of the named stream.
func (a *Archive) Stream(name string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s := a.find(name)
	if s == nil {
		return nil, &StreamNotFoundError{Name: name, Available: a.names()}
	}
	return slices.Clone(s.text), nil
}

// SetStream replaces the text of a stream, or appends a new stream. A new
// stream uses the archive's encoding (UTF-8 when it is EncodingAuto).
// Adding a second stream to a plain save turns it into an archive.
func (a *Archive) SetStream(name string, text []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if s := a.find(name); s != nil {
		s.text = slices.Clone(text)
		return
	}
	enc := a.opts.encoding
	if enc == EncodingAuto {
		enc = EncodingUTF8
	}
	a.streams = append(a.streams, &stream{name: name, text: slices.Clone(text), encoding: enc})
	if len(a.streams) > 1 {
		a.plain = false
	}
}

// Parse parses the named stream.
func (a *Archive) Parse(name string, opts ...clausewitz.Option) (*document.Document, error) {
	text, err := a.Stream(name)
	if err != nil {
		return nil, err
	}
	doc, err := clausewitz.Parse(text, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse stream %q: %w", name, err)
	}
	return doc, nil
}

// ParseAll parses every stream concurrently. On the first error the
// remaining parses are abandoned and the error is returned.
func (a *Archive) ParseAll(ctx context.Context, opts ...clausewitz.Option) (map[string]*document.Document, error) {
	names := a.Names()
	docs := make([]*document.Document, len(names))

	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := a.Parse(name, opts...)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*document.Document, len(names))
	for i, name := range names {
		out[name] = docs[i]
	}
	return out, nil
}

// SetDocument serializes doc into the named stream.
func (a *Archive) SetDocument(name string, doc *document.Document, opts ...clausewitz.Option) error {
	text, err := clausewitz.Marshal(doc, opts...)
	if err != nil {
		return fmt.Errorf("serialize stream %q: %w", name, err)
	}
	a.SetStream(name, text)
	return nil
}

// Bytes encodes the save. Archives are written as deflated zip entries in
// their original order; plain saves as their text.
func (a *Archive) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := a.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes the save to w, see Bytes.
func (a *Archive) Write(w io.Writer) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.plain {
		s := a.streams[0]
		data, err := encode(s.text, s.encoding, s.bom)
		if err != nil {
			return &EncodeError{Name: s.name, Encoding: s.encoding, Err: err}
		}
		_, err = w.Write(data)
		return err
	}

	zw := zip.NewWriter(w)
	for _, s := range a.streams {
		data, err := encode(s.text, s.encoding, s.bom)
		if err != nil {
			return &EncodeError{Name: s.name, Encoding: s.encoding, Err: err}
		}
		modified := s.modified
		if modified.IsZero() {
			modified = time.Now()
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     s.name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return fmt.Errorf("write stream %q: %w", s.name, err)
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("write stream %q: %w", s.name, err)
		}
	}
	return zw.Close()
}

// Save writes the encoded save to dst. File sources keep their backup and
// modification checks.
func (a *Archive) Save(ctx context.Context, dst source.Source) error {
	if !dst.CanSave() {
		return source.ErrSaveNotSupported
	}
	data, err := a.Bytes()
	if err != nil {
		return err
	}
	err = dst.Save(ctx, func([]byte) ([]byte, error) {
		return data, nil
	})
	if err != nil {
		return err
	}
	a.opts.logger.Info("save written", "streams", len(a.Names()), "bytes", len(data))
	return nil
}
