package clausewitz

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/yacchi/clausewitz/document"
)

// Marshal serializes doc to Clausewitz text.
//
// The document is validated first; a tree that breaks the model invariants
// is rejected with a *document.StructureError. Documents returned by Parse
// always serialize.
func Marshal(doc *document.Document, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf, opts...).Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encoder writes Clausewitz text to an output stream.
type Encoder struct {
	w    *bufio.Writer
	opts options
	err  error
}

// NewEncoder returns an encoder that writes to w.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	return &Encoder{w: bufio.NewWriter(w), opts: newOptions(opts)}
}

// Encode writes doc followed by a flush of the underlying writer.
func (e *Encoder) Encode(doc *document.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	e.doc(doc, e.opts.baseDepth)
	if e.err != nil {
		return e.err
	}
	return e.w.Flush()
}

func (e *Encoder) write(s string) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.WriteString(s)
}

func (e *Encoder) indent(depth int) {
	for range depth {
		e.write(e.opts.indent)
	}
}

func (e *Encoder) doc(d *document.Document, depth int) {
	if items := d.Items(); len(items) > 0 {
		e.indent(depth)
		for i, item := range items {
			if i > 0 {
				e.write(" ")
			}
			e.write(FormatScalar(item))
		}
		e.write("\n")
	}

	for key, v := range d.All() {
		if key == document.AnonymousKey {
			for _, elem := range v.(document.Sequence) {
				e.value("", elem, depth)
			}
			continue
		}
		if seq, ok := v.(document.Sequence); ok {
			for _, elem := range seq {
				e.value(key, elem, depth)
			}
			continue
		}
		e.value(key, v, depth)
	}
}

// value writes one entry. An empty key writes the value bare, which is only
// valid for blocks and spans.
func (e *Encoder) value(key string, v document.Value, depth int) {
	e.indent(depth)
	if key != "" {
		e.write(FormatKey(key))
		e.write("=")
	}

	switch val := v.(type) {
	case *document.Block:
		if key != "" {
			e.write("\n")
			e.indent(depth)
		}
		e.write("{\n")
		e.doc(val.Doc, depth+1)
		e.indent(depth)
		e.write("}\n")
	case document.Unparsed:
		e.write(val.Text)
		e.write("\n")
	case document.Scalar:
		e.write(FormatScalar(val))
		e.write("\n")
	}
}

// FormatScalar returns the text form of a scalar:
//   - Bool is yes or no
//   - Integer is base 10
//   - Float is the shortest decimal that still contains a '.'
//   - String is quoted
//   - Identifier is written as is
func FormatScalar(v document.Scalar) string {
	switch val := v.(type) {
	case document.Bool:
		if val {
			return "yes"
		}
		return "no"
	case document.Integer:
		return strconv.FormatInt(int64(val), 10)
	case document.Float:
		return document.FormatFloat(float64(val))
	case document.String:
		return Quote(string(val))
	case document.Identifier:
		return string(val)
	}
	return ""
}

// FormatKey returns key as written before '='. Keys that would not read
// back as a single bare token are quoted.
func FormatKey(key string) string {
	for i := 0; i < len(key); i++ {
		if isBreak(key[i]) {
			return Quote(key)
		}
	}
	return key
}

// Quote wraps s in double quotes. A quote is escaped, and a backslash is
// doubled only where the parser would otherwise read it as an escape: before
// a quote or another backslash, or at the end of the string.
func Quote(s string) string {
	if !strings.ContainsAny(s, `"\`) {
		return `"` + s + `"`
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			if i+1 == len(s) || s[i+1] == '"' || s[i+1] == '\\' {
				b.WriteString(`\\`)
			} else {
				b.WriteByte(c)
			}
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
