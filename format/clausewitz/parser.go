package clausewitz

import (
	"github.com/yacchi/clausewitz/document"
)

// Parse parses Clausewitz text into a Document.
//
// In ModeFull (the default) every block is parsed recursively, up to the
// configured maximum depth. In ModeShallow only top-level entries are
// parsed; top-level blocks become document.Unparsed spans that can be
// resolved later with ParseSpan or Resolve. ModeAuto picks shallow for
// inputs above the shallow threshold.
//
// Any error is a *ParseError and no partial document is returned.
//
// Example:
//
//	doc, err := clausewitz.Parse(data)
//	if err != nil {
//		return err
//	}
//	v, _ := doc.Lookup("/player//0/country")
func Parse(data []byte, opts ...Option) (*document.Document, error) {
	return ParseString(string(data), opts...)
}

// ParseString is Parse for string input. Strings in the returned document
// share memory with text.
func ParseString(text string, opts ...Option) (*document.Document, error) {
	o := newOptions(opts)

	mode := o.mode
	if mode == ModeAuto {
		mode = ModeFull
		if len(text) > o.shallowThreshold {
			mode = ModeShallow
			o.log().Debug("large input, using shallow parse",
				"size", len(text), "threshold", o.shallowThreshold)
		}
	}

	p := &parser{
		s:        scanner{src: text},
		maxDepth: o.maxDepth,
		shallow:  mode == ModeShallow,
	}
	doc := document.New()
	if err := p.scope(doc, 0, -1); err != nil {
		return nil, err
	}
	return doc, nil
}

// ParseValue parses the text of a single value as it would appear after
// "key=": a bare literal, a quoted string or a braced block. Anything but
// comments and whitespace after the value fails with TrailingInput; offsets
// in errors refer to text.
//
//	ParseValue("12.5")        -> Float(12.5)
//	ParseValue(`"hello"`)     -> String("hello")
//	ParseValue("{ a=1 b=2 }") -> *Block
//	ParseValue("1 2")         -> TrailingInput error
func ParseValue(text string, opts ...Option) (document.Value, error) {
	o := newOptions(opts)
	p := &parser{s: scanner{src: text}, maxDepth: o.maxDepth}
	s := &p.s

	s.skipTrivia()
	if s.eof() {
		return nil, p.fail(MissingValue, s.pos, "")
	}

	var v document.Value
	at := s.pos
	switch s.peek() {
	case '}':
		return nil, p.fail(UnexpectedClose, at, "")
	case '=':
		return nil, p.fail(MissingValue, at, "")
	case '{':
		if p.maxDepth < 1 {
			return nil, p.fail(MaxDepthExceeded, at, "")
		}
		s.pos++
		child := document.New()
		if err := p.scope(child, 1, at); err != nil {
			return nil, err
		}
		v = document.NewBlock(child)
	case '"':
		str, ok := s.quoted()
		if !ok {
			return nil, p.fail(UnterminatedString, at, "")
		}
		v = document.String(str)
	default:
		v = ParseScalar(s.bare())
	}

	s.skipTrivia()
	if !s.eof() {
		return nil, p.fail(TrailingInput, s.pos, "")
	}
	return v, nil
}

type parser struct {
	s        scanner
	maxDepth int
	shallow  bool

	// base is added to reported offsets and depth0 is the depth of the
	// outermost scope; both are non-zero only for span re-parses.
	base   int
	depth0 int
}

func (p *parser) fail(kind ErrorKind, offset int, key string) error {
	e := &ParseError{Kind: kind, Offset: p.base + offset, Key: key}
	if p.depth0 == 0 {
		e.Line, e.Column = position(p.s.src, offset)
	}
	return e
}

// scope parses entries into doc until the '}' closing it, or until end of
// input for the outermost scope. open is the offset of the opening brace,
// or -1 for the outermost scope.
func (p *parser) scope(doc *document.Document, depth, open int) error {
	s := &p.s
	var key string
	keyAt := -1

	assign := func(v document.Value) {
		if keyAt >= 0 {
			// Insert only fails for the reserved anonymous key, which a
			// parsed key can never be.
			_ = doc.Insert(key, v)
			keyAt = -1
			return
		}
		switch val := v.(type) {
		case *document.Block:
			doc.AppendAnonymous(val)
		case document.Unparsed:
			_ = doc.Insert(document.AnonymousKey, val)
		case document.Scalar:
			doc.AppendItem(val)
		}
	}

	for {
		s.skipTrivia()
		if s.eof() {
			if keyAt >= 0 {
				return p.fail(MissingValue, keyAt, key)
			}
			if open >= 0 {
				return p.fail(UnterminatedBlock, open, "")
			}
			return nil
		}

		switch c := s.peek(); c {
		case '}':
			if open < 0 {
				return p.fail(UnexpectedClose, s.pos, "")
			}
			if keyAt >= 0 {
				return p.fail(MissingValue, keyAt, key)
			}
			s.pos++
			return nil

		case '{':
			at := s.pos
			if p.shallow && depth == p.depth0 {
				end, kind, errAt := matchBrace(s.src, at)
				if kind != 0 {
					return p.fail(kind, errAt, "")
				}
				s.pos = end
				assign(document.Unparsed{Text: s.src[at:end], Offset: p.base + at})
				continue
			}
			if depth+1 > p.maxDepth {
				return p.fail(MaxDepthExceeded, at, "")
			}
			s.pos++
			child := document.New()
			if err := p.scope(child, depth+1, at); err != nil {
				return err
			}
			assign(document.NewBlock(child))

		case '"':
			at := s.pos
			str, ok := s.quoted()
			if !ok {
				return p.fail(UnterminatedString, at, "")
			}
			// An empty quoted string cannot be a key: the empty key is
			// reserved for anonymous blocks.
			if str != "" && s.assignment() {
				if keyAt >= 0 {
					return p.fail(MissingValue, keyAt, key)
				}
				key, keyAt = str, at
				continue
			}
			assign(document.String(str))

		case '=':
			// Stray assignment with nothing usable before it.
			s.pos++

		default:
			at := s.pos
			tok := s.bare()
			if s.assignment() {
				if keyAt >= 0 {
					return p.fail(MissingValue, keyAt, key)
				}
				key, keyAt = tok, at
				continue
			}
			assign(ParseScalar(tok))
		}
	}
}

// matchBrace returns the offset just past the '}' matching the '{' at open.
// Braces inside quoted strings and comments do not count. On failure kind
// is non-zero and at is the offset to report.
func matchBrace(src string, open int) (end int, kind ErrorKind, at int) {
	s := scanner{src: src, pos: open}
	depth := 0
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case '{':
			depth++
			s.pos++
		case '}':
			depth--
			s.pos++
			if depth == 0 {
				return s.pos, 0, 0
			}
		case '"':
			quote := s.pos
			if !s.skipQuoted() {
				return 0, UnterminatedString, quote
			}
		case '#':
			s.skipComment()
		default:
			s.pos++
		}
	}
	return 0, UnterminatedBlock, open
}
