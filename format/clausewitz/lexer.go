package clausewitz

import (
	"strconv"
	"strings"

	"github.com/yacchi/clausewitz/document"
)

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// isBreak reports whether c ends a bare token.
func isBreak(c byte) bool {
	switch c {
	case '{', '}', '=', '"', '#':
		return true
	}
	return isSpace(c)
}

// scanner walks the input byte by byte. Every token it returns is a
// substring of src.
type scanner struct {
	src string
	pos int
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.src)
}

func (s *scanner) peek() byte {
	return s.src[s.pos]
}

// skipSpace skips whitespace only.
func (s *scanner) skipSpace() {
	for s.pos < len(s.src) && isSpace(s.src[s.pos]) {
		s.pos++
	}
}

// skipTrivia skips whitespace and '#' comments.
func (s *scanner) skipTrivia() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case isSpace(c):
			s.pos++
		case c == '#':
			s.skipComment()
		default:
			return
		}
	}
}

func (s *scanner) skipComment() {
	if i := strings.IndexByte(s.src[s.pos:], '\n'); i >= 0 {
		s.pos += i + 1
		return
	}
	s.pos = len(s.src)
}

// bare consumes a run of non-break bytes.
func (s *scanner) bare() string {
	start := s.pos
	for s.pos < len(s.src) && !isBreak(s.src[s.pos]) {
		s.pos++
	}
	return s.src[start:s.pos]
}

// assignment reports whether the next non-space byte is '=' and consumes
// it and the space before it if so.
func (s *scanner) assignment() bool {
	i := s.pos
	for i < len(s.src) && isSpace(s.src[i]) {
		i++
	}
	if i < len(s.src) && s.src[i] == '=' {
		s.pos = i + 1
		return true
	}
	return false
}

// quoted consumes a quoted string starting at the opening quote and returns
// its unescaped content. ok is false when the input ends first.
func (s *scanner) quoted() (content string, ok bool) {
	start := s.pos + 1
	escaped := false
	i := start
	for i < len(s.src) {
		switch s.src[i] {
		case '\\':
			escaped = true
			i += 2
			continue
		case '"':
			s.pos = i + 1
			raw := s.src[start:i]
			if !escaped {
				return raw, true
			}
			return unescape(raw), true
		}
		i++
	}
	return "", false
}

// skipQuoted advances past a quoted string without decoding it.
func (s *scanner) skipQuoted() bool {
	for i := s.pos + 1; i < len(s.src); i++ {
		switch s.src[i] {
		case '\\':
			i++
		case '"':
			s.pos = i + 1
			return true
		}
	}
	return false
}

// unescape resolves \" and \\. Any other backslash pair is kept as written.
func unescape(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c == '\\' && i+1 < len(raw) {
			next := raw[i+1]
			if next == '"' || next == '\\' {
				b.WriteByte(next)
			} else {
				b.WriteByte(c)
				b.WriteByte(next)
			}
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// ParseScalar classifies a bare token:
//   - "yes" and "no" are Bool
//   - -?[0-9]+\.[0-9]* is Float
//   - -?[0-9]+ is Integer
//   - anything else, including numbers out of range, is Identifier
func ParseScalar(token string) document.Scalar {
	switch token {
	case "yes":
		return document.Bool(true)
	case "no":
		return document.Bool(false)
	}

	switch numericShape(token) {
	case shapeInteger:
		if n, err := strconv.ParseInt(token, 10, 64); err == nil {
			return document.Integer(n)
		}
	case shapeFloat:
		if f, err := strconv.ParseFloat(token, 64); err == nil {
			return document.Float(f)
		}
	}
	return document.Identifier(token)
}

type shape uint8

const (
	shapeOther shape = iota
	shapeInteger
	shapeFloat
)

func numericShape(tok string) shape {
	i := 0
	if i < len(tok) && tok[i] == '-' {
		i++
	}
	digits := 0
	for i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
		i++
		digits++
	}
	if digits == 0 {
		return shapeOther
	}
	if i == len(tok) {
		return shapeInteger
	}
	if tok[i] != '.' {
		return shapeOther
	}
	i++
	for i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
		i++
	}
	if i != len(tok) {
		return shapeOther
	}
	return shapeFloat
}
