package document

import (
	"fmt"
	"strconv"
	"strings"
)

// Escape escapes a key for use as a path segment.
// Per RFC 6901 "~" is encoded as "~0" and "/" as "~1".
func Escape(key string) string {
	key = strings.ReplaceAll(key, "~", "~0")
	return strings.ReplaceAll(key, "/", "~1")
}

// Unescape reverses Escape.
func Unescape(segment string) string {
	segment = strings.ReplaceAll(segment, "~1", "/")
	return strings.ReplaceAll(segment, "~0", "~")
}

// BuildPath constructs a path from keys and sequence indexes.
//
//	BuildPath("player", "", 0, "country") -> "/player//0/country"
func BuildPath(keys ...any) string {
	if len(keys) == 0 {
		return ""
	}
	var b strings.Builder
	for _, key := range keys {
		b.WriteByte('/')
		switch v := key.(type) {
		case string:
			b.WriteString(Escape(v))
		case int:
			b.WriteString(strconv.Itoa(v))
		default:
			b.WriteString(Escape(fmt.Sprint(v)))
		}
	}
	return b.String()
}

// ParsePath splits a path into unescaped segments. The empty path refers to
// the whole document; any other path must start with "/".
func ParsePath(path string) ([]string, error) {
	if path == "" {
		return []string{}, nil
	}
	if !strings.HasPrefix(path, "/") {
		return nil, &InvalidPathError{Path: path, Reason: "must start with '/'"}
	}
	parts := strings.Split(path[1:], "/")
	for i, p := range parts {
		parts[i] = Unescape(p)
	}
	return parts, nil
}

func parseIndex(segment string, n int) (int, bool) {
	if segment == "" {
		return 0, false
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	i, err := strconv.Atoi(segment)
	if err != nil || i >= n {
		return 0, false
	}
	return i, true
}

// Lookup returns the value at path. The empty path returns the document
// itself wrapped in a Block.
func (d *Document) Lookup(path string) (Value, error) {
	segments, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	var current Value = &Block{Doc: d}
	for i, seg := range segments {
		next, err := step(current, seg, segments[:i+1])
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

func step(current Value, seg string, walked []string) (Value, error) {
	switch c := current.(type) {
	case *Block:
		v, ok := c.Doc.Get(seg)
		if !ok {
			return nil, &PathNotFoundError{Path: joinSegments(walked)}
		}
		return v, nil
	case Sequence:
		idx, ok := parseIndex(seg, len(c))
		if !ok {
			return nil, &PathNotFoundError{Path: joinSegments(walked)}
		}
		return c[idx], nil
	default:
		return nil, &TypeMismatchError{
			Path:     joinSegments(walked[:len(walked)-1]),
			Expected: "block or sequence",
			Actual:   current.Kind().String(),
		}
	}
}

func joinSegments(segments []string) string {
	keys := make([]any, len(segments))
	for i, s := range segments {
		keys[i] = s
	}
	return BuildPath(keys...)
}

// SetPath replaces the value at path. Missing keys along the way are created
// as empty blocks; sequence indexes must already exist. Replacing an
// element of the anonymous sequence requires a *Block.
func (d *Document) SetPath(path string, v Value) error {
	segments, err := ParsePath(path)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return &InvalidPathError{Path: path, Reason: "cannot set root document"}
	}

	var current Value = &Block{Doc: d}
	parentKey := ""
	for i, seg := range segments[:len(segments)-1] {
		if b, ok := current.(*Block); ok && !b.Doc.Has(seg) && seg != AnonymousKey {
			child := NewBlock(nil)
			if err := b.Doc.Set(seg, child); err != nil {
				return err
			}
			current, parentKey = child, seg
			continue
		}
		next, err := step(current, seg, segments[:i+1])
		if err != nil {
			return err
		}
		if _, isSeq := current.(Sequence); !isSeq {
			parentKey = seg
		}
		current = next
	}

	last := segments[len(segments)-1]
	switch c := current.(type) {
	case *Block:
		return c.Doc.Set(last, v)
	case Sequence:
		idx, ok := parseIndex(last, len(c))
		if !ok {
			return &PathNotFoundError{Path: path}
		}
		if parentKey == AnonymousKey {
			switch v.(type) {
			case *Block, Unparsed:
			default:
				return InvalidAt(path, "anonymous entries must be blocks, got "+v.Kind().String())
			}
		}
		c[idx] = v
		return nil
	default:
		return &TypeMismatchError{
			Path:     joinSegments(segments[:len(segments)-1]),
			Expected: "block or sequence",
			Actual:   current.Kind().String(),
		}
	}
}

// DeletePath removes the value at path. Removing an element of a named
// sequence that leaves one value collapses the sequence back to that value;
// removing the last anonymous block removes the anonymous key. Missing paths
// are not an error.
func (d *Document) DeletePath(path string) error {
	segments, err := ParsePath(path)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return &InvalidPathError{Path: path, Reason: "cannot delete root document"}
	}

	parentSegs := segments[:len(segments)-1]
	last := segments[len(segments)-1]

	if len(parentSegs) >= 1 {
		// Deleting a sequence element needs the owning document and key.
		ownerPath := joinSegments(parentSegs[:len(parentSegs)-1])
		owner, err := d.Lookup(ownerPath)
		if err != nil {
			return ignoreNotFound(err)
		}
		ob, ok := owner.(*Block)
		if ok {
			key := parentSegs[len(parentSegs)-1]
			if seq, isSeq := ob.Doc.entries[key].(Sequence); isSeq {
				idx, ok := parseIndex(last, len(seq))
				if !ok {
					return nil
				}
				rest := append(seq[:idx:idx], seq[idx+1:]...)
				switch {
				case len(rest) == 0:
					ob.Doc.Delete(key)
				case len(rest) == 1 && key != AnonymousKey:
					ob.Doc.entries[key] = rest[0]
				default:
					ob.Doc.entries[key] = rest
				}
				return nil
			}
		}
	}

	parent, err := d.Lookup(joinSegments(parentSegs))
	if err != nil {
		return ignoreNotFound(err)
	}
	b, ok := parent.(*Block)
	if !ok {
		return &TypeMismatchError{Path: joinSegments(parentSegs), Expected: "block", Actual: parent.Kind().String()}
	}
	b.Doc.Delete(last)
	return nil
}

func ignoreNotFound(err error) error {
	if _, ok := err.(*PathNotFoundError); ok {
		return nil
	}
	return err
}
