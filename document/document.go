// Package document provides the in-memory model of a parsed Clausewitz text
// document.
//
// A Document is an ordered mapping from key to Value. Keys keep the order of
// their first occurrence. Writing a key twice through Insert promotes the
// entry to a Sequence instead of overwriting it, which is how repeated keys
// such as
//
//	technology="tech_lasers"
//	technology="tech_shields"
//
// are represented. The empty key is reserved for anonymous blocks (blocks
// with no preceding key=), which always live in a Sequence of blocks.
//
// Paths into a document use JSON Pointer (RFC 6901) syntax. An empty segment
// selects the anonymous blocks and numeric segments index sequences:
//   - "/player//0/country" - country of the first anonymous block under player
//   - "/technology/1"      - second value of the repeated key technology
package document

import (
	"iter"
	"slices"
)

// AnonymousKey is the reserved key under which anonymous blocks are stored.
const AnonymousKey = ""

// Document is an ordered key/value scope.
//
// The zero value is not ready for use; call New.
type Document struct {
	keys    []string
	entries map[string]Value
	items   []Scalar
}

// New creates an empty Document.
func New() *Document {
	return &Document{
		entries: make(map[string]Value),
	}
}

// Len returns the number of distinct keys, including the anonymous key when
// the document holds anonymous blocks.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Keys returns the keys in first-occurrence order.
func (d *Document) Keys() []string {
	if d == nil {
		return nil
	}
	return slices.Clone(d.keys)
}

// Has reports whether key is present.
func (d *Document) Has(key string) bool {
	if d == nil {
		return false
	}
	_, ok := d.entries[key]
	return ok
}

// Get returns the value stored under key.
func (d *Document) Get(key string) (Value, bool) {
	if d == nil {
		return nil, false
	}
	v, ok := d.entries[key]
	return v, ok
}

// All iterates over the entries in key order.
func (d *Document) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if d == nil {
			return
		}
		for _, k := range d.keys {
			if !yield(k, d.entries[k]) {
				return
			}
		}
	}
}

// Insert stores v under key using the duplicate-key promotion rule: the
// first write stores v, the second turns the entry into Sequence{old, v},
// and later writes append to that sequence.
//
// Inserting under AnonymousKey appends to the anonymous blocks and fails
// with a StructureError unless v is a *Block or Unparsed.
func (d *Document) Insert(key string, v Value) error {
	if v == nil {
		return &StructureError{Path: BuildPath(key), Reason: "nil value"}
	}
	if key == AnonymousKey {
		return d.appendAnonymous(v)
	}

	existing, ok := d.entries[key]
	if !ok {
		d.keys = append(d.keys, key)
		d.entries[key] = v
		return nil
	}

	if seq, isSeq := existing.(Sequence); isSeq {
		d.entries[key] = append(seq, v)
		return nil
	}
	d.entries[key] = Sequence{existing, v}
	return nil
}

// AppendAnonymous adds b to the anonymous blocks of the document, creating
// the reserved entry on first use.
func (d *Document) AppendAnonymous(b *Block) {
	if b == nil {
		b = NewBlock(nil)
	}
	// cannot fail for a non-nil block
	_ = d.appendAnonymous(b)
}

func (d *Document) appendAnonymous(v Value) error {
	switch v.(type) {
	case *Block, Unparsed:
	default:
		return &StructureError{
			Path:   BuildPath(AnonymousKey),
			Reason: "anonymous entries must be blocks, got " + v.Kind().String(),
		}
	}

	existing, ok := d.entries[AnonymousKey]
	if !ok {
		d.keys = append(d.keys, AnonymousKey)
		d.entries[AnonymousKey] = Sequence{v}
		return nil
	}
	seq, _ := existing.(Sequence)
	d.entries[AnonymousKey] = append(seq, v)
	return nil
}

// Anonymous returns the anonymous blocks in document order. Unparsed spans
// stored by a shallow parse are skipped.
func (d *Document) Anonymous() []*Block {
	if d == nil {
		return nil
	}
	seq, _ := d.entries[AnonymousKey].(Sequence)
	blocks := make([]*Block, 0, len(seq))
	for _, v := range seq {
		if b, ok := v.(*Block); ok {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// AppendItem records a keyless scalar such as the 3 in "{ 1 2 3 }".
func (d *Document) AppendItem(s Scalar) {
	if s == nil {
		return
	}
	d.items = append(d.items, s)
}

// Items returns the keyless scalars in document order.
func (d *Document) Items() []Scalar {
	if d == nil {
		return nil
	}
	return slices.Clone(d.items)
}

// SetItems replaces the keyless scalars.
func (d *Document) SetItems(items []Scalar) {
	d.items = slices.Clone(items)
}

// Set stores v under key, replacing any existing value (including a
// promoted sequence) without changing the key's position.
func (d *Document) Set(key string, v Value) error {
	if v == nil {
		return &StructureError{Path: BuildPath(key), Reason: "nil value"}
	}
	if key == AnonymousKey {
		seq, ok := v.(Sequence)
		if !ok {
			return &StructureError{Path: BuildPath(key), Reason: "anonymous entry must be a sequence of blocks"}
		}
		for _, elem := range seq {
			switch elem.(type) {
			case *Block, Unparsed:
			default:
				return &StructureError{Path: BuildPath(key), Reason: "anonymous entries must be blocks, got " + elem.Kind().String()}
			}
		}
	}
	if _, ok := d.entries[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.entries[key] = v
	return nil
}

// Delete removes key. It is a no-op when the key is absent.
func (d *Document) Delete(key string) {
	if _, ok := d.entries[key]; !ok {
		return
	}
	delete(d.entries, key)
	d.keys = slices.DeleteFunc(d.keys, func(k string) bool { return k == key })
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	dst := &Document{
		keys:    slices.Clone(d.keys),
		entries: make(map[string]Value, len(d.entries)),
		items:   slices.Clone(d.items),
	}
	for k, v := range d.entries {
		dst.entries[k] = CloneValue(v)
	}
	return dst
}

// Equal reports whether d and other hold the same keys in the same order
// with structurally equal values and the same keyless items.
func (d *Document) Equal(other *Document) bool {
	if d.Len() != other.Len() || len(d.Items()) != len(other.Items()) {
		return false
	}
	if d == nil || other == nil {
		return true
	}
	for i, k := range d.keys {
		if other.keys[i] != k {
			return false
		}
		if !Equal(d.entries[k], other.entries[k]) {
			return false
		}
	}
	for i, item := range d.items {
		if !Equal(item, other.items[i]) {
			return false
		}
	}
	return true
}
