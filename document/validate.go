package document

import (
	"math"
	"strconv"
	"strings"
)

// tokenBreakers are the bytes that end a bare token in the text format. An
// identifier containing one of them could not be read back.
const tokenBreakers = " \t\r\n{}=\"#"

// Validate checks the invariants a serializer relies on:
//   - sequences are non-empty and do not directly contain sequences
//   - the anonymous key holds a sequence of blocks or unparsed spans
//   - blocks are non-nil and own a document
//   - floats are finite
//   - identifiers are non-empty bare tokens
//
// Documents produced by the parser always pass.
func (d *Document) Validate() error {
	return d.validate("")
}

func (d *Document) validate(prefix string) error {
	if d == nil {
		return InvalidAt(prefix, "nil document")
	}
	for _, key := range d.keys {
		path := prefix + "/" + Escape(key)
		v := d.entries[key]

		if key == AnonymousKey {
			seq, ok := v.(Sequence)
			if !ok {
				return InvalidAt(path, "anonymous entry must be a sequence, got "+kindOf(v))
			}
			if len(seq) == 0 {
				return InvalidAt(path, "empty sequence")
			}
			for i, elem := range seq {
				elemPath := path + "/" + strconv.Itoa(i)
				switch e := elem.(type) {
				case *Block:
					if err := validateBlock(e, elemPath); err != nil {
						return err
					}
				case Unparsed:
				default:
					return InvalidAt(elemPath, "anonymous entries must be blocks, got "+kindOf(elem))
				}
			}
			continue
		}

		if err := validateValue(v, path, false); err != nil {
			return err
		}
	}
	for i, item := range d.items {
		if err := validateValue(item, prefix+"/#items/"+strconv.Itoa(i), false); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(v Value, path string, inSequence bool) error {
	switch val := v.(type) {
	case nil:
		return InvalidAt(path, "nil value")
	case Float:
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return InvalidAt(path, "float is not finite")
		}
	case Identifier:
		if val == "" || strings.ContainsAny(string(val), tokenBreakers) {
			return InvalidAt(path, "identifier is empty or contains a delimiter")
		}
	case Integer, Bool, String, Unparsed:
	case *Block:
		return validateBlock(val, path)
	case Sequence:
		if inSequence {
			return InvalidAt(path, "nested sequence")
		}
		if len(val) == 0 {
			return InvalidAt(path, "empty sequence")
		}
		for i, elem := range val {
			if err := validateValue(elem, path+"/"+strconv.Itoa(i), true); err != nil {
				return err
			}
		}
	default:
		return InvalidAt(path, "unknown value type")
	}
	return nil
}

func validateBlock(b *Block, path string) error {
	if b == nil || b.Doc == nil {
		return InvalidAt(path, "nil block")
	}
	return b.Doc.validate(path)
}

func kindOf(v Value) string {
	if v == nil {
		return "nil"
	}
	return v.Kind().String()
}
