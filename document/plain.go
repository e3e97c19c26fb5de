package document

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
)

// ItemsKey is the key under which Plain places keyless items of a block that
// also has keyed entries, and under which FromPlain reads them back. A
// quoted "#" is a legal key in the text format, so documents holding one
// cannot take the Plain shape; ValidatePlain rejects them.
const ItemsKey = "#"

// Member is one entry of an OrderedMap.
type Member struct {
	Key   string
	Value any
}

// OrderedMap is the ordered counterpart of map[string]any. Encoders for
// formats whose objects keep member order (JSON, JSONC, YAML) work on it so
// exported files list keys in document order.
type OrderedMap []Member

// Get returns the value of the first member named key.
func (m OrderedMap) Get(key string) (any, bool) {
	for _, mem := range m {
		if mem.Key == key {
			return mem.Value, true
		}
	}
	return nil, false
}

// ValidatePlain is Validate plus the rule the Plain shape adds: no block may
// have a key named ItemsKey. Encoders that go through Plain or Ordered call
// it instead of Validate, so such a key fails with a *StructureError rather
// than being merged with the keyless items.
func (d *Document) ValidatePlain() error {
	if err := d.Validate(); err != nil {
		return err
	}
	return d.checkItemsKey("")
}

func (d *Document) checkItemsKey(prefix string) error {
	for key, v := range d.All() {
		path := prefix + "/" + Escape(key)
		if key == ItemsKey {
			return InvalidAt(path, `key "#" is reserved for keyless items outside the text format`)
		}
		if err := checkItemsKeyValue(v, path); err != nil {
			return err
		}
	}
	return nil
}

func checkItemsKeyValue(v Value, path string) error {
	switch val := v.(type) {
	case *Block:
		return val.Doc.checkItemsKey(path)
	case Sequence:
		for i, elem := range val {
			if err := checkItemsKeyValue(elem, path+"/"+strconv.Itoa(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Plain converts d into the generic map[string]any / []any shape used by
// encoders and struct decoders. Key order is lost.
//
// Conversion rules:
//   - Integer -> int64, Float -> float64, Bool -> bool
//   - String and Identifier -> string
//   - Block -> map[string]any, or []any when it only holds keyless items
//   - Sequence -> []any
//   - Unparsed -> the raw span text
func Plain(d *Document) map[string]any {
	out := make(map[string]any, d.Len()+1)
	for k, v := range d.All() {
		out[k] = toPlain(v, false)
	}
	if items := d.Items(); len(items) > 0 {
		out[ItemsKey] = plainItems(items)
	}
	return out
}

// PlainValue converts a single value, see Plain.
func PlainValue(v Value) any {
	return toPlain(v, false)
}

// Ordered is Plain with blocks converted to OrderedMap instead of
// map[string]any. Keyless items of a mixed block come first under ItemsKey.
func Ordered(d *Document) OrderedMap {
	out := make(OrderedMap, 0, d.Len()+1)
	if items := d.Items(); len(items) > 0 {
		out = append(out, Member{Key: ItemsKey, Value: plainItems(items)})
	}
	for k, v := range d.All() {
		out = append(out, Member{Key: k, Value: toPlain(v, true)})
	}
	return out
}

// OrderedValue converts a single value, see Ordered.
func OrderedValue(v Value) any {
	return toPlain(v, true)
}

func toPlain(v Value, ordered bool) any {
	switch val := v.(type) {
	case Integer:
		return int64(val)
	case Float:
		return float64(val)
	case Bool:
		return bool(val)
	case String:
		return string(val)
	case Identifier:
		return string(val)
	case *Block:
		if val == nil {
			return nil
		}
		if val.Doc.Len() == 0 && len(val.Doc.items) > 0 {
			return plainItems(val.Doc.items)
		}
		if ordered {
			return Ordered(val.Doc)
		}
		return Plain(val.Doc)
	case Sequence:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = toPlain(elem, ordered)
		}
		return out
	case Unparsed:
		return val.Text
	default:
		return nil
	}
}

func plainItems(items []Scalar) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = toPlain(item, false)
	}
	return out
}

// FromPlain builds a Document from the generic shape produced by decoding
// another format. It reverses Plain where the shapes are unambiguous:
//   - a map (map[string]any or OrderedMap) becomes a block; map[string]any
//     keys are taken in sorted order
//   - a list holding only scalars becomes a block of keyless items
//   - any other list under a key repeats the key once per element
//   - a list under ItemsKey becomes the keyless items of the enclosing block
//   - a list under the empty key becomes anonymous blocks
//   - numbers become Integer when they are whole and fit in int64 and were
//     not written as floats; strings become String; null is an empty block
//
// Sequences of scalars and item-only blocks share the list shape, so they
// come back as item blocks.
func FromPlain(m map[string]any) (*Document, error) {
	return fromMap("", m)
}

// FromOrdered is FromPlain for an OrderedMap; key order is kept.
func FromOrdered(m OrderedMap) (*Document, error) {
	return fromMap("", m)
}

// FromPlainValue converts a single decoded value, see FromPlain.
func FromPlainValue(v any) (Value, error) {
	return fromPlain("", v)
}

func fromMap(path string, m any) (*Document, error) {
	doc := New()
	put := func(key string, v any) error {
		return insertPlain(doc, path, key, v)
	}
	switch mv := m.(type) {
	case map[string]any:
		keys := make([]string, 0, len(mv))
		for k := range mv {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if err := put(k, mv[k]); err != nil {
				return nil, err
			}
		}
	case OrderedMap:
		for _, mem := range mv {
			if err := put(mem.Key, mem.Value); err != nil {
				return nil, err
			}
		}
	}
	return doc, nil
}

func insertPlain(doc *Document, parent, key string, v any) error {
	path := parent + "/" + Escape(key)
	list, isList := v.([]any)

	switch {
	case key == ItemsKey && isList:
		for i, elem := range list {
			s, err := fromPlain(path+"/"+strconv.Itoa(i), elem)
			if err != nil {
				return err
			}
			item, ok := s.(Scalar)
			if !ok {
				return InvalidAt(path, "items must be scalars")
			}
			doc.AppendItem(item)
		}
		return nil

	case key == AnonymousKey:
		if !isList {
			list = []any{v}
		}
		for i, elem := range list {
			val, err := fromPlain(path+"/"+strconv.Itoa(i), elem)
			if err != nil {
				return err
			}
			if err := doc.Insert(AnonymousKey, val); err != nil {
				return err
			}
		}
		return nil

	case isList && len(list) > 0 && !allScalars(list):
		for i, elem := range list {
			val, err := fromPlain(path+"/"+strconv.Itoa(i), elem)
			if err != nil {
				return err
			}
			if err := doc.Insert(key, val); err != nil {
				return err
			}
		}
		return nil
	}

	val, err := fromPlain(path, v)
	if err != nil {
		return err
	}
	return doc.Insert(key, val)
}

func allScalars(list []any) bool {
	for _, elem := range list {
		switch elem.(type) {
		case map[string]any, OrderedMap, []any, nil:
			return false
		}
	}
	return true
}

func fromPlain(path string, v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return NewBlock(nil), nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case int:
		return Integer(val), nil
	case int8:
		return Integer(val), nil
	case int16:
		return Integer(val), nil
	case int32:
		return Integer(val), nil
	case int64:
		return Integer(val), nil
	case uint:
		return fromUint(path, uint64(val))
	case uint8:
		return Integer(val), nil
	case uint16:
		return Integer(val), nil
	case uint32:
		return Integer(val), nil
	case uint64:
		return fromUint(path, val)
	case float32:
		return fromFloat(path, float64(val))
	case float64:
		return fromFloat(path, val)
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return Integer(n), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, InvalidAt(path, fmt.Sprintf("number %s out of range", val))
		}
		return fromFloat(path, f)
	case map[string]any, OrderedMap:
		doc, err := fromMap(path, val)
		if err != nil {
			return nil, err
		}
		return NewBlock(doc), nil
	case []any:
		doc := New()
		for i, elem := range val {
			elemPath := path + "/" + strconv.Itoa(i)
			child, err := fromPlain(elemPath, elem)
			if err != nil {
				return nil, err
			}
			switch c := child.(type) {
			case Scalar:
				doc.AppendItem(c)
			case *Block:
				doc.AppendAnonymous(c)
			default:
				return nil, InvalidAt(elemPath, "unsupported list element "+c.Kind().String())
			}
		}
		return NewBlock(doc), nil
	case fmt.Stringer:
		// Dates and times decoded by TOML and CBOR.
		return String(val.String()), nil
	default:
		return nil, InvalidAt(path, fmt.Sprintf("unsupported type %T", v))
	}
}

func fromUint(path string, n uint64) (Value, error) {
	if n > math.MaxInt64 {
		return nil, InvalidAt(path, fmt.Sprintf("integer %d overflows int64", n))
	}
	return Integer(n), nil
}

func fromFloat(path string, f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, InvalidAt(path, "float is not finite")
	}
	return Float(f), nil
}
