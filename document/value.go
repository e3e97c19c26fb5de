package document

import (
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	// KindInteger is a signed 64-bit integer scalar.
	KindInteger Kind = iota + 1
	// KindFloat is a double precision scalar.
	KindFloat
	// KindBool is a yes/no scalar.
	KindBool
	// KindString is a quoted string scalar.
	KindString
	// KindIdentifier is a bare token that is not a number or a boolean.
	KindIdentifier
	// KindBlock is a nested scope.
	KindBlock
	// KindSequence is the ordered collection produced by a repeated key.
	KindSequence
	// KindUnparsed is a block captured verbatim by a shallow parse.
	KindUnparsed
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindIdentifier:
		return "identifier"
	case KindBlock:
		return "block"
	case KindSequence:
		return "sequence"
	case KindUnparsed:
		return "unparsed"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// IsScalar reports whether values of this kind are leaf literals.
func (k Kind) IsScalar() bool {
	return k >= KindInteger && k <= KindIdentifier
}

// Value is one of Integer, Float, Bool, String, Identifier, *Block, Sequence
// or Unparsed. The set is closed; consumers switch on the concrete type.
type Value interface {
	Kind() Kind
	isValue()
}

// Scalar is the subset of Value that can appear on the right-hand side of
// key=value without braces.
type Scalar interface {
	Value
	isScalar()
}

// Integer is a whole number literal such as -7.
type Integer int64

// Float is a decimal literal such as 12.5.
type Float float64

// Bool is the yes/no literal.
type Bool bool

// String is the content of a quoted literal with the quotes removed and
// \" and \\ unescaped.
type String string

// Identifier is a bare token kept verbatim, e.g. tech_lasers or 2200.01.01.
type Identifier string

// Sequence holds the values of a key that occurred more than once in the
// same scope, in document order. It is never empty.
type Sequence []Value

// Block is a nested scope. It exclusively owns its Document.
type Block struct {
	Doc *Document
}

// NewBlock wraps doc in a Block. A nil doc is replaced with an empty one.
func NewBlock(doc *Document) *Block {
	if doc == nil {
		doc = New()
	}
	return &Block{Doc: doc}
}

// Unparsed is a block that a shallow parse captured without recursing into
// it. Text runs from the opening brace to the matching closing brace
// inclusive; Offset is the byte position of the opening brace in the input
// the span was taken from.
type Unparsed struct {
	Text   string
	Offset int
}

func (Integer) Kind() Kind    { return KindInteger }
func (Float) Kind() Kind      { return KindFloat }
func (Bool) Kind() Kind       { return KindBool }
func (String) Kind() Kind     { return KindString }
func (Identifier) Kind() Kind { return KindIdentifier }
func (*Block) Kind() Kind     { return KindBlock }
func (Sequence) Kind() Kind   { return KindSequence }
func (Unparsed) Kind() Kind   { return KindUnparsed }

func (Integer) isValue()    {}
func (Float) isValue()      {}
func (Bool) isValue()       {}
func (String) isValue()     {}
func (Identifier) isValue() {}
func (*Block) isValue()     {}
func (Sequence) isValue()   {}
func (Unparsed) isValue()   {}

func (Integer) isScalar()    {}
func (Float) isScalar()      {}
func (Bool) isScalar()       {}
func (String) isScalar()     {}
func (Identifier) isScalar() {}

// FormatFloat returns the shortest decimal form of f that still contains a
// '.', so that it reads back as a float in every format this module writes.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// Len returns the number of elements in the sequence.
func (s Sequence) Len() int {
	return len(s)
}

// Equal reports whether a and b hold the same variant with structurally
// equal contents. Float comparison is exact.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case Integer, Float, Bool, String, Identifier, Unparsed:
		return a == b
	case *Block:
		bv, ok := b.(*Block)
		if !ok {
			return false
		}
		if av == nil || bv == nil {
			return av == bv
		}
		return av.Doc.Equal(bv.Doc)
	case Sequence:
		bv, ok := b.(Sequence)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// CloneValue returns a deep copy of v. Scalars are returned as-is.
func CloneValue(v Value) Value {
	switch val := v.(type) {
	case *Block:
		if val == nil {
			return val
		}
		return &Block{Doc: val.Doc.Clone()}
	case Sequence:
		dst := make(Sequence, len(val))
		for i, elem := range val {
			dst[i] = CloneValue(elem)
		}
		return dst
	default:
		return v
	}
}
