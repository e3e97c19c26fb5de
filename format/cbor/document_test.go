package cbor

import (
	"bytes"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/yacchi/clausewitz/cwtest"
	"github.com/yacchi/clausewitz/document"
)

func TestCodec_Format(t *testing.T) {
	codec := NewCodec()
	if codec.Format() != document.FormatCBOR {
		t.Errorf("Format() = %v, want %v", codec.Format(), document.FormatCBOR)
	}
	if codec.Lossless() {
		t.Error("Lossless() = true, want false")
	}
}

func TestEncode_Deterministic(t *testing.T) {
	a := document.New()
	_ = a.Insert("zeta", document.Integer(1))
	_ = a.Insert("alpha", document.String("x"))
	b := document.New()
	_ = b.Insert("alpha", document.String("x"))
	_ = b.Insert("zeta", document.Integer(1))

	da, err := Encode(a)
	if err != nil {
		t.Fatalf("Encode(a) error = %v", err)
	}
	db, err := Encode(b)
	if err != nil {
		t.Fatalf("Encode(b) error = %v", err)
	}
	if !bytes.Equal(da, db) {
		t.Errorf("Encode() not deterministic:\n%x\n%x", da, db)
	}
}

func TestDecode_RootNotMap(t *testing.T) {
	data, err := cbor.Marshal([]int{1, 2})
	if err != nil {
		t.Fatalf("cbor.Marshal() error = %v", err)
	}
	if _, err := Decode(data); err == nil {
		t.Error("Decode(array) succeeded, want error")
	}
}

func TestDecode_Truncated(t *testing.T) {
	doc := document.New()
	_ = doc.Insert("name", document.String("Earth"))
	data, err := Encode(doc)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if _, err := Decode(data[:len(data)-2]); err == nil {
		t.Error("Decode(truncated) succeeded, want error")
	}
}

func TestDecode_Empty(t *testing.T) {
	doc, err := Decode(nil)
	if err != nil {
		t.Fatalf("Decode(nil) error = %v", err)
	}
	if doc.Len() != 0 {
		t.Errorf("Decode(nil) keys = %v", doc.Keys())
	}
}

// TestCodec_Compliance runs the standard cwtest compliance tests.
func TestCodec_Compliance(t *testing.T) {
	cwtest.NewCodecTester(t, NewCodec(),
		cwtest.SkipKeyOrderTest("deterministic CBOR sorts map keys"),
	).TestAll()
}
