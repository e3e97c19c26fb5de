package json

import (
	"strings"
	"testing"

	"github.com/yacchi/clausewitz/cwtest"
	"github.com/yacchi/clausewitz/document"
)

func TestCodec_Format(t *testing.T) {
	codec := NewCodec()
	if codec.Format() != document.FormatJSON {
		t.Errorf("Format() = %v, want %v", codec.Format(), document.FormatJSON)
	}
}

func TestEncode_KeepsOrderAndFloats(t *testing.T) {
	doc := document.New()
	_ = doc.Insert("zeta", document.Float(3))
	_ = doc.Insert("alpha", document.Identifier("x"))

	out, err := Encode(doc)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	want := "{\n  \"zeta\": 3.0,\n  \"alpha\": \"x\"\n}\n"
	if string(out) != want {
		t.Errorf("Encode() = %q, want %q", out, want)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"array root", `[1, 2]`},
		{"truncated", `{"a": {`},
		{"scalar under anonymous key", `{"": [1]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.input)); err == nil {
				t.Error("Decode() error = nil")
			}
		})
	}

	doc, err := Decode([]byte(" \n"))
	if err != nil || doc.Len() != 0 {
		t.Errorf("Decode(blank) = %v, %v, want empty document", doc, err)
	}
}

func TestDecode_LargeIntegers(t *testing.T) {
	doc, err := Decode([]byte(`{"id": 9007199254740993, "ratio": 1e2}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if v, _ := doc.Get("id"); v != document.Integer(9007199254740993) {
		t.Errorf("id = %#v, want exact integer", v)
	}
	if v, _ := doc.Get("ratio"); v != document.Float(100) {
		t.Errorf("ratio = %#v, want 100.0", v)
	}
	if !strings.Contains(string(mustEncode(t, doc)), "9007199254740993") {
		t.Error("Encode() lost integer precision")
	}
}

func mustEncode(t *testing.T, doc *document.Document) []byte {
	t.Helper()
	out, err := Encode(doc)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return out
}

// TestCodec_Compliance runs the standard cwtest compliance tests.
func TestCodec_Compliance(t *testing.T) {
	cwtest.NewCodecTester(t, NewCodec()).TestAll()
}
