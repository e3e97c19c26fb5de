package document

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEscapeRoundTrip(t *testing.T) {
	tests := []struct {
		key     string
		escaped string
	}{
		{"simple", "simple"},
		{"a/b", "a~1b"},
		{"a~b", "a~0b"},
		{"~/", "~0~1"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := Escape(tt.key); got != tt.escaped {
				t.Errorf("Escape(%q) = %q, want %q", tt.key, got, tt.escaped)
			}
			if got := Unescape(tt.escaped); got != tt.key {
				t.Errorf("Unescape(%q) = %q, want %q", tt.escaped, got, tt.key)
			}
		})
	}
}

func TestBuildAndParsePath(t *testing.T) {
	tests := []struct {
		keys []any
		path string
		segs []string
	}{
		{nil, "", []string{}},
		{[]any{"player", "", 0, "country"}, "/player//0/country", []string{"player", "", "0", "country"}},
		{[]any{"a/b"}, "/a~1b", []string{"a/b"}},
		{[]any{""}, "/", []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := BuildPath(tt.keys...); got != tt.path {
				t.Errorf("BuildPath() = %q, want %q", got, tt.path)
			}
			segs, err := ParsePath(tt.path)
			if err != nil {
				t.Fatalf("ParsePath() error = %v", err)
			}
			if diff := cmp.Diff(tt.segs, segs); diff != "" {
				t.Errorf("ParsePath() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := ParsePath("no/slash"); err == nil {
		t.Error("ParsePath(no/slash) error = nil")
	}
}

// buildSave returns:
//
//	player={ { name="Ruler" country=0 } }
//	country={ 0={ energy=100.5 } }
//	technology="tech_a"
//	technology="tech_b"
func buildSave() *Document {
	ruler := New()
	_ = ruler.Insert("name", String("Ruler"))
	_ = ruler.Insert("country", Integer(0))
	player := New()
	player.AppendAnonymous(NewBlock(ruler))

	c0 := New()
	_ = c0.Insert("energy", Float(100.5))
	countries := New()
	_ = countries.Insert("0", NewBlock(c0))

	doc := New()
	_ = doc.Insert("player", NewBlock(player))
	_ = doc.Insert("country", NewBlock(countries))
	_ = doc.Insert("technology", String("tech_a"))
	_ = doc.Insert("technology", String("tech_b"))
	return doc
}

func TestLookup(t *testing.T) {
	doc := buildSave()

	tests := []struct {
		path string
		want Value
	}{
		{"/player//0/country", Integer(0)},
		{"/player//0/name", String("Ruler")},
		{"/country/0/energy", Float(100.5)},
		{"/technology/1", String("tech_b")},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := doc.Lookup(tt.path)
			if err != nil {
				t.Fatalf("Lookup() error = %v", err)
			}
			if !Equal(got, tt.want) {
				t.Errorf("Lookup() = %#v, want %#v", got, tt.want)
			}
		})
	}

	root, err := doc.Lookup("")
	if err != nil {
		t.Fatalf("Lookup(root) error = %v", err)
	}
	if b, ok := root.(*Block); !ok || b.Doc != doc {
		t.Errorf("Lookup(root) = %#v, want block wrapping the document", root)
	}
}

func TestLookupErrors(t *testing.T) {
	doc := buildSave()

	tests := []struct {
		path   string
		target any
	}{
		{"/missing", new(*PathNotFoundError)},
		{"/technology/5", new(*PathNotFoundError)},
		{"/technology/x", new(*PathNotFoundError)},
		{"/technology/0/name", new(*TypeMismatchError)},
		{"missing", new(*InvalidPathError)},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := doc.Lookup(tt.path)
			if err == nil {
				t.Fatal("Lookup() error = nil")
			}
			if !errors.As(err, tt.target) {
				t.Errorf("Lookup() error = %T, want %T", err, tt.target)
			}
		})
	}
}

func TestSetPath(t *testing.T) {
	doc := buildSave()

	if err := doc.SetPath("/country/0/energy", Float(9999)); err != nil {
		t.Fatalf("SetPath() error = %v", err)
	}
	if v, _ := doc.Lookup("/country/0/energy"); v != Float(9999) {
		t.Errorf("energy = %v, want 9999", v)
	}

	if err := doc.SetPath("/technology/0", String("tech_c")); err != nil {
		t.Fatalf("SetPath(sequence element) error = %v", err)
	}
	if v, _ := doc.Lookup("/technology/0"); v != String("tech_c") {
		t.Errorf("technology/0 = %v, want tech_c", v)
	}

	if err := doc.SetPath("/new/nested/key", Bool(true)); err != nil {
		t.Fatalf("SetPath(create intermediates) error = %v", err)
	}
	if v, _ := doc.Lookup("/new/nested/key"); v != Bool(true) {
		t.Errorf("new/nested/key = %v, want yes", v)
	}

	if err := doc.SetPath("/player//0", Integer(1)); err == nil {
		t.Error("SetPath(anonymous element, scalar) error = nil, want StructureError")
	}
	if err := doc.SetPath("/technology/7", String("x")); err == nil {
		t.Error("SetPath(out of range) error = nil")
	}
	if err := doc.SetPath("", Integer(1)); err == nil {
		t.Error("SetPath(root) error = nil")
	}
}

func TestDeletePath(t *testing.T) {
	doc := buildSave()

	if err := doc.DeletePath("/technology/0"); err != nil {
		t.Fatalf("DeletePath() error = %v", err)
	}
	v, _ := doc.Get("technology")
	if v != String("tech_b") {
		t.Errorf("technology after deleting one of two = %#v, want collapsed tech_b", v)
	}

	if err := doc.DeletePath("/player//0"); err != nil {
		t.Fatalf("DeletePath(anonymous) error = %v", err)
	}
	if player, _ := doc.Lookup("/player"); player.(*Block).Doc.Has(AnonymousKey) {
		t.Error("anonymous key kept after deleting its last block")
	}

	if err := doc.DeletePath("/country/0/energy"); err != nil {
		t.Fatalf("DeletePath(nested) error = %v", err)
	}
	if _, err := doc.Lookup("/country/0/energy"); err == nil {
		t.Error("energy still present after DeletePath")
	}

	if err := doc.DeletePath("/does/not/exist"); err != nil {
		t.Errorf("DeletePath(missing) error = %v, want nil", err)
	}
}

func TestPatchSet_ApplyTo(t *testing.T) {
	doc := buildSave()

	var ps PatchSet
	ps.Add("/technology", String("tech_c"))
	ps.Replace("/country/0/energy", Float(1))
	ps.Remove("/player")
	if ps.Len() != 3 || ps.IsEmpty() {
		t.Fatalf("Len() = %d, want 3", ps.Len())
	}

	if err := ps.ApplyTo(doc); err != nil {
		t.Fatalf("ApplyTo() error = %v", err)
	}

	tech, _ := doc.Get("technology")
	want := Sequence{String("tech_a"), String("tech_b"), String("tech_c")}
	if !Equal(tech, want) {
		t.Errorf("technology = %#v, want %#v", tech, want)
	}
	if doc.Has("player") {
		t.Error("player still present")
	}

	bad := PatchSet{NewAddPatch("/technology/0/x", Integer(1))}
	if err := bad.ApplyTo(doc); err == nil {
		t.Error("ApplyTo(add under scalar) error = nil")
	}
}
