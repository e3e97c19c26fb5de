package savefile

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yacchi/clausewitz/document"
	"github.com/yacchi/clausewitz/format/clausewitz"
	srcbytes "github.com/yacchi/clausewitz/source/bytes"
	"github.com/yacchi/clausewitz/source/fs"
)

const (
	metaText      = "version=\"Cepheus v3.4.5\"\nname=\"United Nations of Earth\"\ndate=\"2230.01.01\"\n"
	gamestateText = "date=\"2230.01.01\"\nplayer={\n\t{\n\t\tname=\"unknown\"\n\t\tcountry=0\n\t}\n}\ncountry={\n\t0={\n\t\tname=\"Earth\"\n\t}\n}\n"
)

type entry struct {
	name string
	data []byte
}

func makeZip(t *testing.T, entries ...entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("Create(%q) error = %v", e.name, err)
		}
		if _, err := w.Write(e.data); err != nil {
			t.Fatalf("Write(%q) error = %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return buf.Bytes()
}

func sampleZip(t *testing.T) []byte {
	return makeZip(t,
		entry{StreamMeta, []byte(metaText)},
		entry{StreamGamestate, []byte(gamestateText)},
	)
}

func TestIsArchive(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"zip", sampleZip(t), true},
		{"empty zip", makeZip(t), true},
		{"text", []byte(gamestateText), false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsArchive(tt.data); got != tt.want {
				t.Errorf("IsArchive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRead(t *testing.T) {
	a, err := Read(sampleZip(t))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if a.IsPlain() {
		t.Error("IsPlain() = true for a zip")
	}
	names := a.Names()
	if len(names) != 2 || names[0] != StreamMeta || names[1] != StreamGamestate {
		t.Fatalf("Names() = %v, want [meta gamestate]", names)
	}
	text, err := a.Stream(StreamMeta)
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if string(text) != metaText {
		t.Errorf("Stream(meta) = %q, want %q", text, metaText)
	}
}

func TestRead_Invalid(t *testing.T) {
	data := append([]byte("PK\x03\x04"), "garbage"...)
	if _, err := Read(data); err == nil {
		t.Error("Read(corrupt zip) succeeded, want error")
	}
}

func TestOpen(t *testing.T) {
	a, err := Open(context.Background(), srcbytes.New(sampleZip(t)))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if len(a.Names()) != 2 {
		t.Errorf("Names() = %v", a.Names())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Open(ctx, srcbytes.New(sampleZip(t))); !errors.Is(err, context.Canceled) {
		t.Errorf("Open(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestStream_NotFound(t *testing.T) {
	a, err := Read(sampleZip(t))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	_, err = a.Stream("missing")
	var nf *StreamNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Stream() error = %v, want *StreamNotFoundError", err)
	}
	if nf.Name != "missing" || len(nf.Available) != 2 {
		t.Errorf("StreamNotFoundError = %+v", nf)
	}

	_, err = a.Parse("missing")
	if !errors.As(err, &nf) {
		t.Errorf("Parse() error = %v, want *StreamNotFoundError", err)
	}
}

func TestParse(t *testing.T) {
	a, err := Read(sampleZip(t))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	doc, err := a.Parse(StreamGamestate)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	v, err := doc.Lookup("/country/0/name")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if v != document.String("Earth") {
		t.Errorf("country/0/name = %#v, want Earth", v)
	}
}

func TestParse_Error(t *testing.T) {
	a, err := Read(makeZip(t, entry{StreamGamestate, []byte("a={")}))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	_, err = a.Parse(StreamGamestate)
	var pe *clausewitz.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Parse() error = %v, want *clausewitz.ParseError", err)
	}
}

func TestParseAll(t *testing.T) {
	a, err := Read(sampleZip(t))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	docs, err := a.ParseAll(context.Background())
	if err != nil {
		t.Fatalf("ParseAll() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("ParseAll() returned %d documents, want 2", len(docs))
	}
	if v, _ := docs[StreamMeta].Get("name"); v != document.String("United Nations of Earth") {
		t.Errorf("meta name = %#v", v)
	}
	if v, _ := docs[StreamGamestate].Get("date"); v != document.String("2230.01.01") {
		t.Errorf("gamestate date = %#v", v)
	}
}

func TestParseAll_Error(t *testing.T) {
	a, err := Read(makeZip(t,
		entry{StreamMeta, []byte(metaText)},
		entry{StreamGamestate, []byte("a={ b=1")},
	))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if _, err := a.ParseAll(context.Background()); !errors.Is(err, clausewitz.ErrUnterminatedBlock) {
		t.Errorf("ParseAll() error = %v, want ErrUnterminatedBlock", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.ParseAll(ctx); err == nil {
		t.Error("ParseAll(cancelled) succeeded, want error")
	}
}

func TestEncoding_BOM(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, "name=\"Earth\"\n"...)
	a, err := Read(makeZip(t, entry{StreamMeta, raw}))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	text, _ := a.Stream(StreamMeta)
	if string(text) != "name=\"Earth\"\n" {
		t.Errorf("Stream() = %q, want the BOM removed", text)
	}

	data, err := a.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v", err)
	}
	got, err := readEntry(zr.File[0])
	if err != nil {
		t.Fatalf("readEntry() error = %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Errorf("written stream = %q, want %q", got, raw)
	}
}

func TestEncoding_Windows1252(t *testing.T) {
	raw := []byte("name=\"Caf\xe9\"\n")
	tests := []struct {
		name string
		enc  Encoding
		want string
	}{
		{"explicit", EncodingWindows1252, "name=\"Café\"\n"},
		{"auto", EncodingAuto, "name=\"Café\"\n"},
		{"utf-8 replaces", EncodingUTF8, "name=\"Caf\uFFFD\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Read(makeZip(t, entry{StreamMeta, raw}), WithEncoding(tt.enc))
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			text, _ := a.Stream(StreamMeta)
			if string(text) != tt.want {
				t.Errorf("Stream() = %q, want %q", text, tt.want)
			}
		})
	}

	// Windows-1252 streams are encoded back on write.
	a, err := Read(raw, WithEncoding(EncodingAuto))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	out, err := a.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	if !bytes.Equal(out, raw) {
		t.Errorf("Bytes() = %q, want %q", out, raw)
	}

	a.SetStream(StreamGamestate, []byte("name=\"地球\""))
	_, err = a.Bytes()
	var ee *EncodeError
	if !errors.As(err, &ee) {
		t.Errorf("Bytes() error = %v, want *EncodeError", err)
	}
}

func TestParseEncoding(t *testing.T) {
	tests := []struct {
		in      string
		want    Encoding
		wantErr bool
	}{
		{"", EncodingUTF8, false},
		{"utf-8", EncodingUTF8, false},
		{"cp1252", EncodingWindows1252, false},
		{"auto", EncodingAuto, false},
		{"ebcdic", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEncoding(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEncoding() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseEncoding() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlainText(t *testing.T) {
	a, err := Read([]byte(gamestateText))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !a.IsPlain() {
		t.Fatal("IsPlain() = false for text input")
	}
	if names := a.Names(); len(names) != 1 || names[0] != StreamGamestate {
		t.Fatalf("Names() = %v, want [gamestate]", names)
	}
	out, err := a.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	if string(out) != gamestateText {
		t.Errorf("Bytes() = %q, want the original text", out)
	}

	a.SetStream(StreamMeta, []byte(metaText))
	if a.IsPlain() {
		t.Error("IsPlain() = true after adding a second stream")
	}
	out, err = a.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	if !IsArchive(out) {
		t.Error("Bytes() after adding a stream is not an archive")
	}
}

func TestSetDocument_RoundTrip(t *testing.T) {
	a, err := Read(sampleZip(t))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	doc, err := a.Parse(StreamGamestate)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if err := doc.Set("date", document.String("2231.01.01")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := a.SetDocument(StreamGamestate, doc); err != nil {
		t.Fatalf("SetDocument() error = %v", err)
	}

	data, err := a.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	b, err := Read(data)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if names := b.Names(); len(names) != 2 || names[0] != StreamMeta {
		t.Errorf("Names() = %v, want original order", names)
	}
	got, err := b.Parse(StreamGamestate)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !got.Equal(doc) {
		t.Errorf("round trip changed the document:\n%v\nwant\n%v", document.Plain(got), document.Plain(doc))
	}
	meta, _ := b.Stream(StreamMeta)
	if string(meta) != metaText {
		t.Errorf("meta = %q, want it untouched", meta)
	}
}

func TestSetDocument_Invalid(t *testing.T) {
	doc := document.New()
	_ = doc.Set("broken", document.Sequence{})
	if err := New().SetDocument(StreamGamestate, doc); err == nil {
		t.Error("SetDocument(invalid) succeeded, want error")
	}
}

func TestSave_FileWithBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autosave.sav")
	original := sampleZip(t)
	if err := os.WriteFile(path, original, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	src := fs.New(path, fs.WithBackup(""))
	ctx := context.Background()
	a, err := Open(ctx, src)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	a.SetStream(StreamMeta, []byte("name=\"Renamed\"\n"))
	if err := a.Save(ctx, src); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	backup, err := os.ReadFile(src.BackupPath())
	if err != nil {
		t.Fatalf("ReadFile(backup) error = %v", err)
	}
	if !bytes.Equal(backup, original) {
		t.Error("backup differs from the original save")
	}
	b, err := Open(ctx, fs.New(path))
	if err != nil {
		t.Fatalf("Open() after save error = %v", err)
	}
	meta, _ := b.Stream(StreamMeta)
	if string(meta) != "name=\"Renamed\"\n" {
		t.Errorf("meta after save = %q", meta)
	}
}

func TestSave_ReadOnlySource(t *testing.T) {
	a := New()
	a.SetStream(StreamMeta, []byte(metaText))
	if err := a.Save(context.Background(), srcbytes.New(nil)); err == nil {
		t.Error("Save(read-only) succeeded, want error")
	}
}
