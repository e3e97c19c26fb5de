package decoder

import (
	"strings"
	"testing"
	"time"

	"github.com/yacchi/clausewitz/format/clausewitz"
)

type budget struct {
	Energy   float64 `json:"energy"`
	Minerals float64 `json:"minerals"`
}

func TestJSON(t *testing.T) {
	t.Run("block", func(t *testing.T) {
		doc, err := clausewitz.ParseString("energy=120.5 minerals=-3")
		if err != nil {
			t.Fatal(err)
		}
		var got budget
		if err := Document(doc, &got, JSON); err != nil {
			t.Fatalf("Document(JSON) error = %v", err)
		}
		if got != (budget{Energy: 120.5, Minerals: -3}) {
			t.Errorf("decoded = %+v", got)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		var got budget
		err := JSON(map[string]any{"energy": 1.0, "food": 2.0}, &got)
		if err == nil || !strings.Contains(err.Error(), "food") {
			t.Fatalf("JSON() error = %v, want unknown field error", err)
		}
	})

	t.Run("type mismatch", func(t *testing.T) {
		var got budget
		err := JSON(map[string]any{"energy": "lots"}, &got)
		if err == nil || !strings.Contains(err.Error(), "decode json into *decoder.budget") {
			t.Fatalf("JSON() error = %v, want decode error", err)
		}
	})

	t.Run("unencodable", func(t *testing.T) {
		var got budget
		err := JSON(map[string]any{"energy": func() {}}, &got)
		if err == nil || !strings.Contains(err.Error(), "encode block as json") {
			t.Fatalf("JSON() error = %v, want encode error", err)
		}
	})

	t.Run("non-pointer target", func(t *testing.T) {
		if err := JSON(map[string]any{"energy": 1.0}, budget{}); err == nil {
			t.Fatal("JSON() error = nil, want error")
		}
	})
}

type settings struct {
	MaxDepth int           `json:"max_depth"`
	Backup   bool          `json:"backup"`
	Interval time.Duration `json:"interval"`
	Streams  []string      `json:"streams"`
}

func TestMapstructure(t *testing.T) {
	tests := []struct {
		name    string
		in      map[string]any
		want    settings
		wantErr bool
	}{
		{
			name: "typed",
			in:   map[string]any{"max_depth": int64(40), "backup": true, "interval": "2s", "streams": []any{"meta"}},
			want: settings{MaxDepth: 40, Backup: true, Interval: 2 * time.Second, Streams: []string{"meta"}},
		},
		{
			name: "weak strings",
			in:   map[string]any{"max_depth": "60", "backup": "1", "streams": "meta,gamestate"},
			want: settings{MaxDepth: 60, Backup: true, Streams: []string{"meta", "gamestate"}},
		},
		{
			name:    "bad int",
			in:      map[string]any{"max_depth": "deep"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got settings
			err := Mapstructure(tt.in, &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Mapstructure() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.MaxDepth != tt.want.MaxDepth || got.Backup != tt.want.Backup ||
				got.Interval != tt.want.Interval || strings.Join(got.Streams, ",") != strings.Join(tt.want.Streams, ",") {
				t.Errorf("Mapstructure() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStrict(t *testing.T) {
	var got settings
	if err := Strict(map[string]any{"max_depth": 1}, &got); err != nil {
		t.Fatalf("Strict() error = %v", err)
	}
	if err := Strict(map[string]any{"max_dept": 1}, &got); err == nil {
		t.Error("Strict() with unknown key succeeded, want error")
	}
}

func TestDocument(t *testing.T) {
	doc, err := clausewitz.ParseString(`version="Cepheus v3.4.5" date="2230.01.01" required_dlcs={ "Utopia" "Leviathans" } player_portrait=human`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	var meta struct {
		Version  string   `json:"version"`
		Date     string   `json:"date"`
		DLCs     []string `json:"required_dlcs"`
		Portrait string   `json:"player_portrait"`
	}
	if err := Document(doc, &meta, nil); err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	if meta.Version != "Cepheus v3.4.5" || meta.Date != "2230.01.01" || meta.Portrait != "human" {
		t.Errorf("Document() = %+v", meta)
	}
	if len(meta.DLCs) != 2 || meta.DLCs[1] != "Leviathans" {
		t.Errorf("DLCs = %v, want [Utopia Leviathans]", meta.DLCs)
	}

	var strict struct {
		Version string `json:"version"`
	}
	if err := Document(doc, &strict, Strict); err == nil {
		t.Error("Document(Strict) with extra keys succeeded, want error")
	}
}

func TestDocument_RejectsItemsKey(t *testing.T) {
	doc, err := clausewitz.ParseString(`a={ 1 2 "#"=3 }`)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	err = Document(doc, &got, nil)
	if err == nil || !strings.Contains(err.Error(), `"/a/#"`) {
		t.Fatalf("Document() error = %v, want structure error at /a/#", err)
	}
}
