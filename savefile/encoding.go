package savefile

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding is the character encoding of a stream on disk. Streams are
// always held as UTF-8 in memory.
type Encoding int

const (
	// EncodingUTF8 decodes streams as UTF-8. A leading byte order mark is
	// removed and written back on save. Invalid bytes become U+FFFD.
	EncodingUTF8 Encoding = iota

	// EncodingWindows1252 decodes streams as Windows-1252, used by older
	// Paradox titles.
	EncodingWindows1252

	// EncodingAuto picks UTF-8 for streams that are valid UTF-8 and
	// Windows-1252 otherwise, per stream.
	EncodingAuto
)

func (e Encoding) String() string {
	switch e {
	case EncodingUTF8:
		return "utf-8"
	case EncodingWindows1252:
		return "windows-1252"
	case EncodingAuto:
		return "auto"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// ParseEncoding converts a name as used in configuration files.
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "", "utf-8", "utf8":
		return EncodingUTF8, nil
	case "windows-1252", "cp1252", "latin1":
		return EncodingWindows1252, nil
	case "auto":
		return EncodingAuto, nil
	default:
		return 0, fmt.Errorf("unknown encoding %q", s)
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decode converts raw stream bytes to UTF-8 text. It returns the concrete
// encoding used and whether a byte order mark was present.
func decode(raw []byte, enc Encoding) (text []byte, used Encoding, bom bool, err error) {
	bom = bytes.HasPrefix(raw, utf8BOM)
	if enc == EncodingAuto {
		enc = EncodingUTF8
		if !utf8.Valid(bytes.TrimPrefix(raw, utf8BOM)) {
			enc = EncodingWindows1252
		}
	}

	switch enc {
	case EncodingWindows1252:
		text, err = charmap.Windows1252.NewDecoder().Bytes(bytes.TrimPrefix(raw, utf8BOM))
	default:
		text, _, err = transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
	}
	return text, enc, bom, err
}

// encode converts UTF-8 text back to the stream's encoding.
func encode(text []byte, enc Encoding, bom bool) ([]byte, error) {
	var out []byte
	switch enc {
	case EncodingWindows1252:
		b, err := charmap.Windows1252.NewEncoder().Bytes(text)
		if err != nil {
			return nil, err
		}
		out = b
	default:
		out = text
	}
	if bom {
		out = append(append([]byte{}, utf8BOM...), out...)
	}
	return out, nil
}
