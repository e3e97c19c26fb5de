package document

// DocumentFormat names a text or binary format a Document can be written to
// or read from.
type DocumentFormat string

const (
	// FormatClausewitz is the native brace-delimited key=value text.
	FormatClausewitz DocumentFormat = "clausewitz"

	// FormatYAML represents YAML format (using gopkg.in/yaml.v3).
	FormatYAML DocumentFormat = "yaml"

	// FormatTOML represents TOML format (using github.com/pelletier/go-toml/v2).
	FormatTOML DocumentFormat = "toml"

	// FormatJSONC represents JSON with Comments (using github.com/tailscale/hujson).
	FormatJSONC DocumentFormat = "jsonc"

	// FormatJSON represents standard JSON.
	FormatJSON DocumentFormat = "json"

	// FormatCBOR represents deterministic CBOR (using github.com/fxamacker/cbor/v2).
	FormatCBOR DocumentFormat = "cbor"
)

// Codec converts Documents to and from one format.
// Each format package (clausewitz, yaml, toml, jsonc, json, cbor) provides one.
type Codec interface {
	// Format returns the format this codec handles.
	Format() DocumentFormat

	// Encode serializes doc.
	Encode(doc *Document) ([]byte, error)

	// Decode reads data into a new Document.
	Decode(data []byte) (*Document, error)

	// Lossless reports whether Decode(Encode(doc)) always equals doc.
	// Only the native format is lossless; the others go through the
	// Plain shape, see FromPlain.
	Lossless() bool
}
