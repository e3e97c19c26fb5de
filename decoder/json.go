package decoder

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSON decodes through encoding/json. Field types must match the data
// exactly and keys without a matching field are rejected, so a save block
// either fits the struct or fails. Use Mapstructure for lenient decoding.
func JSON(m map[string]any, target any) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode block as json: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("decode json into %T: %w", target, err)
	}
	return nil
}
