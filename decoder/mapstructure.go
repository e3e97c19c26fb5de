package decoder

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Mapstructure decodes with github.com/mitchellh/mapstructure using the
// `json` struct tags. Input is weakly typed: "50" fills an int field and
// "yes" or "1" a bool. Strings like "5s" decode into time.Duration and
// comma-separated strings into slices.
func Mapstructure(m map[string]any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           target,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(m); err != nil {
		return fmt.Errorf("failed to decode to target type: %w", err)
	}
	return nil
}

// Strict is Mapstructure but fails on keys that match no field.
func Strict(m map[string]any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		TagName:          "json",
		ErrorUnused:      true,
		Result:           target,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(m); err != nil {
		return fmt.Errorf("failed to decode to target type: %w", err)
	}
	return nil
}
