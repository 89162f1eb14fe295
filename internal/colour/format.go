package colour

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jmylchreest/palettenode/internal/errdefs"
)

// OutputFormat selects how palette colours are rendered.
type OutputFormat string

const (
	// FormatHex renders colours as "#rrggbb" strings.
	FormatHex OutputFormat = "hex"

	// FormatRGB renders colours as {r, g, b} objects.
	FormatRGB OutputFormat = "rgb"
)

// DefaultOutputFormat is used when a request omits the format.
const DefaultOutputFormat = FormatHex

// ValidOutputFormats returns the supported output formats.
func ValidOutputFormats() []OutputFormat {
	return []OutputFormat{FormatHex, FormatRGB}
}

// ParseOutputFormat resolves a format name. The empty string selects DefaultOutputFormat.
func ParseOutputFormat(name string) (OutputFormat, error) {
	switch OutputFormat(name) {
	case "":
		return DefaultOutputFormat, nil
	case FormatHex, FormatRGB:
		return OutputFormat(name), nil
	default:
		return "", errdefs.InvalidParameter("outputFormat", "unsupported format %q (supported: hex, rgb)", name)
	}
}

// FormattedColor is a palette colour rendered for output: either a hex string
// or a structured RGB value. It marshals to a bare JSON string or object.
type FormattedColor struct {
	Hex string
	RGB *RGB
}

// String returns the hex form, or the rgb() form for structured colours.
func (f FormattedColor) String() string {
	if f.RGB != nil {
		return f.RGB.String()
	}
	return f.Hex
}

// MarshalJSON implements json.Marshaler.
func (f FormattedColor) MarshalJSON() ([]byte, error) {
	if f.RGB != nil {
		return json.Marshal(f.RGB)
	}
	return json.Marshal(f.Hex)
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FormattedColor) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var rgb RGB
		if err := json.Unmarshal(data, &rgb); err != nil {
			return fmt.Errorf("failed to decode rgb colour: %w", err)
		}
		*f = FormattedColor{RGB: &rgb}
		return nil
	}

	var hex string
	if err := json.Unmarshal(data, &hex); err != nil {
		return fmt.Errorf("failed to decode hex colour: %w", err)
	}
	*f = FormattedColor{Hex: hex}
	return nil
}

// Format renders every palette colour in the given mode, preserving order.
// Any mode other than FormatRGB renders hex.
func Format(p *Palette, mode OutputFormat) []FormattedColor {
	out := make([]FormattedColor, len(p.Colours))
	for i, c := range p.Colours {
		if mode == FormatRGB {
			rgb := c
			out[i] = FormattedColor{RGB: &rgb}
			continue
		}
		out[i] = FormattedColor{Hex: c.Hex()}
	}
	return out
}
