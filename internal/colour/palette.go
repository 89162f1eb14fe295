// Package colour provides palette reduction and colour formatting.
package colour

import (
	"encoding/json"
	"fmt"
	"image/color"
	"strings"
)

// Sample is a single pixel's colour as seen by the reducers. Alpha is dropped.
type Sample struct {
	R, G, B uint8
}

// SampleOf converts c to a Sample using its non-premultiplied channel values,
// so partially transparent pixels keep their stored colour.
func SampleOf(c color.Color) Sample {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Sample{R: n.R, G: n.G, B: n.B}
}

// RGB represents a colour in RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB colour as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB colour as a hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// Palette is an ordered set of representative colours, most dominant first.
type Palette struct {
	Colours []RGB
	// Weights holds each colour's share of the input samples; it sums to 1.
	Weights []float64
}

// NewPalette creates a new Palette with the given colours.
func NewPalette(colours []RGB) *Palette {
	return &Palette{Colours: colours}
}

// NewPaletteWithWeights creates a Palette whose colours carry population weights.
func NewPaletteWithWeights(colours []RGB, weights []float64) *Palette {
	return &Palette{Colours: colours, Weights: weights}
}

// Len returns the number of colours in the palette.
func (p *Palette) Len() int {
	return len(p.Colours)
}

// Get returns the colour at the specified index.
func (p *Palette) Get(index int) (RGB, error) {
	if index < 0 || index >= len(p.Colours) {
		return RGB{}, fmt.Errorf("index out of bounds: %d (palette has %d colours)", index, len(p.Colours))
	}
	return p.Colours[index], nil
}

// Weight returns the population share of the colour at index, or 0 when unknown.
func (p *Palette) Weight(index int) float64 {
	if index < 0 || index >= len(p.Weights) {
		return 0
	}
	return p.Weights[index]
}

// ToHex converts the palette colours to hex strings.
func (p *Palette) ToHex() []string {
	hexColours := make([]string, len(p.Colours))
	for i, c := range p.Colours {
		hexColours[i] = c.Hex()
	}
	return hexColours
}

// All returns an iterator over all colours in the palette.
func (p *Palette) All() func(func(int, RGB) bool) {
	return func(yield func(int, RGB) bool) {
		for i, c := range p.Colours {
			if !yield(i, c) {
				return
			}
		}
	}
}

// ColourJSON represents a colour in JSON output format.
type ColourJSON struct {
	Hex    string  `json:"hex"`
	RGB    RGB     `json:"rgb"`
	Weight float64 `json:"weight,omitempty"`
}

// ToJSON converts the palette to indented JSON.
func (p *Palette) ToJSON() ([]byte, error) {
	colours := make([]ColourJSON, len(p.Colours))
	for i, c := range p.Colours {
		colours[i] = ColourJSON{Hex: c.Hex(), RGB: c, Weight: p.Weight(i)}
	}
	return json.MarshalIndent(struct {
		Count   int          `json:"count"`
		Colours []ColourJSON `json:"colours"`
	}{Count: len(colours), Colours: colours}, "", "  ")
}

// String returns a human-readable string representation of the palette.
func (p *Palette) String() string {
	if len(p.Colours) == 0 {
		return "Empty palette"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Palette with %d colours:\n", len(p.Colours))
	for i, c := range p.Colours {
		fmt.Fprintf(&sb, "  %2d: %s (%s)\n", i+1, c.Hex(), c.String())
	}
	return sb.String()
}
