package pixels

import (
	"fmt"
	"image"
	"image/color"

	"github.com/jmylchreest/palettenode/internal/colour"
)

// Grid is an immutable, row-major grid of non-premultiplied RGBA pixels.
type Grid struct {
	width  int
	height int
	pix    []uint8
}

// NewGrid copies img into a Grid. Images with no pixels are rejected.
func NewGrid(img image.Image) (*Grid, error) {
	if img == nil {
		return nil, fmt.Errorf("image is nil")
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("image has zero size (%dx%d)", w, h)
	}

	g := &Grid{width: w, height: h, pix: make([]uint8, w*h*4)}

	if src, ok := img.(*image.NRGBA); ok {
		for y := range h {
			start := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(g.pix[y*w*4:(y+1)*w*4], src.Pix[start:start+w*4])
		}
		return g, nil
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			g.pix[i], g.pix[i+1], g.pix[i+2], g.pix[i+3] = c.R, c.G, c.B, c.A
			i += 4
		}
	}
	return g, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Len returns the number of pixels.
func (g *Grid) Len() int { return g.width * g.height }

// At returns the pixel at column x, row y.
func (g *Grid) At(x, y int) color.NRGBA {
	i := (y*g.width + x) * 4
	return color.NRGBA{R: g.pix[i], G: g.pix[i+1], B: g.pix[i+2], A: g.pix[i+3]}
}

// Samples returns the colour of every pixel in row-major order. Alpha is
// dropped; a transparent pixel contributes its stored colour.
func (g *Grid) Samples() []colour.Sample {
	out := make([]colour.Sample, g.Len())
	for i := range out {
		p := g.pix[i*4:]
		out[i] = colour.Sample{R: p[0], G: p[1], B: p[2]}
	}
	return out
}
