package colour

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const defaultSwatchWidth = 8

// Swatch returns a solid block of width cells filled with c for terminal previews.
func Swatch(c RGB, width int) string {
	if width <= 0 {
		width = defaultSwatchWidth
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(c.Hex())).
		Render(strings.Repeat(" ", width))
}

// SwatchWithText renders text on a block of c, picking black or white text for contrast.
func SwatchWithText(c RGB, text string, width int) string {
	if width <= 0 {
		width = defaultSwatchWidth
	}
	fg := "#ffffff"
	if Luminance(c) > 0.5 {
		fg = "#000000"
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(c.Hex())).
		Foreground(lipgloss.Color(fg)).
		Width(width).
		MaxWidth(width).
		Render(text)
}

// Luminance returns the relative luminance of c in [0, 1] per WCAG 2.x.
func Luminance(c RGB) float64 {
	return 0.2126*linearise(c.R) + 0.7152*linearise(c.G) + 0.0722*linearise(c.B)
}

func linearise(v uint8) float64 {
	s := float64(v) / 255
	if s <= 0.03928 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}
