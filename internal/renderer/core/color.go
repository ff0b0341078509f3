package core

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color represents a color value.
// Supports true color (RGB) and terminal palette colors.
type Color struct {
	R, G, B uint8
	// If Indexed is true, R contains the palette index (0-255).
	Indexed bool
	// Default indicates this is the terminal's default color.
	Default bool
}

// ColorDefault represents the terminal's default color.
var ColorDefault = Color{Default: true}

// Common colors.
var (
	ColorBlack = Color{R: 0, G: 0, B: 0}
	ColorWhite = Color{R: 255, G: 255, B: 255}
	ColorRed   = Color{R: 255, G: 0, B: 0}
	ColorGray  = Color{R: 128, G: 128, B: 128}
)

// ColorFromRGB creates a true color from RGB components.
func ColorFromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// ColorFromIndex creates an indexed palette color.
func ColorFromIndex(index uint8) Color {
	return Color{R: index, Indexed: true}
}

// ColorFromHex parses "#RRGGBB" or "#RGB"; the leading '#' is optional.
// "default" and the empty string yield ColorDefault.
func ColorFromHex(hex string) (Color, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" || strings.EqualFold(hex, "default") {
		return ColorDefault, nil
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}

	c, err := colorful.Hex(hex)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	return ColorFromColorful(c), nil
}

// ColorFromColorful converts a colorful.Color, clamping out-of-gamut values.
func ColorFromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return Color{R: r, G: g, B: b}
}

// Colorful returns the color in colorful's representation.
// Default and indexed colors have no RGB value and return ok=false.
func (c Color) Colorful() (colorful.Color, bool) {
	if c.Default || c.Indexed {
		return colorful.Color{}, false
	}
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}, true
}

// IsDefault returns true if this is the default/transparent color.
func (c Color) IsDefault() bool {
	return c.Default
}

// Equals returns true if two colors are equal.
func (c Color) Equals(other Color) bool {
	if c.Default || other.Default {
		return c.Default == other.Default
	}
	if c.Indexed != other.Indexed {
		return false
	}
	if c.Indexed {
		return c.R == other.R
	}
	return c.R == other.R && c.G == other.G && c.B == other.B
}

// String returns a string representation of the color.
func (c Color) String() string {
	switch {
	case c.Default:
		return "default"
	case c.Indexed:
		return fmt.Sprintf("idx(%d)", c.R)
	}
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Blend mixes c toward other in CIE-L*a*b* space. amount 0 yields c and 1
// yields other. Colors without an RGB value switch at the midpoint.
func (c Color) Blend(other Color, amount float64) Color {
	a, okA := c.Colorful()
	b, okB := other.Colorful()
	if !okA || !okB {
		if amount < 0.5 {
			return c
		}
		return other
	}
	return ColorFromColorful(a.BlendLab(b, amount))
}

// Lighten blends the color toward white.
func (c Color) Lighten(amount float64) Color {
	return c.Blend(ColorWhite, amount)
}

// Darken blends the color toward black.
func (c Color) Darken(amount float64) Color {
	return c.Blend(ColorBlack, amount)
}

// IsLight reports whether the color is light enough to need dark text on
// top of it. Default and indexed colors are treated as dark.
func (c Color) IsLight() bool {
	cc, ok := c.Colorful()
	if !ok {
		return false
	}
	l, _, _ := cc.Lab()
	return l > 0.6
}

// Contrast returns black or white, whichever reads better on c.
func (c Color) Contrast() Color {
	if c.IsLight() {
		return ColorBlack
	}
	return ColorWhite
}
