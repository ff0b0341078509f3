package core

import "strings"

// Attribute is a set of text attributes.
type Attribute uint16

// Attribute bits.
const (
	AttrNone Attribute = 0
	AttrBold Attribute = 1 << (iota - 1)
	AttrDim
	AttrUnderline
	// AttrReverse swaps foreground and background.
	AttrReverse
)

var attrNames = []struct {
	attr Attribute
	name string
}{
	{AttrBold, "bold"},
	{AttrDim, "dim"},
	{AttrUnderline, "underline"},
	{AttrReverse, "reverse"},
}

// Has reports whether attr is set.
func (a Attribute) Has(attr Attribute) bool { return a&attr != 0 }

// String lists the set attributes joined by "|", or "none".
func (a Attribute) String() string {
	var names []string
	for _, n := range attrNames {
		if a.Has(n.attr) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Style is how one cell is drawn.
type Style struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// DefaultStyle uses the terminal's own colors.
func DefaultStyle() Style {
	return Style{Foreground: ColorDefault, Background: ColorDefault}
}

// NewStyle returns a style with no attributes.
func NewStyle(fg, bg Color) Style {
	return Style{Foreground: fg, Background: bg}
}

// OnBackground pairs bg with black or white text, whichever reads better.
func OnBackground(bg Color) Style {
	return NewStyle(bg.Contrast(), bg)
}

func (s Style) WithForeground(fg Color) Style {
	s.Foreground = fg
	return s
}

func (s Style) WithBackground(bg Color) Style {
	s.Background = bg
	return s
}

// With adds attrs.
func (s Style) With(attrs Attribute) Style {
	s.Attributes |= attrs
	return s
}

func (s Style) Bold() Style      { return s.With(AttrBold) }
func (s Style) Dim() Style       { return s.With(AttrDim) }
func (s Style) Underline() Style { return s.With(AttrUnderline) }
func (s Style) Reverse() Style   { return s.With(AttrReverse) }

// Highlighted is s while its control is held down. An RGB background is
// lightened by amount and the text set bold; other styles fall back to
// reverse video.
func (s Style) Highlighted(amount float64) Style {
	bg := s.Background
	if bg.IsDefault() || bg.Indexed || amount <= 0 {
		return s.Reverse()
	}
	return OnBackground(bg.Lighten(amount)).Bold()
}

// Equals compares colors and attributes.
func (s Style) Equals(other Style) bool {
	return s.Attributes == other.Attributes &&
		s.Foreground.Equals(other.Foreground) &&
		s.Background.Equals(other.Background)
}
