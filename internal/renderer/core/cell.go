package core

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Cell is one screen column. A wide character occupies its own cell plus
// a continuation cell with zero Rune and Width.
type Cell struct {
	Rune  rune
	Width int
	Style Style
}

// Blank is a space drawn in style.
func Blank(style Style) Cell {
	return Cell{Rune: ' ', Width: 1, Style: style}
}

// EmptyCell is a blank in the default style, the state of a cleared screen.
func EmptyCell() Cell {
	return Blank(DefaultStyle())
}

// Glyph is r drawn in style.
func Glyph(r rune, style Style) Cell {
	return Cell{Rune: r, Width: RuneWidth(r), Style: style}
}

func (c Cell) IsContinuation() bool {
	return c.Rune == 0 && c.Width == 0
}

func (c Cell) Equals(other Cell) bool {
	return c.Rune == other.Rune && c.Width == other.Width && c.Style.Equals(other.Style)
}

// RuneWidth is the number of columns r takes. Control characters take none.
func RuneWidth(r rune) int {
	if r < ' ' || r == 0x7F {
		return 0
	}
	return uniseg.StringWidth(string(r))
}

// StringWidth is the number of columns s takes.
func StringWidth(s string) int {
	return uniseg.StringWidth(s)
}

// CellsFromString lays s out one grapheme cluster per cell, keeping the
// first rune of each cluster. Zero-width clusters are dropped.
func CellsFromString(s string, style Style) []Cell {
	cells := make([]Cell, 0, len(s))
	state := -1
	for len(s) > 0 {
		var cluster string
		var width int
		cluster, s, width, state = uniseg.FirstGraphemeClusterInString(s, state)
		if width == 0 {
			continue
		}
		r := []rune(cluster)[0]
		cells = append(cells, Cell{Rune: r, Width: width, Style: style})
		for range width - 1 {
			cells = append(cells, Cell{})
		}
	}
	return cells
}

// StringFromCells joins the runes of cells, skipping continuations.
func StringFromCells(cells []Cell) string {
	var sb strings.Builder
	for _, c := range cells {
		if !c.IsContinuation() {
			sb.WriteRune(c.Rune)
		}
	}
	return sb.String()
}

// TailColumns returns the longest suffix of s that fits in width columns
// without splitting a wide character.
func TailColumns(s string, width int) string {
	if width <= 0 {
		return ""
	}
	cells := CellsFromString(s, Style{})
	start := max(len(cells)-width, 0)
	for start < len(cells) && cells[start].IsContinuation() {
		start++
	}
	return StringFromCells(cells[start:])
}
