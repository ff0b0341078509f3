package core

// ScreenRect is a half-open block of cells: rows Top through Bottom-1 and
// columns Left through Right-1. Coordinates follow the backend, x for
// columns and y for rows.
type ScreenRect struct {
	Top, Left, Bottom, Right int
}

// RectFromSize creates a rectangle from its top-left cell and size.
func RectFromSize(top, left, height, width int) ScreenRect {
	return ScreenRect{Top: top, Left: left, Bottom: top + height, Right: left + width}
}

// Width returns the number of columns, never negative.
func (r ScreenRect) Width() int {
	return max(r.Right-r.Left, 0)
}

// Height returns the number of rows, never negative.
func (r ScreenRect) Height() int {
	return max(r.Bottom-r.Top, 0)
}

// IsEmpty reports whether the rectangle covers no cell.
func (r ScreenRect) IsEmpty() bool {
	return r.Width() == 0 || r.Height() == 0
}

// ContainsCell reports whether the cell at column x, row y is inside r.
func (r ScreenRect) ContainsCell(x, y int) bool {
	return x >= r.Left && x < r.Right && y >= r.Top && y < r.Bottom
}

// Center returns the middle cell. Even sizes round toward the top left.
func (r ScreenRect) Center() (x, y int) {
	return r.Left + (r.Width()-1)/2, r.Top + (r.Height()-1)/2
}

// Shrink removes n cells from every side.
func (r ScreenRect) Shrink(n int) ScreenRect {
	return ScreenRect{Top: r.Top + n, Left: r.Left + n, Bottom: r.Bottom - n, Right: r.Right - n}
}

// Clip returns the part of r that lies on a width x height screen.
func (r ScreenRect) Clip(width, height int) ScreenRect {
	c := ScreenRect{
		Top:    max(r.Top, 0),
		Left:   max(r.Left, 0),
		Bottom: min(r.Bottom, height),
		Right:  min(r.Right, width),
	}
	if c.IsEmpty() {
		return ScreenRect{}
	}
	return c
}
