package renderer

import "github.com/dshills/keycalc/internal/renderer/core"

// Layout limits.
const (
	minButtonWidth = 3
	maxButtonWidth = 9
	maxButtonRows  = 3

	// headerRows covers the top border, history, display and separator.
	headerRows = 4
)

// Button is a control placed on screen.
type Button struct {
	Control Control
	Rect    core.ScreenRect
}

// Layout is the placement of every element for one screen size.
type Layout struct {
	Width, Height int

	// Panel is the framed area, including the border.
	Panel core.ScreenRect

	// History and Display are the two text rows inside the frame.
	History core.ScreenRect
	Display core.ScreenRect

	Buttons []Button
}

// ComputeLayout centers the panel on a width x height screen. Buttons
// shrink to one row and minButtonWidth columns on small screens; the panel
// is clipped rather than rejected when even that does not fit.
func ComputeLayout(controls [][]Control, width, height int) Layout {
	cols := 0
	for _, row := range controls {
		cols = max(cols, len(row))
	}
	rows := len(controls)

	l := Layout{Width: width, Height: height}
	if cols == 0 || rows == 0 {
		return l
	}

	// One column of gap between buttons plus the two border columns.
	btnW := (width - (cols + 1)) / cols
	btnW = min(max(btnW, minButtonWidth), maxButtonWidth)

	btnH := (height - headerRows - 1) / rows
	btnH = min(max(btnH, 1), maxButtonRows)

	panelW := cols*btnW + cols + 1
	panelH := headerRows + rows*btnH + 1
	left := max(0, (width-panelW)/2)
	top := max(0, (height-panelH)/2)

	l.Panel = core.RectFromSize(top, left, panelH, panelW)
	inner := l.Panel.Shrink(1)
	l.History = core.RectFromSize(top+1, inner.Left, 1, inner.Width())
	l.Display = core.RectFromSize(top+2, inner.Left, 1, inner.Width())

	for r, row := range controls {
		y := top + headerRows + r*btnH
		for c, ctrl := range row {
			x := left + 1 + c*(btnW+1)
			l.Buttons = append(l.Buttons, Button{
				Control: ctrl,
				Rect:    core.RectFromSize(y, x, btnH, btnW),
			})
		}
	}
	return l
}

// HitTest returns the control under the screen cell (x, y).
func (l Layout) HitTest(x, y int) (Control, bool) {
	for _, b := range l.Buttons {
		if b.Rect.ContainsCell(x, y) {
			return b.Control, true
		}
	}
	return Control{}, false
}

// ButtonFor returns the placement of the control with the given ID.
func (l Layout) ButtonFor(id string) (Button, bool) {
	for _, b := range l.Buttons {
		if b.Control.ID == id {
			return b, true
		}
	}
	return Button{}, false
}
