//go:build !tinygo

package gui

import (
	"unicode"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/dshills/keycalc/internal/renderer/backend"
	"github.com/dshills/keycalc/internal/renderer/core"
)

// specialKeys maps window keys to backend keys.
var specialKeys = map[ebiten.Key]backend.Key{
	ebiten.KeyEnter:       backend.KeyEnter,
	ebiten.KeyNumpadEnter: backend.KeyEnter,
	ebiten.KeyEscape:      backend.KeyEscape,
	ebiten.KeyBackspace:   backend.KeyBackspace,
	ebiten.KeyDelete:      backend.KeyDelete,
	ebiten.KeyTab:         backend.KeyTab,
	ebiten.KeyHome:        backend.KeyHome,
	ebiten.KeyEnd:         backend.KeyEnd,
	ebiten.KeyArrowUp:     backend.KeyUp,
	ebiten.KeyArrowDown:   backend.KeyDown,
	ebiten.KeyArrowLeft:   backend.KeyLeft,
	ebiten.KeyArrowRight:  backend.KeyRight,
	ebiten.KeyF1:          backend.KeyF1,
	ebiten.KeyF2:          backend.KeyF2,
	ebiten.KeyF3:          backend.KeyF3,
	ebiten.KeyF4:          backend.KeyF4,
	ebiten.KeyF5:          backend.KeyF5,
	ebiten.KeyF6:          backend.KeyF6,
	ebiten.KeyF7:          backend.KeyF7,
	ebiten.KeyF8:          backend.KeyF8,
	ebiten.KeyF9:          backend.KeyF9,
	ebiten.KeyF10:         backend.KeyF10,
	ebiten.KeyF11:         backend.KeyF11,
	ebiten.KeyF12:         backend.KeyF12,
}

// game adapts a Window to the ebiten game loop.
type game struct {
	win  *Window
	font glyphs
	grid [][]core.Cell

	keys  []ebiten.Key
	chars []rune
}

func (g *game) Update() error {
	select {
	case <-g.win.Closed():
		return ebiten.Termination
	default:
	}
	g.pollKeys()
	g.pollMouse()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.grid = g.win.snapshot(g.grid)
	drawGrid(screen, g.grid, &g.font)
}

// Layout sizes the grid to the window. Every resize reaches the view as a
// resize event.
func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	cols, rows := outsideWidth/cellWidth, outsideHeight/cellHeight
	g.win.resize(cols, rows)
	cols, rows = g.win.Size()
	return cols * cellWidth, rows * cellHeight
}

func modifiers() backend.ModMask {
	mods := backend.ModNone
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= backend.ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= backend.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= backend.ModMeta
	}
	return mods
}

func (g *game) pollKeys() {
	mods := modifiers()

	// Typed characters carry their own case and shift state.
	if mods&(backend.ModCtrl|backend.ModMeta) == 0 {
		g.chars = ebiten.AppendInputChars(g.chars[:0])
		for _, r := range g.chars {
			g.win.PostEvent(backend.RuneEvent(r, mods&^backend.ModAlt))
		}
	}

	g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
	for _, k := range g.keys {
		if bk, ok := specialKeys[k]; ok {
			g.win.PostEvent(backend.KeyEvent(bk, mods))
			continue
		}
		if mods&backend.ModCtrl == 0 {
			continue
		}
		// Control chords produce no input characters.
		if r, ok := letter(k); ok {
			g.win.PostEvent(backend.RuneEvent(r, mods))
		}
	}
}

// letter returns the lower-case rune of a letter key.
func letter(k ebiten.Key) (rune, bool) {
	name := k.String()
	if len(name) != 1 {
		return 0, false
	}
	r := rune(name[0])
	if !unicode.IsLetter(r) {
		return 0, false
	}
	return unicode.ToLower(r), true
}

func (g *game) pollMouse() {
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	x, y := ebiten.CursorPosition()
	g.win.PostEvent(cellClick(x, y))
}

// cellClick converts a pixel position to a left click on a cell.
func cellClick(x, y int) backend.Event {
	return backend.ClickEvent(x/cellWidth, y/cellHeight, backend.MouseLeft)
}
