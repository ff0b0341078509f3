//go:build !tinygo

package gui

import (
	"image"
	"image/color"

	"github.com/gdamore/tcell/v2"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/dshills/keycalc/internal/renderer/core"
)

// Cell size in pixels. The debug font is 6x16.
const (
	cellWidth  = 8
	cellHeight = 16
)

var (
	defaultForeground = color.RGBA{0xCD, 0xD6, 0xF4, 0xFF}
	defaultBackground = color.RGBA{0x11, 0x11, 0x1B, 0xFF}
)

// glyphFallback maps runes outside the debug font to ASCII.
var glyphFallback = map[rune]rune{
	'×': 'x',
	'÷': '/',
	'⌫': '<',
	'±': '~',
	'−': '-',
}

// boxArms lists the arms of box-drawing runes: left, right, up, down.
var boxArms = map[rune][4]bool{
	'─': {true, true, false, false},
	'│': {false, false, true, true},
	'┌': {false, true, false, true},
	'┐': {true, false, false, true},
	'└': {false, true, true, false},
	'┘': {true, false, true, false},
	'├': {false, true, true, true},
	'┤': {true, false, true, true},
	'┬': {true, true, false, true},
	'┴': {true, true, true, false},
	'┼': {true, true, true, true},
}

// rgba converts a cell color. Indexed colors use the xterm palette.
func rgba(c core.Color, fallback color.RGBA) color.RGBA {
	switch {
	case c.Default:
		return fallback
	case c.Indexed:
		r, g, b := tcell.PaletteColor(int(c.R)).RGB()
		return color.RGBA{uint8(r), uint8(g), uint8(b), 0xFF}
	}
	cf, _ := c.Colorful()
	r, g, b := cf.RGB255()
	return color.RGBA{r, g, b, 0xFF}
}

// cellColors returns the foreground and background of a style.
func cellColors(s core.Style) (fg, bg color.RGBA) {
	fg = rgba(s.Foreground, defaultForeground)
	bg = rgba(s.Background, defaultBackground)
	if s.Attributes.Has(core.AttrReverse) {
		fg, bg = bg, fg
	}
	if s.Attributes.Has(core.AttrDim) {
		fg = color.RGBA{fg.R / 2, fg.G / 2, fg.B / 2, 0xFF}
	}
	return fg, bg
}

// glyphs caches one white image per rune; drawing tints it.
type glyphs struct {
	cache map[rune]*ebiten.Image
}

func (g *glyphs) get(r rune) *ebiten.Image {
	if g.cache == nil {
		g.cache = make(map[rune]*ebiten.Image)
	}
	if img, ok := g.cache[r]; ok {
		return img
	}
	img := ebiten.NewImage(cellWidth, cellHeight)
	ebitenutil.DebugPrintAt(img, string(r), 1, 0)
	g.cache[r] = img
	return img
}

// drawGrid paints every cell of grid onto screen.
func drawGrid(screen *ebiten.Image, grid [][]core.Cell, font *glyphs) {
	screen.Fill(defaultBackground)
	for y, row := range grid {
		for x, cell := range row {
			if cell.IsContinuation() {
				continue
			}
			fg, bg := cellColors(cell.Style)
			px, py := x*cellWidth, y*cellHeight
			rect := image.Rect(px, py, px+cellWidth*max(cell.Width, 1), py+cellHeight)
			screen.SubImage(rect).(*ebiten.Image).Fill(bg)
			drawRune(screen, cell.Rune, px, py, fg, cell.Style.Attributes.Has(core.AttrBold), font)
		}
	}
}

func drawRune(screen *ebiten.Image, r rune, px, py int, fg color.RGBA, bold bool, font *glyphs) {
	if r == ' ' || r == 0 {
		return
	}
	if arms, ok := boxArms[r]; ok {
		drawBox(screen, arms, px, py, fg)
		return
	}
	if alt, ok := glyphFallback[r]; ok {
		r = alt
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(px), float64(py))
	op.ColorScale.ScaleWithColor(fg)
	img := font.get(r)
	screen.DrawImage(img, op)
	if bold {
		op.GeoM.Translate(1, 0)
		screen.DrawImage(img, op)
	}
}

// drawBox draws a box-drawing rune as one-pixel lines from the cell center.
func drawBox(screen *ebiten.Image, arms [4]bool, px, py int, fg color.RGBA) {
	cx, cy := px+cellWidth/2, py+cellHeight/2
	lines := [4]image.Rectangle{
		image.Rect(px, cy, cx+1, cy+1),
		image.Rect(cx, cy, px+cellWidth, cy+1),
		image.Rect(cx, py, cx+1, cy+1),
		image.Rect(cx, cy, cx+1, py+cellHeight),
	}
	for i, on := range arms {
		if on {
			screen.SubImage(lines[i]).(*ebiten.Image).Fill(fg)
		}
	}
}
