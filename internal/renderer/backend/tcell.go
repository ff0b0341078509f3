package backend

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keycalc/internal/renderer/core"
)

// Conversions between tcell and backend types.

var attrPairs = []struct {
	ours   core.Attribute
	theirs tcell.AttrMask
}{
	{core.AttrBold, tcell.AttrBold},
	{core.AttrDim, tcell.AttrDim},
	{core.AttrUnderline, tcell.AttrUnderline},
	{core.AttrReverse, tcell.AttrReverse},
}

var modPairs = []struct {
	ours   ModMask
	theirs tcell.ModMask
}{
	{ModShift, tcell.ModShift},
	{ModCtrl, tcell.ModCtrl},
	{ModAlt, tcell.ModAlt},
	{ModMeta, tcell.ModMeta},
}

// buttonOrder is the precedence used when several buttons are down.
var buttonOrder = []struct {
	ours   MouseButton
	theirs tcell.ButtonMask
}{
	{MouseLeft, tcell.Button1},
	{MouseMiddle, tcell.Button2},
	{MouseRight, tcell.Button3},
	{MouseWheelUp, tcell.WheelUp},
	{MouseWheelDown, tcell.WheelDown},
}

var fromTcellKey = map[tcell.Key]Key{
	tcell.KeyEscape:     KeyEscape,
	tcell.KeyEnter:      KeyEnter,
	tcell.KeyTab:        KeyTab,
	tcell.KeyBackspace:  KeyBackspace,
	tcell.KeyBackspace2: KeyBackspace,
	tcell.KeyDelete:     KeyDelete,
	tcell.KeyHome:       KeyHome,
	tcell.KeyEnd:        KeyEnd,
	tcell.KeyUp:         KeyUp,
	tcell.KeyDown:       KeyDown,
	tcell.KeyLeft:       KeyLeft,
	tcell.KeyRight:      KeyRight,
}

// toTcellKey inverts fromTcellKey. Backspace goes out as the DEL form
// most terminals send.
var toTcellKey = func() map[Key]tcell.Key {
	m := make(map[Key]tcell.Key, len(fromTcellKey))
	for tk, k := range fromTcellKey {
		if tk != tcell.KeyBackspace {
			m[k] = tk
		}
	}
	return m
}()

func tcellStyle(s core.Style) tcell.Style {
	ts := tcell.StyleDefault.
		Foreground(tcellColor(s.Foreground)).
		Background(tcellColor(s.Background))
	var attrs tcell.AttrMask
	for _, p := range attrPairs {
		if s.Attributes.Has(p.ours) {
			attrs |= p.theirs
		}
	}
	return ts.Attributes(attrs)
}

func coreStyle(ts tcell.Style) core.Style {
	fg, bg, attrs := ts.Decompose()
	s := core.Style{Foreground: coreColor(fg), Background: coreColor(bg)}
	for _, p := range attrPairs {
		if attrs&p.theirs != 0 {
			s.Attributes |= p.ours
		}
	}
	return s
}

func tcellColor(c core.Color) tcell.Color {
	switch {
	case c.IsDefault():
		return tcell.ColorDefault
	case c.Indexed:
		return tcell.PaletteColor(int(c.R))
	}
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func coreColor(tc tcell.Color) core.Color {
	switch {
	case tc == tcell.ColorDefault:
		return core.ColorDefault
	case tc&tcell.ColorIsRGB == 0 && tc >= tcell.ColorValid:
		return core.ColorFromIndex(uint8(tc - tcell.ColorValid))
	}
	r, g, b := tc.RGB()
	return core.ColorFromRGB(uint8(r), uint8(g), uint8(b))
}

func fromTcellMod(m tcell.ModMask) ModMask {
	var out ModMask
	for _, p := range modPairs {
		if m&p.theirs != 0 {
			out |= p.ours
		}
	}
	return out
}

func toTcellMod(m ModMask) tcell.ModMask {
	var out tcell.ModMask
	for _, p := range modPairs {
		if m&p.ours != 0 {
			out |= p.theirs
		}
	}
	return out
}

func fromTcellButtons(b tcell.ButtonMask) MouseButton {
	for _, p := range buttonOrder {
		if b&p.theirs != 0 {
			return p.ours
		}
	}
	return MouseNone
}

// fromTcellEvent translates what tcell delivers. Control-letter keys
// become the letter with ModCtrl; keys with no counterpart become
// EventNone.
func fromTcellEvent(ev tcell.Event) Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		mod := fromTcellMod(e.Modifiers())
		k := e.Key()
		switch {
		case k == tcell.KeyRune:
			return RuneEvent(e.Rune(), mod)
		case k >= tcell.KeyF1 && k <= tcell.KeyF12:
			return KeyEvent(KeyF1+Key(k-tcell.KeyF1), mod)
		case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ && fromTcellKey[k] == KeyNone:
			return RuneEvent('a'+rune(k-tcell.KeyCtrlA), mod|ModCtrl)
		}
		if ours, ok := fromTcellKey[k]; ok {
			return KeyEvent(ours, mod)
		}
	case *tcell.EventMouse:
		x, y := e.Position()
		out := ClickEvent(x, y, fromTcellButtons(e.Buttons()))
		out.Mod = fromTcellMod(e.Modifiers())
		return out
	case *tcell.EventResize:
		return ResizeEvent(e.Size())
	case *tcell.EventInterrupt:
		return Event{Type: EventInterrupt}
	}
	return Event{}
}

// toTcellEvent is the inverse of fromTcellEvent for key and interrupt
// events. It returns nil for anything else.
func toTcellEvent(ev Event) tcell.Event {
	switch ev.Type {
	case EventKey:
		mod := toTcellMod(ev.Mod)
		switch {
		case ev.Key == KeyRune:
			return tcell.NewEventKey(tcell.KeyRune, ev.Rune, mod)
		case ev.Key >= KeyF1 && ev.Key <= KeyF12:
			return tcell.NewEventKey(tcell.KeyF1+tcell.Key(ev.Key-KeyF1), 0, mod)
		}
		if tk, ok := toTcellKey[ev.Key]; ok {
			return tcell.NewEventKey(tk, 0, mod)
		}
		return tcell.NewEventKey(tcell.KeyRune, ev.Rune, mod)
	case EventInterrupt:
		return tcell.NewEventInterrupt(nil)
	}
	return nil
}
