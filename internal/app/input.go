package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/keycalc/internal/dispatcher"
	"github.com/dshills/keycalc/internal/input/key"
	"github.com/dshills/keycalc/internal/renderer"
	"github.com/dshills/keycalc/internal/renderer/backend"
)

// ErrUnboundKey is returned by HandleKey for keys with no binding.
var ErrUnboundKey = errors.New("unbound key")

var backendKeys = map[backend.Key]key.Key{
	backend.KeyEscape:    key.KeyEscape,
	backend.KeyEnter:     key.KeyEnter,
	backend.KeyTab:       key.KeyTab,
	backend.KeyBackspace: key.KeyBackspace,
	backend.KeyDelete:    key.KeyDelete,
	backend.KeyHome:      key.KeyHome,
	backend.KeyEnd:       key.KeyEnd,
	backend.KeyUp:        key.KeyUp,
	backend.KeyDown:      key.KeyDown,
	backend.KeyLeft:      key.KeyLeft,
	backend.KeyRight:     key.KeyRight,
	backend.KeyF1:        key.KeyF1,
	backend.KeyF2:        key.KeyF2,
	backend.KeyF3:        key.KeyF3,
	backend.KeyF4:        key.KeyF4,
	backend.KeyF5:        key.KeyF5,
	backend.KeyF6:        key.KeyF6,
	backend.KeyF7:        key.KeyF7,
	backend.KeyF8:        key.KeyF8,
	backend.KeyF9:        key.KeyF9,
	backend.KeyF10:       key.KeyF10,
	backend.KeyF11:       key.KeyF11,
	backend.KeyF12:       key.KeyF12,
}

// ConvertKey converts a backend key event to a key.Event.
func ConvertKey(ev backend.Event) (key.Event, bool) {
	if ev.Type != backend.EventKey {
		return key.Event{}, false
	}

	mods := key.ModNone
	if ev.Mod.Has(backend.ModCtrl) {
		mods = mods.With(key.ModCtrl)
	}
	if ev.Mod.Has(backend.ModAlt) {
		mods = mods.With(key.ModAlt)
	}
	if ev.Mod.Has(backend.ModShift) {
		mods = mods.With(key.ModShift)
	}
	if ev.Mod.Has(backend.ModMeta) {
		mods = mods.With(key.ModMeta)
	}

	if ev.Key == backend.KeyRune {
		if ev.Rune == 0 {
			return key.Event{}, false
		}
		return key.NewRuneEvent(ev.Rune, mods), true
	}
	k, ok := backendKeys[ev.Key]
	if !ok {
		return key.Event{}, false
	}
	return key.NewSpecialEvent(k, mods), true
}

// HandleKey resolves a key through the keymap and dispatches the bound
// action. The originating control is the button that triggers the same
// action, so keyboard input animates it too.
func (app *Application) HandleKey(ctx context.Context, ev key.Event, source string) dispatcher.Result {
	binding, ok := app.keymap.Lookup(ev)
	if !ok {
		return dispatcher.Error(fmt.Errorf("%w: %s", ErrUnboundKey, ev))
	}

	control := ""
	if c, ok := renderer.ControlForAction(renderer.DefaultControls(), binding.Action); ok {
		control = c.ID
	}
	return app.dispatcher.DispatchString(ctx, binding.Action, control, source)
}

// HandleControl dispatches the action of an on-screen control.
func (app *Application) HandleControl(ctx context.Context, c renderer.Control, source string) dispatcher.Result {
	return app.dispatcher.DispatchString(ctx, c.Action, c.ID, source)
}
