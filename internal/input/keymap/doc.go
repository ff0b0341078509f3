// Package keymap maps key events to calculator actions.
//
// A Keymap is a named, ordered list of bindings from key specs to action
// names. A Map resolves several keymaps into one lookup table; keymaps
// added later override earlier ones, so user bindings from the
// configuration file replace the defaults key by key.
//
// Action names are opaque here. The dispatcher parses and validates them:
//
//	append:7       append a token to the display
//	calculate      evaluate the display
//	clear          reset display and history
//	backspace      delete the last character
//	toggle-sign    negate the display
//	memory:recall  apply a memory action
//	quit           leave the application
//	script:name    run a script macro
//
// Binding a key to "none" removes it.
//
// # Usage
//
//	m, err := keymap.New(keymap.Default(), keymap.FromConfig(cfg.Keymap))
//	if b, ok := m.Lookup(ev); ok {
//	    dispatch(b.Action)
//	}
package keymap
