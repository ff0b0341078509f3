package key

import "unicode"

// Event is one key press. Events are comparable; two presses of the
// same key with the same modifiers are equal.
type Event struct {
	Key Key
	// Rune is set when Key is KeyRune.
	Rune      rune
	Modifiers Modifier
}

func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{Key: KeyRune, Rune: r, Modifiers: mods}
}

func NewSpecialEvent(k Key, mods Modifier) Event {
	return Event{Key: k, Modifiers: mods}
}

// IsModified returns true if Ctrl, Alt or Meta is pressed. Shift alone
// counts only for special keys, since it changes the character itself.
func (e Event) IsModified() bool {
	if e.Key == KeyRune {
		return e.Modifiers&(ModCtrl|ModAlt|ModMeta) != 0
	}
	return e.Modifiers != ModNone
}

var keypadRunes = map[Key]rune{
	KeyKPAdd:      '+',
	KeyKPSubtract: '-',
	KeyKPMultiply: '*',
	KeyKPDivide:   '/',
	KeyKPDecimal:  '.',
}

// Normalize returns the canonical form of the event used for keymap
// lookups: keypad keys become their main-keyboard equivalents, Shift is
// dropped from characters, and characters under Ctrl or Alt are lowercased.
func (e Event) Normalize() Event {
	if e.Key.Keypad() {
		switch {
		case e.Key <= KeyKP9:
			e.Key, e.Rune = KeyRune, '0'+rune(e.Key-KeyKP0)
		case e.Key == KeyKPEnter:
			e.Key = KeyEnter
		default:
			e.Key, e.Rune = KeyRune, keypadRunes[e.Key]
		}
	}

	if e.Key == KeyRune {
		e.Modifiers = e.Modifiers.Without(ModShift)
		if e.Modifiers.Has(ModCtrl) || e.Modifiers.Has(ModAlt) {
			e.Rune = unicode.ToLower(e.Rune)
		}
	}
	return e
}

// String returns the key spec of the event, in the form Parse accepts:
// "7", "+", "Space", "Enter", "Ctrl+c", "Shift+Tab".
func (e Event) String() string {
	var name string
	mods := e.Modifiers
	switch e.Key {
	case KeyRune:
		mods = mods.Without(ModShift)
		if e.Rune == ' ' {
			name = "Space"
		} else {
			name = string(e.Rune)
		}
	default:
		name = e.Key.String()
	}

	if prefix := mods.String(); prefix != "" {
		return prefix + "+" + name
	}
	return name
}

// Matches reports whether e and the key spec name the same key once both
// are normalized. An unparsable spec matches nothing.
func (e Event) Matches(spec string) bool {
	parsed, err := Parse(spec)
	return err == nil && e.Normalize() == parsed.Normalize()
}
