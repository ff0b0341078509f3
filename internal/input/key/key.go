package key

import (
	"fmt"
	"strconv"
	"strings"
)

// Key is a non-character key. Character keys are KeyRune with the
// character in Event.Rune.
type Key uint16

const (
	KeyNone Key = iota

	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyHome
	KeyEnd
	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	KeyKP0
	KeyKP1
	KeyKP2
	KeyKP3
	KeyKP4
	KeyKP5
	KeyKP6
	KeyKP7
	KeyKP8
	KeyKP9
	KeyKPAdd
	KeyKPSubtract
	KeyKPMultiply
	KeyKPDivide
	KeyKPDecimal
	KeyKPEnter

	KeyRune
)

// namedKeys lists the keys with fixed names. As with modifiers, the first
// name is canonical and the rest are aliases. Function and keypad digit
// keys are numbered and handled in String and KeyFromName directly.
var namedKeys = []struct {
	key   Key
	names []string
}{
	{KeyNone, []string{"None"}},
	{KeyEscape, []string{"Escape", "esc"}},
	{KeyEnter, []string{"Enter", "return", "cr"}},
	{KeyTab, []string{"Tab"}},
	{KeyBackspace, []string{"Backspace", "bs"}},
	{KeyDelete, []string{"Delete", "del"}},
	{KeyHome, []string{"Home"}},
	{KeyEnd, []string{"End"}},
	{KeyUp, []string{"Up"}},
	{KeyDown, []string{"Down"}},
	{KeyLeft, []string{"Left"}},
	{KeyRight, []string{"Right"}},
	{KeyKPAdd, []string{"KP+", "kpplus"}},
	{KeyKPSubtract, []string{"KP-", "kpminus"}},
	{KeyKPMultiply, []string{"KP*"}},
	{KeyKPDivide, []string{"KP/"}},
	{KeyKPDecimal, []string{"KP.", "kpdot"}},
	{KeyKPEnter, []string{"KPEnter"}},
	{KeyRune, []string{"Rune"}},
}

var keysByName = func() map[string]Key {
	m := make(map[string]Key)
	for _, nk := range namedKeys {
		if nk.key == KeyNone || nk.key == KeyRune {
			continue
		}
		for _, n := range nk.names {
			m[strings.ToLower(n)] = nk.key
		}
	}
	return m
}()

func (k Key) String() string {
	switch {
	case k >= KeyF1 && k <= KeyF12:
		return "F" + strconv.Itoa(int(k-KeyF1)+1)
	case k >= KeyKP0 && k <= KeyKP9:
		return "KP" + strconv.Itoa(int(k-KeyKP0))
	}
	for _, nk := range namedKeys {
		if nk.key == k {
			return nk.names[0]
		}
	}
	return fmt.Sprintf("Key(%d)", k)
}

// Keypad reports whether k is on the numeric keypad.
func (k Key) Keypad() bool {
	return k >= KeyKP0 && k <= KeyKPEnter
}

// KeyFromName looks a key up by name or alias, ignoring case and
// surrounding space. It returns KeyNone for unknown names.
func KeyFromName(name string) Key {
	name = strings.ToLower(strings.TrimSpace(name))
	if k, ok := keysByName[name]; ok {
		return k
	}
	if n, ok := numbered(name, "f", 1, 12); ok {
		return KeyF1 + Key(n-1)
	}
	if n, ok := numbered(name, "kp", 0, 9); ok {
		return KeyKP0 + Key(n)
	}
	return KeyNone
}

// numbered parses prefix followed by a decimal in [lo, hi].
func numbered(name, prefix string, lo, hi int) (int, bool) {
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < lo || n > hi || strconv.Itoa(n) != rest {
		return 0, false
	}
	return n, true
}
