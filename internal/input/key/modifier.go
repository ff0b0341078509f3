package key

import "strings"

// Modifier is a set of held modifier keys.
type Modifier uint8

// Modifier bits.
const (
	ModNone  Modifier = 0
	ModShift Modifier = 1 << (iota - 1)
	ModCtrl
	ModAlt
	// ModMeta is Cmd on macOS and the Windows key elsewhere.
	ModMeta
)

// modifierNames is in display order. The first name of each entry is
// the one String prints; the rest are accepted by Parse, including the
// single letters of the C-x notation.
var modifierNames = []struct {
	mod   Modifier
	names []string
}{
	{ModCtrl, []string{"Ctrl", "control", "c"}},
	{ModAlt, []string{"Alt", "option", "opt", "a"}},
	{ModShift, []string{"Shift", "s"}},
	{ModMeta, []string{"Meta", "cmd", "super", "m", "d"}},
}

// Has reports whether every bit of mod is held.
func (m Modifier) Has(mod Modifier) bool { return mod != ModNone && m&mod == mod }

// With adds mod.
func (m Modifier) With(mod Modifier) Modifier { return m | mod }

// Without removes mod.
func (m Modifier) Without(mod Modifier) Modifier { return m &^ mod }

// String joins the held modifiers with "+", for example "Ctrl+Shift".
func (m Modifier) String() string {
	var parts []string
	for _, e := range modifierNames {
		if m.Has(e.mod) {
			parts = append(parts, e.names[0])
		}
	}
	return strings.Join(parts, "+")
}

// ModifierFromName resolves a modifier name, ignoring case and
// surrounding space. Unknown names give ModNone.
func ModifierFromName(name string) Modifier {
	name = strings.TrimSpace(name)
	for _, e := range modifierNames {
		for _, n := range e.names {
			if strings.EqualFold(n, name) {
				return e.mod
			}
		}
	}
	return ModNone
}
