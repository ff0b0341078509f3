package keymap

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/dshills/keycalc/internal/input/key"
)

// ActionNone unbinds a key when used in an overriding keymap.
const ActionNone = "none"

// Errors returned by keymap validation.
var (
	ErrEmptyKeys   = errors.New("binding has empty keys")
	ErrEmptyAction = errors.New("binding has empty action")
)

// Binding represents a single key-to-action mapping.
type Binding struct {
	// Keys is the key spec that triggers this binding ("7", "Enter", "Ctrl+c").
	Keys string

	// Action is the action name ("append:7", "calculate").
	Action string

	// Description provides documentation for the binding.
	Description string

	// Category groups bindings for display purposes.
	Category string
}

// Keymap holds an ordered set of bindings.
type Keymap struct {
	// Name is the keymap identifier.
	Name string

	// Source indicates where this keymap was defined ("default", "user",
	// "script:macros").
	Source string

	// Bindings are the key-to-action mappings.
	Bindings []Binding
}

// NewKeymap creates a new keymap with the given name.
func NewKeymap(name string) *Keymap {
	return &Keymap{Name: name}
}

// WithSource sets the source for this keymap.
func (k *Keymap) WithSource(source string) *Keymap {
	k.Source = source
	return k
}

// Add adds a binding to this keymap.
func (k *Keymap) Add(keys, action string) *Keymap {
	k.Bindings = append(k.Bindings, Binding{Keys: keys, Action: action})
	return k
}

// Validate checks that all bindings in the keymap parse.
func (k *Keymap) Validate() error {
	for i, b := range k.Bindings {
		if b.Keys == "" {
			return fmt.Errorf("keymap %s: binding %d: %w", k.Name, i, ErrEmptyKeys)
		}
		if b.Action == "" {
			return fmt.Errorf("keymap %s: binding %d (%s): %w", k.Name, i, b.Keys, ErrEmptyAction)
		}
		if _, err := key.Parse(b.Keys); err != nil {
			return fmt.Errorf("keymap %s: binding %d (%s): %w", k.Name, i, b.Keys, err)
		}
	}
	return nil
}

// FromConfig builds a user keymap from a key spec to action table.
// Bindings are sorted by key spec so the result is deterministic.
func FromConfig(bindings map[string]string) *Keymap {
	km := NewKeymap("user").WithSource("user")
	specs := lo.Keys(bindings)
	sort.Strings(specs)
	for _, spec := range specs {
		km.Add(spec, strings.TrimSpace(bindings[spec]))
	}
	return km
}

// Map is a resolved lookup table over one or more keymaps.
// It is safe for concurrent use.
type Map struct {
	mu    sync.RWMutex
	byKey map[string]Binding
}

// New resolves keymaps in order. Later keymaps override earlier ones.
func New(keymaps ...*Keymap) (*Map, error) {
	m := &Map{byKey: make(map[string]Binding)}
	for _, km := range keymaps {
		if km == nil {
			continue
		}
		if err := m.Load(km); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Load merges a keymap into the map, overriding existing bindings for the
// same keys. The map is unchanged if the keymap does not validate.
func (m *Map) Load(km *Keymap) error {
	if err := km.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range km.Bindings {
		canonical, _ := key.NormalizeSpec(b.Keys)
		if b.Action == ActionNone {
			delete(m.byKey, canonical)
			continue
		}
		if b.Category == "" {
			b.Category = categoryOf(b.Action)
		}
		m.byKey[canonical] = b
	}
	return nil
}

// Replace resolves keymaps in order and swaps them in for the current
// bindings. On error the map is unchanged.
func (m *Map) Replace(keymaps ...*Keymap) error {
	fresh, err := New(keymaps...)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.byKey = fresh.byKey
	return nil
}

// Bind adds or replaces a single binding.
func (m *Map) Bind(spec, action string) error {
	return m.Load(NewKeymap("bind").Add(spec, action))
}

// Lookup returns the binding for a key event.
func (m *Map) Lookup(ev key.Event) (Binding, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.byKey[ev.Normalize().String()]
	return b, ok
}

// LookupSpec returns the binding for a key spec.
func (m *Map) LookupSpec(spec string) (Binding, bool) {
	ev, err := key.Parse(spec)
	if err != nil {
		return Binding{}, false
	}
	return m.Lookup(ev)
}

// Bindings returns all bindings sorted by category, then key spec.
func (m *Map) Bindings() []Binding {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := lo.Values(m.byKey)
	sort.Slice(result, func(i, j int) bool {
		if result[i].Category != result[j].Category {
			return result[i].Category < result[j].Category
		}
		return result[i].Keys < result[j].Keys
	})
	return result
}

// KeysFor returns the key specs bound to an action, sorted.
func (m *Map) KeysFor(action string) []string {
	bound := lo.Filter(m.Bindings(), func(b Binding, _ int) bool {
		return b.Action == action
	})
	keys := lo.Map(bound, func(b Binding, _ int) string {
		return b.Keys
	})
	sort.Strings(keys)
	return keys
}

// Len returns the number of bindings.
func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byKey)
}

func categoryOf(action string) string {
	name, _, _ := strings.Cut(action, ":")
	switch name {
	case "append":
		return "Input"
	case "memory":
		return "Memory"
	case "script":
		return "Scripts"
	case "quit":
		return "Application"
	default:
		return "Edit"
	}
}
