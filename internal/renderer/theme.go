package renderer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/keycalc/internal/renderer/core"
)

// Theme defines the calculator's colors.
type Theme struct {
	// Name is the display name of the theme.
	Name string

	// Panel is the frame and background style.
	Panel core.Style

	// Display styles the display line; Error replaces it for the Error sentinel.
	Display core.Style
	Error   core.Style

	// History styles the annotation; Memory styles the "M" indicator.
	History core.Style
	Memory  core.Style

	// ControlStyles maps control kinds to button styles.
	ControlStyles map[ControlKind]core.Style

	// PressedLighten is how far a pressed button blends toward white.
	// Buttons without an RGB background are drawn reversed instead.
	PressedLighten float64
}

// DefaultTheme returns the built-in dark theme.
func DefaultTheme() Theme {
	panel := core.ColorFromRGB(0x1E, 0x1E, 0x2E)
	display := core.ColorFromRGB(0x11, 0x11, 0x1B)

	return Theme{
		Name:    "default",
		Panel:   core.NewStyle(core.ColorFromRGB(0x58, 0x5B, 0x70), panel),
		Display: core.NewStyle(core.ColorFromRGB(0xCD, 0xD6, 0xF4), display).Bold(),
		Error:   core.NewStyle(core.ColorFromRGB(0xF3, 0x8B, 0xA8), display).Bold(),
		History: core.NewStyle(core.ColorFromRGB(0x7F, 0x84, 0x9C), display),
		Memory:  core.NewStyle(core.ColorFromRGB(0xF9, 0xE2, 0xAF), display).Bold(),
		ControlStyles: map[ControlKind]core.Style{
			ControlDigit:    core.OnBackground(core.ColorFromRGB(0x31, 0x32, 0x44)),
			ControlOperator: core.OnBackground(core.ColorFromRGB(0x45, 0x47, 0x5A)),
			ControlFunction: core.OnBackground(core.ColorFromRGB(0x58, 0x5B, 0x70)),
			ControlMemory:   core.OnBackground(core.ColorFromRGB(0x3B, 0x3F, 0x55)),
			ControlEquals:   core.OnBackground(core.ColorFromRGB(0x89, 0xB4, 0xFA)),
		},
		PressedLighten: 0.35,
	}
}

// MonoTheme uses only the terminal's default colors.
func MonoTheme() Theme {
	plain := core.DefaultStyle()
	return Theme{
		Name:    "mono",
		Panel:   plain,
		Display: plain.Bold(),
		Error:   plain.Bold().Underline(),
		History: plain.Dim(),
		Memory:  plain.Bold(),
		ControlStyles: map[ControlKind]core.Style{
			ControlDigit:    plain,
			ControlOperator: plain.Bold(),
			ControlFunction: plain.Dim(),
			ControlMemory:   plain.Dim(),
			ControlEquals:   plain.Bold(),
		},
	}
}

// ControlStyle returns the style of a control, pressed or not.
func (t Theme) ControlStyle(c Control, pressed bool) core.Style {
	style, ok := t.ControlStyles[c.Kind]
	if !ok {
		style = t.Panel
	}
	if !pressed {
		return style
	}
	return style.Highlighted(t.PressedLighten)
}

// themeColorKeys lists the keys WithColors accepts.
var themeColorKeys = map[string]func(*Theme, core.Color){
	"background": func(t *Theme, c core.Color) { t.Panel = t.Panel.WithBackground(c) },
	"frame":      func(t *Theme, c core.Color) { t.Panel = t.Panel.WithForeground(c) },
	"display": func(t *Theme, c core.Color) {
		t.Display = t.Display.WithBackground(c)
		t.Error = t.Error.WithBackground(c)
		t.History = t.History.WithBackground(c)
		t.Memory = t.Memory.WithBackground(c)
	},
	"text":     func(t *Theme, c core.Color) { t.Display = t.Display.WithForeground(c) },
	"error":    func(t *Theme, c core.Color) { t.Error = t.Error.WithForeground(c) },
	"history":  func(t *Theme, c core.Color) { t.History = t.History.WithForeground(c) },
	"memory":   func(t *Theme, c core.Color) { t.Memory = t.Memory.WithForeground(c) },
	"digit":    func(t *Theme, c core.Color) { t.setButton(ControlDigit, c) },
	"operator": func(t *Theme, c core.Color) { t.setButton(ControlOperator, c) },
	"function": func(t *Theme, c core.Color) { t.setButton(ControlFunction, c) },
	"mem":      func(t *Theme, c core.Color) { t.setButton(ControlMemory, c) },
	"equals":   func(t *Theme, c core.Color) { t.setButton(ControlEquals, c) },
}

func (t *Theme) setButton(kind ControlKind, bg core.Color) {
	styles := make(map[ControlKind]core.Style, len(t.ControlStyles))
	for k, v := range t.ControlStyles {
		styles[k] = v
	}
	styles[kind] = core.OnBackground(bg)
	t.ControlStyles = styles
}

// ThemeColorKeys returns the color names WithColors understands, sorted.
func ThemeColorKeys() []string {
	keys := make([]string, 0, len(themeColorKeys))
	for k := range themeColorKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WithColors returns a copy of t with colors overridden by hex values keyed
// by element name ("background", "display", "digit", ...).
func (t Theme) WithColors(colors map[string]string) (Theme, error) {
	names := make([]string, 0, len(colors))
	for name := range colors {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		apply, ok := themeColorKeys[strings.ToLower(name)]
		if !ok {
			return t, fmt.Errorf("unknown theme color %q", name)
		}
		c, err := core.ColorFromHex(colors[name])
		if err != nil {
			return t, fmt.Errorf("theme color %q: %w", name, err)
		}
		apply(&t, c)
	}
	return t, nil
}
