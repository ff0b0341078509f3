package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse parses a key specification string into an Event.
//
// Supported formats:
//   - Single character: "7", "+", "%", "n", "N"
//   - Special keys: "Enter", "Escape", "Backspace", "Space", "KP5"
//   - With modifiers: "Ctrl+C", "Alt+M", "Ctrl++"
//   - Vim style: "<C-c>", "<CR>", "<Esc>", "<BS>"
func Parse(spec string) (Event, error) {
	if spec != " " {
		spec = strings.TrimSpace(spec)
	}
	if spec == "" {
		return Event{}, ErrEmptySpec
	}

	if utf8.RuneCountInString(spec) == 1 {
		r, _ := utf8.DecodeRuneInString(spec)
		return runeEvent(r, ModNone), nil
	}

	if strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">") {
		return parseVimStyle(spec[1 : len(spec)-1])
	}

	if strings.Contains(spec, "+") && !strings.HasPrefix(strings.ToLower(spec), "kp") {
		return parseModifierStyle(spec)
	}

	return parseKey(spec, ModNone)
}

// parseVimStyle parses the inside of "<C-s>", "<CR>" and similar.
func parseVimStyle(inner string) (Event, error) {
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return Event{}, ErrInvalidSpec
	}

	parts := strings.Split(inner, "-")
	keyPart := parts[len(parts)-1]
	mods := parts[:len(parts)-1]
	// "<C-->" binds the minus key
	if keyPart == "" && len(parts) >= 2 {
		keyPart = "-"
		mods = parts[:len(parts)-2]
	}

	m, err := parseModifiers(mods)
	if err != nil {
		return Event{}, err
	}
	return parseKey(keyPart, m)
}

// parseModifierStyle parses "Ctrl+S" style notation. A trailing "++"
// binds the plus key.
func parseModifierStyle(spec string) (Event, error) {
	var modPart, keyPart string
	if strings.HasSuffix(spec, "++") {
		modPart, keyPart = spec[:len(spec)-2], "+"
	} else {
		idx := strings.LastIndex(spec, "+")
		modPart, keyPart = spec[:idx], spec[idx+1:]
	}

	mods, err := parseModifiers(strings.Split(modPart, "+"))
	if err != nil {
		return Event{}, err
	}
	return parseKey(keyPart, mods)
}

func parseModifiers(names []string) (Modifier, error) {
	var mods Modifier
	for _, name := range names {
		mod := ModifierFromName(name)
		if mod == ModNone {
			return ModNone, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, name)
		}
		mods = mods.With(mod)
	}
	return mods, nil
}

// parseKey parses a key name or single character with known modifiers.
func parseKey(keyPart string, mods Modifier) (Event, error) {
	keyPart = strings.TrimSpace(keyPart)
	if keyPart == "" {
		return Event{}, ErrInvalidSpec
	}

	switch strings.ToLower(keyPart) {
	case "space":
		return NewRuneEvent(' ', mods), nil
	case "lt":
		return NewRuneEvent('<', mods), nil
	case "gt":
		return NewRuneEvent('>', mods), nil
	case "plus":
		return NewRuneEvent('+', mods), nil
	case "minus":
		return NewRuneEvent('-', mods), nil
	}

	if k := KeyFromName(keyPart); k != KeyNone {
		return NewSpecialEvent(k, mods), nil
	}

	if utf8.RuneCountInString(keyPart) == 1 {
		r, _ := utf8.DecodeRuneInString(keyPart)
		return runeEvent(r, mods), nil
	}

	return Event{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, keyPart)
}

// runeEvent builds a character event. Uppercase letters carry an implicit
// Shift; under Ctrl the letter is lowercased.
func runeEvent(r rune, mods Modifier) Event {
	if mods.Has(ModCtrl) {
		return NewRuneEvent(unicode.ToLower(r), mods)
	}
	if unicode.IsUpper(r) {
		mods = mods.With(ModShift)
	}
	return NewRuneEvent(r, mods)
}

// MustParse parses a key specification and panics on error.
// Use only for known-valid specs in initialization code.
func MustParse(spec string) Event {
	event, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return event
}

// NormalizeSpec parses and re-formats a key specification to its
// canonical form.
func NormalizeSpec(spec string) (string, error) {
	event, err := Parse(spec)
	if err != nil {
		return "", err
	}
	return event.Normalize().String(), nil
}

// ParseSequence parses a line of typed input into key events. Words are
// separated by whitespace. A word that is a complete key specification
// ("enter", "Ctrl+l", "<Esc>") is one key; any other word is typed one
// character at a time, so "12+7=" is five keys.
func ParseSequence(line string) []Event {
	var events []Event
	for _, word := range strings.Fields(line) {
		if utf8.RuneCountInString(word) > 1 {
			if ev, err := Parse(word); err == nil {
				events = append(events, ev)
				continue
			}
		}
		for _, r := range word {
			events = append(events, runeEvent(r, ModNone))
		}
	}
	return events
}
