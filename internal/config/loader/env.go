package loader

import (
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultEnvPrefix is the prefix of configuration environment variables.
const DefaultEnvPrefix = "KEYCALC_"

// EnvLoader turns prefixed environment variables into settings. The first
// word after the prefix names the section and the rest the key, so
// KEYCALC_UI_SHOW_HISTORY sets ui.show_history. A double underscore
// descends one level: KEYCALC_UI_COLORS__DISPLAY sets ui.colors.display.
type EnvLoader struct {
	prefix  string
	aliases map[string]string
	environ func() []string
}

// EnvOption configures an EnvLoader.
type EnvOption func(*EnvLoader)

// WithAlias maps a whole variable name to a setting path.
func WithAlias(name, path string) EnvOption {
	return func(l *EnvLoader) { l.aliases[name] = path }
}

// WithEnviron replaces os.Environ as the variable source.
func WithEnviron(environ func() []string) EnvOption {
	return func(l *EnvLoader) { l.environ = environ }
}

func NewEnvLoader(prefix string, opts ...EnvOption) *EnvLoader {
	l := &EnvLoader{
		prefix: prefix,
		aliases: map[string]string{
			prefix + "LOG":   "log.level",
			prefix + "THEME": "ui.theme",
		},
		environ: os.Environ,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load collects every prefixed variable. An empty value is a value, not
// an unset variable.
func (l *EnvLoader) Load() (map[string]any, error) {
	out := make(map[string]any)
	for _, kv := range l.environ() {
		name, value, _ := strings.Cut(kv, "=")
		if !strings.HasPrefix(name, l.prefix) {
			continue
		}
		if path := l.path(name); path != "" {
			SetByPath(out, path, parseValue(value))
		}
	}
	return out, nil
}

func (l *EnvLoader) path(name string) string {
	if p, ok := l.aliases[name]; ok {
		return p
	}
	rest := strings.ToLower(strings.TrimPrefix(name, l.prefix))
	section, key, _ := strings.Cut(rest, "_")
	if section == "" || key == "" || strings.HasPrefix(key, "_") {
		return ""
	}
	return section + "." + strings.ReplaceAll(key, "__", ".")
}

// parseValue guesses the type of an environment value: booleans, integers,
// decimals and JSON arrays or objects. Anything else stays a string.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "":
		return s
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.ContainsRune(s, '.') {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	if (s[0] == '[' || s[0] == '{') && gjson.Valid(s) {
		return gjson.Parse(s).Value()
	}
	return s
}
