package config

import (
	"errors"
	"path/filepath"
	"time"
)

// Section accessor methods return snapshot structs. Mutating the returned
// struct does not modify the underlying configuration.

// Defaults returns the built-in configuration.
func Defaults() map[string]any {
	return map[string]any{
		"log": map[string]any{
			"level":   "info",
			"file":    "",
			"journal": false,
			"format":  "text",
		},
		"ui": map[string]any{
			"theme":        "default",
			"animation_ms": int64(200),
			"show_history": true,
			"colors":       map[string]any{},
		},
		"keymap": map[string]any{},
		"scripts": map[string]any{
			"dir":        "",
			"enabled":    true,
			"timeout_ms": int64(2000),
		},
		"mcp": map[string]any{
			"name":      "keycalc",
			"version":   "0.1.0",
			"http_addr": "",
		},
	}
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string

	// File is an optional log file path. Empty means stderr only.
	File string

	// Journal also sends records to the systemd journal.
	Journal bool

	// Format is "text" or "json".
	Format string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	// Theme is "default" or "mono".
	Theme string

	// Colors overrides theme colors by style name, as hex strings.
	Colors map[string]string

	// Animation is how long a pressed control stays highlighted.
	Animation time.Duration

	// ShowHistory shows the history line.
	ShowHistory bool
}

// ScriptsConfig holds Lua scripting settings.
type ScriptsConfig struct {
	Dir     string
	Enabled bool
	Timeout time.Duration
}

// MCPConfig holds settings for the MCP server.
type MCPConfig struct {
	Name     string
	Version  string
	HTTPAddr string
}

// Log returns the log section.
func (c *Config) Log() LogConfig {
	return LogConfig{
		Level:   c.getStringOr("log.level", "info"),
		File:    c.getStringOr("log.file", ""),
		Journal: c.getBoolOr("log.journal", false),
		Format:  c.getStringOr("log.format", "text"),
	}
}

// UI returns the ui section.
func (c *Config) UI() UIConfig {
	return UIConfig{
		Theme:       c.getStringOr("ui.theme", "default"),
		Colors:      c.getStringMapOr("ui.colors"),
		Animation:   time.Duration(c.getIntOr("ui.animation_ms", 200)) * time.Millisecond,
		ShowHistory: c.getBoolOr("ui.show_history", true),
	}
}

// Keymap returns the user key bindings, key spec to action name.
func (c *Config) Keymap() map[string]string {
	return c.getStringMapOr("keymap")
}

// Scripts returns the scripts section. An empty dir defaults to the
// scripts directory under the user config directory.
func (c *Config) Scripts() ScriptsConfig {
	dir := c.getStringOr("scripts.dir", "")
	if dir == "" {
		dir = filepath.Join(c.userConfigDir, "scripts")
	}
	return ScriptsConfig{
		Dir:     dir,
		Enabled: c.getBoolOr("scripts.enabled", true),
		Timeout: time.Duration(c.getIntOr("scripts.timeout_ms", 2000)) * time.Millisecond,
	}
}

// MCP returns the mcp section.
func (c *Config) MCP() MCPConfig {
	return MCPConfig{
		Name:     c.getStringOr("mcp.name", "keycalc"),
		Version:  c.getStringOr("mcp.version", "0.1.0"),
		HTTPAddr: c.getStringOr("mcp.http_addr", ""),
	}
}

// The *Or helpers fall back to the default when a setting is missing or
// has the wrong type. Type errors are logged since they indicate a config
// problem the schema did not catch.

func (c *Config) getStringOr(path, def string) string {
	v, err := c.GetString(path)
	if err != nil {
		c.logTypeError(path, err)
		return def
	}
	return v
}

func (c *Config) getIntOr(path string, def int) int {
	v, err := c.GetInt(path)
	if err != nil {
		c.logTypeError(path, err)
		return def
	}
	return v
}

func (c *Config) getBoolOr(path string, def bool) bool {
	v, err := c.GetBool(path)
	if err != nil {
		c.logTypeError(path, err)
		return def
	}
	return v
}

func (c *Config) getStringMapOr(path string) map[string]string {
	v, err := c.GetStringMapString(path)
	if err != nil {
		c.logTypeError(path, err)
		return map[string]string{}
	}
	return v
}

func (c *Config) logTypeError(path string, err error) {
	if errors.Is(err, ErrSettingNotFound) {
		return
	}
	c.log().Warn("config value has wrong type, using default", "path", path, "error", err)
}
