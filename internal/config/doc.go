// Package config loads the calculator configuration.
//
// Configuration is merged from several sources, later ones overriding
// earlier ones:
//
//  1. Built-in defaults (see Defaults)
//  2. The user file, $XDG_CONFIG_HOME/keycalc/config.{toml,yaml,yml}
//  3. A file named with WithFile, usually from the -config flag
//  4. Environment variables, KEYCALC_<SECTION>_<KEY>
//
// The merged result is checked against an embedded CUE schema. A source
// that fails to parse or validate leaves the previous configuration in
// place.
//
// # Sections
//
//	[log]      level, file, journal, format
//	[ui]       theme, colors, animation_ms, show_history
//	[keymap]   "<key spec>" = "<action>"
//	[scripts]  dir, enabled, timeout_ms
//	[mcp]      name, version, http_addr
//
// # Live reload
//
// Watch reloads on file changes and publishes event.TopicConfigChanged
// with the names of the sections that changed.
//
// # Sub-packages
//
//   - loader: TOML, YAML and environment loading plus map merging
//   - schema: CUE validation
//   - watcher: fsnotify based file watching
package config
