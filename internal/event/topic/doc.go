// Package topic provides hierarchical topic names and wildcard matching
// for the event bus.
//
// Topics use dot notation:
//
//	calc.changed
//	input.key
//	config.changed
//
// Two wildcards are supported in subscription patterns:
//
//   - "*" matches exactly one segment
//   - "**" matches zero or more segments
//
// For example "calc.*" matches calc.changed but not calc.memory.changed,
// while "calc.**" matches both.
package topic
