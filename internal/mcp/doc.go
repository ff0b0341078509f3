// Package mcp exposes a calculator session as Model Context Protocol tools.
//
// Tools:
//   - press: type a key sequence ("12+7=", "5 0 % enter") through the keymap
//   - append: append one token
//   - calculate, clear, backspace, toggle_sign: the calculator functions
//   - memory: apply a memory action
//   - state: read the session without changing it
//
// Every tool answers with the session state as a JSON object:
//
//	{"session":"…","display":"19","history":"12+7 =","memory":0,"memory_active":false}
//
// The same object is readable as the calc://state resource.
package mcp
