// Package key provides key event types and key-spec parsing.
//
// Front-ends translate their native key events (tcell, ebiten, a line of
// text) into Event values; keymaps are written as key specs and parsed
// with Parse.
//
// # Key Specifications
//
//   - Simple keys: "7", "+", "n", "Enter", "Escape", "Backspace"
//   - With modifiers: "Ctrl+C", "Alt+M", "Ctrl++"
//   - Vim style: "<C-c>", "<CR>", "<Esc>", "<BS>"
//
// Keypad keys parse from "KP0".."KP9", "KP+", "KP-", "KP*", "KP/", "KP."
// and "KPEnter". Event.Normalize folds them into their main-keyboard
// equivalents, so a keymap written for "7" also serves the keypad.
package key
