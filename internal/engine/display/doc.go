// Package display provides the calculator's input buffer: the single line of
// text that holds what the user has typed or the last result.
//
// The buffer enforces the entry rules of the calculator:
//
//   - The text is never empty; its minimum value is "0".
//   - Typing over a lone "0" replaces it instead of producing a leading zero.
//   - Each numeric segment (the text between operator characters) holds at
//     most one decimal point.
//   - The sentinel text "Error" is a terminal state; the next mutation resets
//     it to "0" before doing anything else.
//
// Basic usage:
//
//	buf := display.NewBuffer()
//	buf.Append("12")  // "12"
//	buf.Append("+")   // "12+"
//	buf.Append(".")   // "12+."
//	buf.Append(".")   // no-op, segment already has a point
//	buf.Backspace()   // "12+"
//	buf.ToggleSign()  // "-12+"
//
// A Buffer is not safe for concurrent use. The engine serializes access.
package display
