// Package engine provides the calculator session for Keycalc.
//
// A Calculator owns the whole session state: the display buffer, the
// last-calculation snapshot with its history annotation, and the memory
// register. Front-ends (terminal, window, MCP server, Lua scripts) drive it
// through a small set of entry points and observe it through State.
//
// # Architecture
//
// The engine is built on three sub-packages:
//
//   - display: the input buffer and its entry rules
//   - eval: normalization, arithmetic evaluation and result formatting
//   - memory: the accumulator register
//
// # Error State
//
// A failed calculation never surfaces as a Go error. It puts the display
// into the "Error" sentinel state, which the next append, backspace, sign
// toggle, calculate or memory action resets to "0". Syntax failures clear
// the history annotation; range failures (division by zero, overflow) keep
// it so the user sees what was attempted.
//
// # Basic Usage
//
//	c := engine.New()
//	c.Append("12")
//	c.Append("+")
//	c.Append("7")
//	c.Calculate()
//
//	c.Display() // "19"
//	c.History() // "12+7 ="
//
//	c.HandleMemory(memory.ActionAdd)
//	c.Clear()
//	c.HandleMemory(memory.ActionRecall) // display "19"
//
// # Thread Safety
//
// Operations are serialized with a mutex and run to completion one at a
// time. Observers registered with OnChange run after the lock is released,
// in registration order, on the goroutine that performed the operation.
package engine
