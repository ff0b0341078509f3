// Package dispatcher routes calculator actions to handlers and coordinates
// execution.
//
// Every front-end (terminal UI, live line, GUI window, MCP tools, scripts)
// turns its input into an Action and hands it to a Dispatcher. Actions are
// written as strings in keymaps and configuration:
//
//	append:7        calculate     clear     backspace
//	toggle-sign     memory:m+     quit      script:double
//
// # Handler Execution
//
// When an action is dispatched:
//
//  1. Pre-dispatch hooks run and may cancel the action
//  2. The handler registered for the action kind is looked up
//  3. The handler runs with panic recovery
//  4. The originating control, when the action carries one, is reported
//     to the press feedback and published on the event bus
//  5. Post-dispatch hooks run
//  6. Metrics are recorded (if enabled)
//
// RegisterCalculator installs the handlers that drive an engine.Calculator.
// Other kinds, such as script macros, are registered by their owners.
package dispatcher
