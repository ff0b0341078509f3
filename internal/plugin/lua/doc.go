// Package lua runs calculator macros written in Lua.
//
// Scripts run in a sandboxed gopher-lua state: io, os, debug and package
// loading are unavailable, print is captured, and every call is bounded by
// an execution timeout. A script talks to the calculator through the calc
// module:
//
//	calc.macro("square", function()
//	    local v = calc.evaluate(calc.display())
//	    calc.clear()
//	    calc.append(calc.format(v * v))
//	end)
//	calc.bind("ctrl+s", "square")
//
// Functions of the calc module:
//   - append(token), calculate(), clear(), backspace(), toggle_sign()
//   - memory(action) with "recall", "store-add", "store-subtract", "clear"
//     or the button labels "MR", "M+", "M-", "MC"
//   - display(), history(), state()
//   - evaluate(expr) returns the value or nil and a message
//   - format(n) formats a number the way results are shown
//   - macro(name, fn) and bind(keys, name)
//
// # Host
//
// Host owns the state and serializes every Lua operation through an
// Executor, so macros can be triggered from any goroutine:
//
//	host, err := lua.NewHost(calc, lua.WithBus(bus))
//	if err != nil {
//	    return err
//	}
//	host.Start(ctx)
//	defer host.Close()
//
//	if err := host.LoadDir(ctx, "~/.config/keycalc/scripts"); err != nil {
//	    return err
//	}
//	host.RegisterWith(dispatcher)
//
// Bound keys are collected in host.Keymap() and resolve to "script:<name>"
// actions.
package lua
