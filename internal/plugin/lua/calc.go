package lua

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keycalc/internal/engine/eval"
	"github.com/dshills/keycalc/internal/engine/memory"
	"github.com/dshills/keycalc/internal/input/key"
	"github.com/dshills/keycalc/internal/input/keymap"
)

// ModuleName is the name scripts use for the calculator module.
const ModuleName = "calc"

func (h *Host) calcModule() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"append":      h.luaAppend,
		"calculate":   h.luaCalculate,
		"clear":       h.luaClear,
		"backspace":   h.luaBackspace,
		"toggle_sign": h.luaToggleSign,
		"memory":      h.luaMemory,
		"display":     h.luaDisplay,
		"history":     h.luaHistory,
		"state":       h.luaState,
		"evaluate":    h.luaEvaluate,
		"format":      h.luaFormat,
		"macro":       h.luaMacro,
		"bind":        h.luaBind,
		"on":          h.luaOn,
		"emit":        h.luaEmit,
	}
}

func (h *Host) luaAppend(L *lua.LState) int {
	token := L.CheckString(1)
	if err := h.calc.Append(token); err != nil {
		L.ArgError(1, err.Error())
	}
	return 0
}

func (h *Host) luaCalculate(L *lua.LState) int {
	h.calc.Calculate()
	return 0
}

func (h *Host) luaClear(L *lua.LState) int {
	h.calc.Clear()
	return 0
}

func (h *Host) luaBackspace(L *lua.LState) int {
	h.calc.Backspace()
	return 0
}

func (h *Host) luaToggleSign(L *lua.LState) int {
	h.calc.ToggleSign()
	return 0
}

func (h *Host) luaMemory(L *lua.LState) int {
	action, err := memory.ParseAction(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	if err := h.calc.HandleMemory(action); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (h *Host) luaDisplay(L *lua.LState) int {
	L.Push(lua.LString(h.calc.Display()))
	return 1
}

func (h *Host) luaHistory(L *lua.LState) int {
	L.Push(lua.LString(h.calc.History()))
	return 1
}

func (h *Host) luaState(L *lua.LState) int {
	L.Push(stateTable(L, h.calc.State()))
	return 1
}

// evaluate(expr) -> number | nil, message
func (h *Host) luaEvaluate(L *lua.LState) int {
	v, err := eval.Evaluate(L.CheckString(1))
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LNumber(v))
	return 1
}

func (h *Host) luaFormat(L *lua.LState) int {
	L.Push(lua.LString(eval.FormatResult(float64(L.CheckNumber(1)))))
	return 1
}

func (h *Host) luaMacro(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	if name == "" {
		L.ArgError(1, "macro name is empty")
		return 0
	}
	h.defineMacro(name, fn)
	return 0
}

func (h *Host) luaBind(L *lua.LState) int {
	spec := L.CheckString(1)
	name := L.CheckString(2)

	ev, err := key.Parse(spec)
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	h.addBinding(keymap.Binding{
		Keys:        ev.String(),
		Action:      "script:" + name,
		Description: "Macro " + name,
		Category:    "script",
	})
	return 0
}
