package lua

import (
	"maps"
	"slices"
	"strconv"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keycalc/internal/engine"
)

// goValue copies a Lua value into plain Go data. Whole numbers become
// int64, sequences become []any and other tables map[string]any. A table
// reached a second time converts to nil, which breaks cycles. Functions
// and threads have no Go form and also become nil.
func goValue(lv lua.LValue) any {
	return (&toGo{seen: map[*lua.LTable]bool{}}).value(lv)
}

type toGo struct {
	seen map[*lua.LTable]bool
}

func (c *toGo) value(lv lua.LValue) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		if n := int64(v); lua.LNumber(n) == v {
			return n
		}
		return float64(v)
	case lua.LString:
		return string(v)
	case *lua.LUserData:
		return v.Value
	case *lua.LTable:
		if c.seen[v] {
			return nil
		}
		c.seen[v] = true
		if seq, ok := c.sequence(v); ok {
			return seq
		}
		return c.record(v)
	}
	return nil
}

// sequence converts t when its only keys are 1..n.
func (c *toGo) sequence(t *lua.LTable) ([]any, bool) {
	n := t.Len()
	if n == 0 {
		return nil, false
	}
	keys := 0
	t.ForEach(func(lua.LValue, lua.LValue) { keys++ })
	if keys != n {
		return nil, false
	}
	out := make([]any, n)
	for i := range out {
		out[i] = c.value(t.RawGetInt(i + 1))
	}
	return out, true
}

func (c *toGo) record(t *lua.LTable) map[string]any {
	out := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		key := k.String()
		if n, ok := k.(lua.LNumber); ok {
			key = strconv.FormatFloat(float64(n), 'f', -1, 64)
		}
		out[key] = c.value(v)
	})
	return out
}

// luaValue builds the Lua form of v. Maps are filled in key order so
// scripts iterating with pairs see a stable order on every run. Values
// with no Lua form travel as userdata.
func luaValue(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return x
	case bool:
		return lua.LBool(x)
	case string:
		return lua.LString(x)
	case int:
		return lua.LNumber(x)
	case int64:
		return lua.LNumber(x)
	case uint64:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case []string:
		return sequenceTable(L, x)
	case []any:
		return sequenceTable(L, x)
	case map[string]string:
		return recordTable(L, x)
	case map[string]any:
		return recordTable(L, x)
	case engine.State:
		return stateTable(L, x)
	}
	ud := L.NewUserData()
	ud.Value = v
	return ud
}

func sequenceTable[T any](L *lua.LState, items []T) *lua.LTable {
	t := L.CreateTable(len(items), 0)
	for i, item := range items {
		t.RawSetInt(i+1, luaValue(L, item))
	}
	return t
}

func recordTable[T any](L *lua.LState, m map[string]T) *lua.LTable {
	t := L.CreateTable(0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		t.RawSetString(k, luaValue(L, m[k]))
	}
	return t
}

// stateTable is the table calc.state() returns.
func stateTable(L *lua.LState, st engine.State) *lua.LTable {
	t := L.CreateTable(0, 6)
	t.RawSetString("display", lua.LString(st.Display))
	t.RawSetString("history", lua.LString(st.History))
	t.RawSetString("last_calculation", lua.LString(st.LastCalculation))
	t.RawSetString("memory", lua.LNumber(st.Memory))
	t.RawSetString("memory_active", lua.LBool(st.MemoryActive))
	t.RawSetString("error", lua.LBool(st.IsError()))
	return t
}
