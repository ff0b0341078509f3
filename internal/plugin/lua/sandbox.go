package lua

import (
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// Sandbox restricts what scripts can reach.
type Sandbox struct {
	L *lua.LState

	output func(string)

	mu      sync.RWMutex
	modules map[string]bool
}

// builtinModules can always be required.
var builtinModules = []string{"string", "table", "math"}

// NewSandbox creates a sandbox for L. Printed lines go to output; a nil
// output discards them.
func NewSandbox(L *lua.LState, output func(string)) *Sandbox {
	s := &Sandbox{
		L:       L,
		output:  output,
		modules: make(map[string]bool),
	}
	for _, name := range builtinModules {
		s.modules[name] = true
	}
	return s
}

// Install applies the restrictions to the state.
func (s *Sandbox) Install() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		s.L.SetGlobal(name, lua.LNil)
	}

	s.installPrint()
	s.installRequire()
}

// AllowModule lets scripts require name.
func (s *Sandbox) AllowModule(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modules[name] = true
}

// ModuleAllowed reports whether require(name) is permitted.
func (s *Sandbox) ModuleAllowed(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modules[name]
}

// installPrint routes print to the output function, one call per line,
// arguments joined by tabs.
func (s *Sandbox) installPrint() {
	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = L.ToStringMeta(L.Get(i)).String()
		}
		if s.output != nil {
			s.output(strings.Join(parts, "\t"))
		}
		return 0
	}))
}

// installRequire clears the module search paths and wraps require with a
// whitelist. Only builtin and registered modules load.
func (s *Sandbox) installRequire() {
	if pkg, ok := s.L.GetGlobal("package").(*lua.LTable); ok {
		s.L.SetField(pkg, "path", lua.LString(""))
		s.L.SetField(pkg, "cpath", lua.LString(""))
	}

	original := s.L.GetGlobal("require")
	if original == lua.LNil {
		return
	}

	s.L.SetGlobal("require", s.L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if !s.ModuleAllowed(name) {
			L.RaiseError("module %q is not available", name)
			return 0
		}
		L.Push(original)
		L.Push(lua.LString(name))
		L.Call(1, 1)
		return 1
	}))
}
