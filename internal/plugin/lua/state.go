package lua

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultExecutionTimeout bounds every chunk and function call.
const DefaultExecutionTimeout = 2 * time.Second

// Stack limits for script states. Deep recursion fails with a Lua error
// instead of growing the Go heap without bound.
const (
	callStackSize   = 200
	registryMaxSize = 1 << 20
)

// State is a sandboxed gopher-lua state. LState is not goroutine-safe, so
// every call through State holds mu.
type State struct {
	L *lua.LState

	mu      sync.Mutex
	closed  bool
	timeout time.Duration
	output  func(string)
	sandbox *Sandbox
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout bounds each chunk or call. Zero means no bound.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) { s.timeout = d }
}

// WithOutput receives the lines scripts print.
func WithOutput(fn func(line string)) StateOption {
	return func(s *State) { s.output = fn }
}

// NewState opens a state with the base, package, table, string and math
// libraries. io, os and debug are never opened.
func NewState(opts ...StateOption) *State {
	s := &State{timeout: DefaultExecutionTimeout}
	for _, opt := range opts {
		opt(s)
	}

	s.L = lua.NewState(lua.Options{
		SkipOpenLibs:    true,
		CallStackSize:   callStackSize,
		RegistryMaxSize: registryMaxSize,
	})
	for _, lib := range safeLibs {
		s.L.Push(s.L.NewFunction(lib.open))
		s.L.Push(lua.LString(lib.name))
		s.L.Call(1, 0)
	}

	s.sandbox = NewSandbox(s.L, s.output)
	s.sandbox.Install()
	return s
}

var safeLibs = []struct {
	name string
	open lua.LGFunction
}{
	{lua.LoadLibName, lua.OpenPackage},
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
}

// locked runs fn with the state held, failing once the state is closed.
func (s *State) locked(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStateClosed
	}
	return fn()
}

// DoString compiles and runs code. name labels the chunk in errors.
func (s *State) DoString(ctx context.Context, name, code string) error {
	return s.locked(func() error {
		fn, err := s.L.Load(strings.NewReader(code), name)
		if err != nil {
			return err
		}
		_, err = s.call(ctx, fn, nil)
		return err
	})
}

// CallFunction calls fn with args and returns every result, or an empty
// slice when fn returns nothing.
func (s *State) CallFunction(ctx context.Context, fn *lua.LFunction, args ...lua.LValue) ([]lua.LValue, error) {
	var results []lua.LValue
	err := s.locked(func() error {
		var err error
		results, err = s.call(ctx, fn, args)
		return err
	})
	return results, err
}

// call runs fn under the timeout and leaves the stack as it found it.
func (s *State) call(ctx context.Context, fn *lua.LFunction, args []lua.LValue) (results []lua.LValue, err error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	base := s.L.GetTop()
	defer s.L.SetTop(base)
	defer func() {
		if r := recover(); r != nil {
			results, err = nil, fmt.Errorf("lua panic: %v", r)
		}
	}()

	s.L.Push(fn)
	for _, arg := range args {
		s.L.Push(arg)
	}
	if err := s.L.PCall(len(args), lua.MultRet, nil); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrExecutionTimeout, err)
		}
		return nil, err
	}

	results = make([]lua.LValue, 0, max(s.L.GetTop()-base, 0))
	for i := base + 1; i <= s.L.GetTop(); i++ {
		results = append(results, s.L.Get(i))
	}
	return results, nil
}

// RegisterModule publishes funcs as the global table name and lets
// scripts require it.
func (s *State) RegisterModule(name string, funcs map[string]lua.LGFunction) {
	_ = s.locked(func() error {
		mod := s.L.SetFuncs(s.L.NewTable(), funcs)
		s.L.SetGlobal(name, mod)
		s.L.PreloadModule(name, func(L *lua.LState) int {
			L.Push(mod)
			return 1
		})
		s.sandbox.AllowModule(name)
		return nil
	})
}

// Global returns the global name, or nil once the state is closed.
func (s *State) Global(name string) lua.LValue {
	v := lua.LValue(lua.LNil)
	_ = s.locked(func() error {
		v = s.L.GetGlobal(name)
		return nil
	})
	return v
}

func (s *State) Sandbox() *Sandbox {
	return s.sandbox
}

// Close releases the state. It is safe to call more than once.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.L.Close()
	}
	return nil
}
