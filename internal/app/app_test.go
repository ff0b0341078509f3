package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dshills/keycalc/internal/dispatcher"
	"github.com/dshills/keycalc/internal/engine"
	"github.com/dshills/keycalc/internal/event"
	"github.com/dshills/keycalc/internal/input/key"
	"github.com/dshills/keycalc/internal/renderer/backend"
)

func newTestApp(t *testing.T, opts Options) *Application {
	t.Helper()
	if opts.ConfigDir == "" {
		opts.ConfigDir = t.TempDir()
	}
	opts.NoWatch = true
	app, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func typeKeys(t *testing.T, app *Application, line string) {
	t.Helper()
	for _, ev := range key.ParseSequence(line) {
		res := app.HandleKey(context.Background(), ev, dispatcher.SourceKeyboard)
		if res.IsError() {
			t.Fatalf("key %s failed: %v", ev, res.Err)
		}
	}
}

func TestNew(t *testing.T) {
	app := newTestApp(t, Options{NoScripts: true, SessionID: "test-session"})

	if app.Bus() == nil || app.Config() == nil || app.Logger() == nil {
		t.Fatal("expected core infrastructure to be initialized")
	}
	if app.Calculator().ID() != "test-session" {
		t.Errorf("expected session test-session, got %q", app.Calculator().ID())
	}
	if app.Dispatcher() == nil || app.Keymap() == nil {
		t.Fatal("expected dispatcher and keymap")
	}
	if app.Scripts() != nil {
		t.Error("expected scripting disabled")
	}
	if !app.Bus().IsRunning() {
		t.Error("expected event bus running")
	}
}

func TestNewBadLogFile(t *testing.T) {
	_, err := New(Options{
		ConfigDir: t.TempDir(),
		LogFile:   filepath.Join(t.TempDir(), "missing", "keycalc.log"),
		NoScripts: true,
		NoWatch:   true,
	})

	var initErr *InitError
	if !errors.As(err, &initErr) {
		t.Fatalf("expected InitError, got %v", err)
	}
	if initErr.Component != "logger" {
		t.Errorf("expected logger component, got %q", initErr.Component)
	}
}

func TestHandleKey(t *testing.T) {
	app := newTestApp(t, Options{NoScripts: true})

	typeKeys(t, app, "12+7 enter")

	if got := app.Calculator().Display(); got != "19" {
		t.Errorf("expected display 19, got %q", got)
	}
	if got := app.Calculator().History(); got != "12+7 =" {
		t.Errorf("expected history '12+7 =', got %q", got)
	}
}

func TestHandleKeyUnbound(t *testing.T) {
	app := newTestApp(t, Options{NoScripts: true})

	res := app.HandleKey(context.Background(), key.NewRuneEvent('z', key.ModNone), dispatcher.SourceKeyboard)
	if !errors.Is(res.Err, ErrUnboundKey) {
		t.Errorf("expected ErrUnboundKey, got %v", res.Err)
	}
}

func TestHandleKeyQuit(t *testing.T) {
	app := newTestApp(t, Options{NoScripts: true})

	res := app.HandleKey(context.Background(), key.NewRuneEvent('q', key.ModNone), dispatcher.SourceKeyboard)
	if res.Status != dispatcher.StatusQuit {
		t.Errorf("expected quit status, got %v", res.Status)
	}
}

func TestPublishChange(t *testing.T) {
	app := newTestApp(t, Options{NoScripts: true})

	var mu sync.Mutex
	var got []event.CalcChanged
	_, err := app.Bus().SubscribeFunc(event.TopicEvaluated, func(_ context.Context, ev any) error {
		if e, ok := ev.(event.Event[event.CalcChanged]); ok {
			mu.Lock()
			got = append(got, e.Payload)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	typeKeys(t, app, "6*7 enter")

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("expected 1 evaluated event, got %d", len(got))
	}
	if got[0].Display != "42" || got[0].Op != string(engine.OpCalculate) {
		t.Errorf("unexpected payload %+v", got[0])
	}
	if got[0].SessionID != app.Calculator().ID() {
		t.Errorf("expected session %q, got %q", app.Calculator().ID(), got[0].SessionID)
	}
}

func TestTopicFor(t *testing.T) {
	tests := []struct {
		op       engine.Op
		expected string
	}{
		{engine.OpAppend, string(event.TopicDisplayChanged)},
		{engine.OpClear, string(event.TopicDisplayChanged)},
		{engine.OpToggleSign, string(event.TopicDisplayChanged)},
		{engine.OpCalculate, string(event.TopicEvaluated)},
		{engine.OpMemory, string(event.TopicMemoryChanged)},
	}

	for _, tt := range tests {
		if got := string(topicFor(tt.op)); got != tt.expected {
			t.Errorf("topicFor(%s): expected %q, got %q", tt.op, tt.expected, got)
		}
	}
}

func TestConfigChangeReloadsKeymap(t *testing.T) {
	dir := t.TempDir()
	app := newTestApp(t, Options{ConfigDir: dir, NoScripts: true})

	z := key.NewRuneEvent('z', key.ModNone)
	if _, ok := app.Keymap().Lookup(z); ok {
		t.Fatal("expected z unbound before reload")
	}

	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[keymap]\n\"z\" = \"clear\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := app.Config().Reload(context.Background(), path); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	binding, ok := app.Keymap().Lookup(z)
	if !ok {
		t.Fatal("expected z bound after reload")
	}
	if binding.Action != "clear" {
		t.Errorf("expected action clear, got %q", binding.Action)
	}
}

func TestConfigChangeAppliesLogLevel(t *testing.T) {
	dir := t.TempDir()
	app := newTestApp(t, Options{ConfigDir: dir, NoScripts: true})

	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := app.Config().Reload(context.Background(), path); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if got := app.Logger().Level().String(); got != "DEBUG" {
		t.Errorf("expected DEBUG, got %s", got)
	}
}

func TestScriptBindings(t *testing.T) {
	scripts := t.TempDir()
	script := `
calc.macro("square", function()
    local v = calc.evaluate(calc.display())
    calc.clear()
    calc.append(calc.format(v * v))
end)
calc.bind("ctrl+s", "square")
`
	if err := os.WriteFile(filepath.Join(scripts, "square.lua"), []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}

	app := newTestApp(t, Options{ScriptsDir: scripts})
	if app.Scripts() == nil {
		t.Fatal("expected scripting enabled")
	}

	typeKeys(t, app, "12 ctrl+s")

	if got := app.Calculator().Display(); got != "144" {
		t.Errorf("expected display 144, got %q", got)
	}
}

func TestUserKeymapOverridesScript(t *testing.T) {
	dir := t.TempDir()
	scripts := t.TempDir()
	if err := os.WriteFile(filepath.Join(scripts, "noop.lua"),
		[]byte(`calc.macro("noop", function() end) calc.bind("ctrl+s", "noop")`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"),
		[]byte("[keymap]\n\"ctrl+s\" = \"clear\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	app := newTestApp(t, Options{ConfigDir: dir, ScriptsDir: scripts})

	binding, ok := app.Keymap().Lookup(key.MustParse("ctrl+s"))
	if !ok || binding.Action != "clear" {
		t.Errorf("expected user binding clear, got %+v", binding)
	}
}

func TestQuit(t *testing.T) {
	app := newTestApp(t, Options{NoScripts: true})

	app.Quit("test")
	app.Quit("again")

	select {
	case <-app.Done():
	case <-time.After(time.Second):
		t.Fatal("expected Done to be closed")
	}
}

func TestClose(t *testing.T) {
	app, err := New(Options{ConfigDir: t.TempDir(), NoScripts: true, NoWatch: true})
	if err != nil {
		t.Fatal(err)
	}

	if err := app.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := app.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
	if app.Bus().IsRunning() {
		t.Error("expected event bus stopped")
	}
	if err := app.RunTerminal(context.Background(), backend.NewNullBackend(80, 24)); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestConvertKey(t *testing.T) {
	tests := []struct {
		name     string
		ev       backend.Event
		expected string
		ok       bool
	}{
		{"rune", backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: '7'}, key.MustParse("7").String(), true},
		{"enter", backend.Event{Type: backend.EventKey, Key: backend.KeyEnter}, key.MustParse("Enter").String(), true},
		{"ctrl rune", backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: 'l', Mod: backend.ModCtrl}, key.MustParse("Ctrl+l").String(), true},
		{"zero rune", backend.Event{Type: backend.EventKey, Key: backend.KeyRune}, "", false},
		{"not a key", backend.Event{Type: backend.EventResize}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ConvertKey(tt.ev)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && got.Normalize().String() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got.Normalize().String())
			}
		})
	}
}

func TestBusFailuresAreLogged(t *testing.T) {
	var buf bytes.Buffer
	app := newTestApp(t, Options{NoScripts: true, LogStderr: &buf, LogLevel: "warn"})

	app.Bus().SubscribeFunc(event.TopicEvaluated, func(context.Context, any) error {
		return errors.New("listener broke")
	})
	app.Bus().SubscribeFunc(event.TopicEvaluated, func(context.Context, any) error {
		panic("listener exploded")
	})

	typeKeys(t, app, "1+1 enter")
	if got := app.Calculator().State().Display; got != "2" {
		t.Fatalf("expected 2, got %q", got)
	}

	out := buf.String()
	for _, want := range []string{"event subscriber failed", "listener broke", "event subscriber panicked", "listener exploded", "calc.evaluated"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log to contain %q, got %s", want, out)
		}
	}
}
