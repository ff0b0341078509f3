package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/dshills/keycalc/internal/config/schema"
	"github.com/dshills/keycalc/internal/event"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaults(t *testing.T) {
	cfg := New(WithUserConfigDir(t.TempDir()))
	if err := cfg.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	ui := cfg.UI()
	if ui.Theme != "default" {
		t.Errorf("expected theme default, got %q", ui.Theme)
	}
	if ui.Animation != 200*time.Millisecond {
		t.Errorf("expected 200ms animation, got %v", ui.Animation)
	}
	if !ui.ShowHistory {
		t.Error("expected show_history true")
	}
	if lvl := cfg.Log().Level; lvl != "info" {
		t.Errorf("expected log level info, got %q", lvl)
	}
	if len(cfg.Keymap()) != 0 {
		t.Errorf("expected empty keymap, got %v", cfg.Keymap())
	}

	scripts := cfg.Scripts()
	if scripts.Dir != filepath.Join(cfg.UserConfigDir(), "scripts") {
		t.Errorf("unexpected scripts dir %q", scripts.Dir)
	}
	if scripts.Timeout != 2*time.Second {
		t.Errorf("expected 2s timeout, got %v", scripts.Timeout)
	}
	if len(cfg.Sources()) != 0 {
		t.Errorf("expected no sources, got %v", cfg.Sources())
	}
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.toml"), `
[ui]
theme = "mono"
animation_ms = 50

[keymap]
"x" = "append:*"
`)
	explicit := filepath.Join(t.TempDir(), "override.yaml")
	writeFile(t, explicit, "ui:\n  animation_ms: 75\n")
	t.Setenv("KEYCALC_UI_SHOW_HISTORY", "false")

	cfg := New(WithUserConfigDir(dir), WithFile(explicit))
	if err := cfg.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	ui := cfg.UI()
	if ui.Theme != "mono" {
		t.Errorf("expected theme mono from user file, got %q", ui.Theme)
	}
	if ui.Animation != 75*time.Millisecond {
		t.Errorf("expected explicit file to win, got %v", ui.Animation)
	}
	if ui.ShowHistory {
		t.Error("expected env to disable history")
	}
	if got := cfg.Keymap()["x"]; got != "append:*" {
		t.Errorf("expected keymap binding, got %q", got)
	}

	want := []string{filepath.Join(dir, "config.toml"), explicit, "env"}
	if !slices.Equal(cfg.Sources(), want) {
		t.Errorf("expected sources %v, got %v", want, cfg.Sources())
	}
}

func TestLoadInvalidKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, "[ui]\ntheme = \"mono\"\n")

	cfg := New(WithUserConfigDir(dir))
	if err := cfg.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	writeFile(t, path, "[ui]\ntheme = \"neon\"\n")
	err := cfg.Load(context.Background())
	if !errors.Is(err, schema.ErrInvalid) {
		t.Fatalf("expected schema error, got %v", err)
	}
	if theme := cfg.UI().Theme; theme != "mono" {
		t.Errorf("expected previous theme kept, got %q", theme)
	}

	writeFile(t, path, "[ui\n")
	err = cfg.Load(context.Background())
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected LoadError, got %v", err)
	}
}

func TestSchemaValidationDisabled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.toml"), "[other]\nx = 1\n")

	cfg := New(WithUserConfigDir(dir), WithSchemaValidation(false))
	if err := cfg.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if v, err := cfg.GetInt("other.x"); err != nil || v != 1 {
		t.Errorf("expected 1, got %d (%v)", v, err)
	}
}

func TestTypedGetters(t *testing.T) {
	cfg := New(WithUserConfigDir(t.TempDir()), WithSchemaValidation(false))

	if _, err := cfg.GetString("nope.nothing"); !errors.Is(err, ErrSettingNotFound) {
		t.Errorf("expected ErrSettingNotFound, got %v", err)
	}

	s, err := cfg.GetString("ui.animation_ms")
	if err != nil || s != "200" {
		t.Errorf("expected cast to string \"200\", got %q (%v)", s, err)
	}

	_, err = cfg.GetInt("ui.colors")
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}
	var setErr *SettingError
	if !errors.As(err, &setErr) || setErr.Path != "ui.colors" || setErr.Want != "int" {
		t.Errorf("expected SettingError for ui.colors, got %v", err)
	}
}

func TestReloadPublishesChangedSections(t *testing.T) {
	bus := event.NewBus()
	if err := bus.Start(); err != nil {
		t.Fatal(err)
	}
	defer bus.Stop(context.Background())

	var got []event.ConfigChanged
	bus.SubscribeFunc(event.TopicConfigChanged, func(_ context.Context, ev any) error {
		got = append(got, ev.(event.Event[event.ConfigChanged]).Payload)
		return nil
	})

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, "[ui]\ntheme = \"default\"\n")

	cfg := New(WithUserConfigDir(dir), WithBus(bus))
	if err := cfg.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	changed, err := cfg.Reload(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(changed) != 0 || len(got) != 0 {
		t.Errorf("expected no change, got %v", changed)
	}

	writeFile(t, path, "[ui]\ntheme = \"mono\"\n\n[keymap]\n\"x\" = \"append:*\"\n")
	changed, err = cfg.Reload(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(changed, []string{"keymap", "ui"}) {
		t.Errorf("expected [keymap ui], got %v", changed)
	}
	if len(got) != 1 || got[0].Path != path {
		t.Fatalf("expected one event for %s, got %+v", path, got)
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	bus := event.NewBus()
	if err := bus.Start(); err != nil {
		t.Fatal(err)
	}
	defer bus.Stop(context.Background())

	changes := make(chan event.ConfigChanged, 4)
	bus.SubscribeFunc(event.TopicConfigChanged, func(_ context.Context, ev any) error {
		changes <- ev.(event.Event[event.ConfigChanged]).Payload
		return nil
	})

	cfg := New(WithUserConfigDir(dir), WithBus(bus))
	if err := cfg.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cfg.Watch(ctx) }()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Watch returned %v", err)
		}
	}()

	// Give the watcher time to register.
	time.Sleep(50 * time.Millisecond)
	writeFile(t, path, "ui:\n  theme: mono\n")

	select {
	case ev := <-changes:
		if !slices.Contains(ev.Sections, "ui") {
			t.Errorf("expected ui section, got %v", ev.Sections)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for config change")
	}
	if theme := cfg.UI().Theme; theme != "mono" {
		t.Errorf("expected mono after reload, got %q", theme)
	}
}

func TestWatchDisabled(t *testing.T) {
	cfg := New(WithWatcher(false))
	if err := cfg.Watch(context.Background()); !errors.Is(err, ErrWatcherDisabled) {
		t.Errorf("expected ErrWatcherDisabled, got %v", err)
	}
}
