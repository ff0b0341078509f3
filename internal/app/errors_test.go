package app

import (
	"errors"
	"testing"
)

func TestInitError(t *testing.T) {
	inner := errors.New("boom")
	err := &InitError{Component: "backend", Err: inner}

	if err.Error() != "init backend: boom" {
		t.Errorf("expected 'init backend: boom', got %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("expected errors.Is to find the wrapped error")
	}
}

func TestComponentError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ComponentError
		expected string
	}{
		{"nil error", nil, ""},
		{"component only", &ComponentError{Component: "config"}, "config"},
		{"with op", &ComponentError{Component: "config", Op: "load"}, "config: load"},
		{"with err", &ComponentError{Component: "bus", Err: errors.New("stopped")}, "bus: stopped"},
		{
			"full",
			&ComponentError{Component: "scripts", Op: "close", Err: errors.New("busy")},
			"scripts: close: busy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestComponentError_Is(t *testing.T) {
	inner := errors.New("inner")
	err := NewComponentError("scripts", "load", inner)

	if !errors.Is(err, inner) {
		t.Error("expected errors.Is to match the wrapped error")
	}
	if !errors.Is(err, err) {
		t.Error("expected errors.Is to match itself")
	}
	if errors.Is(err, NewComponentError("scripts", "load", inner)) {
		t.Error("expected a different wrapper not to match")
	}

	var nilErr *ComponentError
	if nilErr.Unwrap() != nil {
		t.Error("expected nil from Unwrap on nil receiver")
	}
}
