package app

import (
	"errors"
	"fmt"
	"strings"
)

// Lifecycle errors.
var (
	// ErrQuit ends a front-end loop after a quit action. The Run methods
	// translate it to a nil return.
	ErrQuit = errors.New("app: quit")

	ErrAlreadyRunning = errors.New("app: a front-end is already running")
	ErrClosed         = errors.New("app: closed")
)

// InitError names the component that stopped New. Everything started
// before it has already been torn down.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("init %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// ComponentError is one failure collected by Close.
type ComponentError struct {
	Component string
	Op        string
	Err       error
}

// NewComponentError wraps err as the failure of op on component.
func NewComponentError(component, op string, err error) *ComponentError {
	return &ComponentError{Component: component, Op: op, Err: err}
}

func (e *ComponentError) Error() string {
	if e == nil {
		return ""
	}
	parts := []string{e.Component}
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ComponentError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
