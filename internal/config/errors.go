package config

import (
	"errors"
	"fmt"
)

var (
	// ErrSettingNotFound is wrapped by lookups of a path no source defines.
	ErrSettingNotFound = errors.New("config: setting not found")

	// ErrTypeMismatch is wrapped when a value cannot be cast to the
	// requested type.
	ErrTypeMismatch = errors.New("config: type mismatch")

	ErrWatcherDisabled = errors.New("config: watcher disabled")
)

// SettingError describes a failed typed lookup.
type SettingError struct {
	Path string
	// Want names the requested Go type. It is empty for missing settings.
	Want string
	Err  error
}

func (e *SettingError) Error() string {
	if e.Want == "" {
		return fmt.Sprintf("config %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("config %s: want %s: %v", e.Path, e.Want, e.Err)
}

func (e *SettingError) Unwrap() error { return e.Err }

func missing(path string) error {
	return &SettingError{Path: path, Err: ErrSettingNotFound}
}

func mismatch(path, want string, cause error) error {
	return &SettingError{Path: path, Want: want, Err: fmt.Errorf("%w: %v", ErrTypeMismatch, cause)}
}

// LoadError wraps a failure to read one source. Source is a file path or
// "env".
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("config: read %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
