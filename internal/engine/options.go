package engine

import "log/slog"

// Option configures a Calculator.
type Option func(*Calculator)

// WithID sets the session identifier. By default a random UUID is used.
func WithID(id string) Option {
	return func(c *Calculator) {
		if id != "" {
			c.id = id
		}
	}
}

// WithLogger sets the logger used for evaluation diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Calculator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver registers an observer at construction time.
func WithObserver(fn Observer) Option {
	return func(c *Calculator) {
		if fn != nil {
			c.observers = append(c.observers, fn)
		}
	}
}

// WithDisplay sets the initial display text.
func WithDisplay(text string) Option {
	return func(c *Calculator) {
		c.initialDisplay = text
	}
}
