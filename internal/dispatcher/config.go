package dispatcher

// Config selects optional dispatcher behaviour.
type Config struct {
	// Metrics keeps per-kind and per-control counters.
	Metrics bool

	// RecoverPanics turns a panicking handler into an error result
	// carrying a PanicError.
	RecoverPanics bool

	// PublishPresses publishes input.control.pressed for actions raised by
	// a named control. Ignored without WithBus.
	PublishPresses bool
}

// DefaultConfig recovers panics and publishes presses; metrics are off.
func DefaultConfig() Config {
	return Config{
		RecoverPanics:  true,
		PublishPresses: true,
	}
}

// WithMetrics returns a copy of c with metrics switched on.
func (c Config) WithMetrics() Config {
	c.Metrics = true
	return c
}

// WithPanicRecovery returns a copy of c with panic recovery set to on.
func (c Config) WithPanicRecovery(on bool) Config {
	c.RecoverPanics = on
	return c
}

// WithPressEvents returns a copy of c with press publishing set to on.
func (c Config) WithPressEvents(on bool) Config {
	c.PublishPresses = on
	return c
}
