package event

import "time"

// BusOption tunes a bus built by NewBus.
type BusOption func(*busConfig)

type busConfig struct {
	queueSize    int
	workers      int
	asyncTimeout time.Duration
	errorHandler ErrorHandler
}

func defaultBusConfig() busConfig {
	return busConfig{queueSize: 1024, workers: 2, asyncTimeout: 5 * time.Second}
}

// WithAsyncQueueSize bounds the number of queued async deliveries.
func WithAsyncQueueSize(n int) BusOption {
	return func(c *busConfig) {
		if n > 0 {
			c.queueSize = n
		}
	}
}

// WithAsyncWorkerCount sets how many goroutines run async handlers.
func WithAsyncWorkerCount(n int) BusOption {
	return func(c *busConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithDefaultTimeout bounds each async handler call; zero means no limit.
func WithDefaultTimeout(d time.Duration) BusOption {
	return func(c *busConfig) { c.asyncTimeout = d }
}

// WithBusErrorHandler reports subscriber errors and panics to h.
func WithBusErrorHandler(h ErrorHandler) BusOption {
	return func(c *busConfig) { c.errorHandler = h }
}
