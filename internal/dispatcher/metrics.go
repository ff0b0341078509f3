package dispatcher

import (
	"cmp"
	"slices"
	"sync"
	"time"
)

// KindStats counts the dispatches of one action kind.
type KindStats struct {
	Kind     Kind
	Count    uint64
	Errors   uint64
	Slowest  time.Duration
	Total    time.Duration
	LastArg  string
	LastSeen time.Time
}

// Mean is the average handling time of the kind.
func (s KindStats) Mean() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// Metrics counts what the dispatcher has handled, grouped by action kind
// and by the control that raised the action.
type Metrics struct {
	mu sync.RWMutex

	kinds    map[Kind]*KindStats
	controls map[string]uint64

	dispatches uint64
	errors     uint64
	panics     uint64
	elapsed    time.Duration
}

// NewMetrics returns empty counters.
func NewMetrics() *Metrics {
	return &Metrics{
		kinds:    make(map[Kind]*KindStats),
		controls: make(map[string]uint64),
	}
}

func (m *Metrics) record(a Action, took time.Duration, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dispatches++
	m.elapsed += took

	s := m.kinds[a.Kind]
	if s == nil {
		s = &KindStats{Kind: a.Kind}
		m.kinds[a.Kind] = s
	}
	s.Count++
	s.Total += took
	s.Slowest = max(s.Slowest, took)
	s.LastArg = a.Arg
	s.LastSeen = time.Now()

	if status == StatusError {
		m.errors++
		s.Errors++
	}
	if a.Control != "" {
		m.controls[a.Control]++
	}
}

func (m *Metrics) recordPanic() {
	m.mu.Lock()
	m.panics++
	m.mu.Unlock()
}

// TotalDispatches is the number of actions dispatched.
func (m *Metrics) TotalDispatches() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dispatches
}

// TotalErrors is the number of actions that ended in StatusError,
// recovered panics included.
func (m *Metrics) TotalErrors() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.errors
}

// TotalPanics is the number of handler panics recovered.
func (m *Metrics) TotalPanics() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.panics
}

// AverageDuration is the mean time spent per dispatch.
func (m *Metrics) AverageDuration() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.dispatches == 0 {
		return 0
	}
	return m.elapsed / time.Duration(m.dispatches)
}

// Kind returns a copy of the counters for k.
func (m *Metrics) Kind(k Kind) (KindStats, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.kinds[k]
	if !ok {
		return KindStats{Kind: k}, false
	}
	return *s, true
}

// TopKinds returns up to n kinds, most dispatched first. Ties sort by name.
func (m *Metrics) TopKinds(n int) []KindStats {
	m.mu.RLock()
	out := make([]KindStats, 0, len(m.kinds))
	for _, s := range m.kinds {
		out = append(out, *s)
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b KindStats) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Kind, b.Kind)
	})
	return out[:min(n, len(out))]
}

// Presses is how often the named control raised an action.
func (m *Metrics) Presses(control string) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.controls[control]
}

// Reset zeroes every counter.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.kinds)
	clear(m.controls)
	m.dispatches, m.errors, m.panics, m.elapsed = 0, 0, 0, 0
}
