package renderer

import (
	"sync"
	"time"
)

// DefaultPressDuration is how long a pressed control stays highlighted.
const DefaultPressDuration = 200 * time.Millisecond

// Animator tracks which controls are showing press feedback.
// Each press highlights its control and schedules the release; a repeated
// press of the same control extends the highlight.
type Animator struct {
	mu       sync.Mutex
	duration time.Duration
	pressed  map[string]press
	seq      uint64
	onChange func()
	stopped  bool
}

type press struct {
	timer *time.Timer
	seq   uint64
}

// NewAnimator creates an animator. onChange, if non-nil, is called outside
// the lock whenever the pressed set changes.
func NewAnimator(duration time.Duration, onChange func()) *Animator {
	if duration <= 0 {
		duration = DefaultPressDuration
	}
	return &Animator{
		duration: duration,
		pressed:  make(map[string]press),
		onChange: onChange,
	}
}

// Press highlights the control with the given ID.
func (a *Animator) Press(id string) {
	if id == "" {
		return
	}

	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	if p, ok := a.pressed[id]; ok {
		p.timer.Stop()
	}
	a.seq++
	seq := a.seq
	a.pressed[id] = press{
		timer: time.AfterFunc(a.duration, func() { a.release(id, seq) }),
		seq:   seq,
	}
	a.mu.Unlock()

	a.changed()
}

func (a *Animator) release(id string, seq uint64) {
	a.mu.Lock()
	// A newer press replaced this one.
	if p, ok := a.pressed[id]; !ok || p.seq != seq {
		a.mu.Unlock()
		return
	}
	delete(a.pressed, id)
	a.mu.Unlock()

	a.changed()
}

func (a *Animator) changed() {
	if a.onChange != nil {
		a.onChange()
	}
}

// IsPressed reports whether the control is currently highlighted.
func (a *Animator) IsPressed(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.pressed[id]
	return ok
}

// Active returns the number of highlighted controls.
func (a *Animator) Active() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pressed)
}

// SetDuration changes the highlight time for future presses.
func (a *Animator) SetDuration(d time.Duration) {
	if d <= 0 {
		d = DefaultPressDuration
	}
	a.mu.Lock()
	a.duration = d
	a.mu.Unlock()
}

// Duration returns the highlight time.
func (a *Animator) Duration() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.duration
}

// Stop cancels pending releases and ignores further presses.
func (a *Animator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id, p := range a.pressed {
		p.timer.Stop()
		delete(a.pressed, id)
	}
	a.stopped = true
}
