package lua

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// DefaultQueueSize is the executor queue length used when none is given.
const DefaultQueueSize = 64

// job is one queued function. reply is nil for fire-and-forget jobs.
type job struct {
	fn    func() error
	reply chan error
}

func (j job) finish(err error) {
	if j.reply != nil {
		j.reply <- err
	}
}

// ExecutorStats counts what an executor has done.
type ExecutorStats struct {
	Completed uint64
	Failed    uint64
	// Rejected counts async jobs refused because the queue was full.
	Rejected uint64
}

// Executor owns the goroutine that touches the Lua state. Jobs run one at
// a time in submission order; Execute and ExecuteAsync are safe from any
// goroutine.
type Executor struct {
	queue chan job
	done  chan struct{}
	once  sync.Once

	// stopped closes when Run returns; nothing reads the queue after that.
	stopped  chan struct{}
	stopOnce sync.Once

	completed atomic.Uint64
	failed    atomic.Uint64
	rejected  atomic.Uint64
}

func NewExecutor(queueSize int) *Executor {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Executor{
		queue:   make(chan job, queueSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Run executes jobs until ctx is done or Close is called. Either way the
// executor is closed afterwards and jobs left in the queue fail with the
// reason.
func (e *Executor) Run(ctx context.Context) {
	defer e.stopOnce.Do(func() { close(e.stopped) })
	for {
		select {
		case <-ctx.Done():
			e.Close()
			e.drain(ctx.Err())
			return
		case <-e.done:
			e.drain(ErrExecutorClosed)
			return
		case j := <-e.queue:
			err := e.run(j.fn)
			if err != nil {
				e.failed.Add(1)
			} else {
				e.completed.Add(1)
			}
			j.finish(err)
		}
	}
}

// run calls fn, turning a panic into an error so one bad script cannot
// stop the loop.
func (e *Executor) run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(error); ok {
				err = rerr
				return
			}
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

func (e *Executor) drain(reason error) {
	for {
		select {
		case j := <-e.queue:
			j.finish(reason)
		default:
			return
		}
	}
}

// Execute runs fn on the executor and waits for its error. If ctx ends
// after fn was queued, fn still runs but its result is discarded.
func (e *Executor) Execute(ctx context.Context, fn func() error) error {
	if e.Closed() {
		return ErrExecutorClosed
	}
	j := job{fn: fn, reply: make(chan error, 1)}
	select {
	case e.queue <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		return ErrExecutorClosed
	}

	select {
	case err := <-j.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-e.stopped:
		// Run may have finished or drained j just before stopping.
		select {
		case err := <-j.reply:
			return err
		default:
			return ErrExecutorClosed
		}
	}
}

// ExecuteAsync queues fn and returns at once. A full queue fails with
// ErrQueueFull rather than blocking the caller.
func (e *Executor) ExecuteAsync(fn func() error) error {
	if e.Closed() {
		return ErrExecutorClosed
	}
	select {
	case e.queue <- job{fn: fn}:
		return nil
	case <-e.done:
		return ErrExecutorClosed
	default:
		e.rejected.Add(1)
		return ErrQueueFull
	}
}

// Close stops Run. It is safe to call more than once.
func (e *Executor) Close() {
	e.once.Do(func() { close(e.done) })
}

func (e *Executor) Closed() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

func (e *Executor) Stats() ExecutorStats {
	return ExecutorStats{
		Completed: e.completed.Load(),
		Failed:    e.failed.Load(),
		Rejected:  e.rejected.Load(),
	}
}
