package lua

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestExecutorSerializes(t *testing.T) {
	exec := NewExecutor(0)
	if cap(exec.queue) != DefaultQueueSize {
		t.Errorf("expected queue size %d, got %d", DefaultQueueSize, cap(exec.queue))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go exec.Run(ctx)
	defer exec.Close()

	var running, maxRunning atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := exec.Execute(ctx, func() error {
				n := running.Add(1)
				if n > maxRunning.Load() {
					maxRunning.Store(n)
				}
				time.Sleep(time.Millisecond)
				running.Add(-1)
				return nil
			})
			if err != nil {
				t.Errorf("Execute failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if maxRunning.Load() != 1 {
		t.Errorf("expected one call at a time, saw %d", maxRunning.Load())
	}
}

func TestExecutorErrorsAndPanics(t *testing.T) {
	exec := NewExecutor(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go exec.Run(ctx)
	defer exec.Close()

	want := errors.New("failed")
	if err := exec.Execute(ctx, func() error { return want }); err != want {
		t.Errorf("expected %v, got %v", want, err)
	}

	err := exec.Execute(ctx, func() error { panic("boom") })
	if err == nil || err.Error() != "lua panic: boom" {
		t.Errorf("expected recovered panic, got %v", err)
	}

	if err := exec.Execute(ctx, func() error { return nil }); err != nil {
		t.Fatalf("executor should survive a panic, got %v", err)
	}
	if st := exec.Stats(); st.Completed != 1 || st.Failed != 2 {
		t.Errorf("expected 1 completed and 2 failed, got %+v", st)
	}
}

func TestExecutorAsync(t *testing.T) {
	exec := NewExecutor(1)

	done := make(chan struct{})
	if err := exec.ExecuteAsync(func() error { close(done); return nil }); err != nil {
		t.Fatalf("ExecuteAsync failed: %v", err)
	}
	if err := exec.ExecuteAsync(func() error { return nil }); !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}
	if st := exec.Stats(); st.Rejected != 1 {
		t.Errorf("expected 1 rejected job, got %+v", st)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go exec.Run(ctx)
	defer exec.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async call did not run")
	}
}

func TestExecutorClosed(t *testing.T) {
	exec := NewExecutor(1)
	exec.Close()
	exec.Close()

	if !exec.Closed() {
		t.Error("expected closed")
	}
	if err := exec.Execute(context.Background(), func() error { return nil }); !errors.Is(err, ErrExecutorClosed) {
		t.Errorf("expected ErrExecutorClosed, got %v", err)
	}
	if err := exec.ExecuteAsync(func() error { return nil }); !errors.Is(err, ErrExecutorClosed) {
		t.Errorf("expected ErrExecutorClosed, got %v", err)
	}
}

func TestExecutorStopsWithContext(t *testing.T) {
	exec := NewExecutor(4)
	ctx, cancel := context.WithCancel(context.Background())
	ran := make(chan struct{})
	go func() {
		exec.Run(ctx)
		close(ran)
	}()
	cancel()
	<-ran

	if !exec.Closed() {
		t.Error("expected executor closed once its context ends")
	}

	errc := make(chan error, 1)
	go func() { errc <- exec.Execute(context.Background(), func() error { return nil }) }()
	select {
	case err := <-errc:
		if !errors.Is(err, ErrExecutorClosed) {
			t.Errorf("expected ErrExecutorClosed, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Execute blocked after Run stopped")
	}
}
