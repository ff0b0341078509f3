package event

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dshills/keycalc/internal/event/topic"
)

func startBus(t *testing.T, opts ...BusOption) Bus {
	t.Helper()
	bus := NewBus(opts...)
	if err := bus.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	t.Cleanup(func() { bus.Stop(context.Background()) })
	return bus
}

func TestBus_StartStop(t *testing.T) {
	bus := NewBus()

	if err := bus.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if !bus.IsRunning() {
		t.Error("expected bus to be running after Start()")
	}
	if err := bus.Start(); err != ErrBusAlreadyRunning {
		t.Errorf("expected ErrBusAlreadyRunning, got %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := bus.Stop(ctx); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	if bus.IsRunning() {
		t.Error("expected bus to not be running after Stop()")
	}
	if err := bus.Stop(ctx); err != ErrBusNotRunning {
		t.Errorf("expected ErrBusNotRunning, got %v", err)
	}
}

func TestBus_PublishNotRunning(t *testing.T) {
	bus := NewBus()
	err := bus.Publish(context.Background(), NewEvent(TopicDisplayChanged, CalcChanged{}, "test"))
	if err != ErrBusNotRunning {
		t.Errorf("expected ErrBusNotRunning, got %v", err)
	}
}

func TestBus_PublishInvalidEvent(t *testing.T) {
	bus := startBus(t)
	if err := bus.Publish(context.Background(), "no topic"); err != ErrInvalidEvent {
		t.Errorf("expected ErrInvalidEvent, got %v", err)
	}
}

func TestBus_SubscribeErrors(t *testing.T) {
	bus := startBus(t)

	if _, err := bus.Subscribe(TopicDisplayChanged, nil); err != ErrNilHandler {
		t.Errorf("expected ErrNilHandler, got %v", err)
	}
	if _, err := bus.SubscribeFunc("", func(context.Context, any) error { return nil }); err != ErrInvalidTopic {
		t.Errorf("expected ErrInvalidTopic, got %v", err)
	}
}

func TestBus_SyncDelivery(t *testing.T) {
	bus := startBus(t)

	var got []string
	bus.SubscribeFunc(TopicDisplayChanged, func(ctx context.Context, ev any) error {
		e := ev.(Event[CalcChanged])
		got = append(got, e.Payload.Display)
		return nil
	})

	bus.Publish(context.Background(), NewEvent(TopicDisplayChanged, CalcChanged{Display: "19"}, "engine"))
	bus.Publish(context.Background(), NewEvent(TopicControlPressed, ControlPressed{Control: "1"}, "input"))

	if len(got) != 1 || got[0] != "19" {
		t.Errorf("expected [19], got %v", got)
	}
}

func TestBus_WildcardAndPriority(t *testing.T) {
	bus := startBus(t)

	var order []string
	record := func(name string) HandlerFunc {
		return func(context.Context, any) error {
			order = append(order, name)
			return nil
		}
	}

	bus.SubscribeFunc("calc.display.*", record("low"), WithPriority(PriorityLow))
	bus.SubscribeFunc("**", record("normal"))
	bus.SubscribeFunc(TopicDisplayChanged, record("critical"), WithPriority(PriorityCritical))

	bus.Publish(context.Background(), NewEvent(TopicDisplayChanged, CalcChanged{}, "engine"))

	want := []string{"critical", "normal", "low"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("expected %v, got %v", want, order)
			break
		}
	}
}

func TestBus_AsyncDelivery(t *testing.T) {
	bus := startBus(t)

	var wg sync.WaitGroup
	wg.Add(3)
	var count atomic.Int32
	bus.SubscribeFunc(TopicControlPressed, func(context.Context, any) error {
		count.Add(1)
		wg.Done()
		return nil
	}, WithDeliveryMode(DeliveryAsync))

	for i := 0; i < 3; i++ {
		bus.Publish(context.Background(), NewEvent(TopicControlPressed, ControlPressed{}, "input"))
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for async delivery")
	}
	if count.Load() != 3 {
		t.Errorf("expected 3 deliveries, got %d", count.Load())
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := startBus(t)

	calls := 0
	sub, _ := bus.SubscribeFunc(TopicAppQuit, func(context.Context, any) error {
		calls++
		return nil
	})

	if err := bus.Unsubscribe(sub); err != nil {
		t.Fatalf("Unsubscribe() failed: %v", err)
	}
	if err := bus.Unsubscribe(sub); err != ErrSubscriptionNotFound {
		t.Errorf("expected ErrSubscriptionNotFound, got %v", err)
	}

	bus.Publish(context.Background(), NewEvent(TopicAppQuit, QuitRequested{}, "test"))
	if calls != 0 {
		t.Errorf("expected no calls after unsubscribe, got %d", calls)
	}
}

func TestBus_PauseSubscription(t *testing.T) {
	bus := startBus(t)

	calls := 0
	sub, _ := bus.SubscribeFunc(TopicAppQuit, func(context.Context, any) error {
		calls++
		return nil
	})

	sub.Pause()
	bus.Publish(context.Background(), NewEvent(TopicAppQuit, QuitRequested{}, "test"))
	sub.Resume()
	bus.Publish(context.Background(), NewEvent(TopicAppQuit, QuitRequested{}, "test"))

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}

	bus.Pause()
	bus.Publish(context.Background(), NewEvent(TopicAppQuit, QuitRequested{}, "test"))
	bus.Resume()
	if calls != 1 {
		t.Errorf("paused bus should drop events, got %d calls", calls)
	}
}

func TestBus_Once(t *testing.T) {
	bus := startBus(t)

	calls := 0
	bus.SubscribeFunc(TopicConfigChanged, func(context.Context, any) error {
		calls++
		return nil
	}, WithOnce())

	for i := 0; i < 3; i++ {
		bus.Publish(context.Background(), NewEvent(TopicConfigChanged, ConfigChanged{}, "config"))
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestBus_Filter(t *testing.T) {
	bus := startBus(t)

	var got []string
	bus.Subscribe(TopicDisplayChanged, AsHandler(func(ctx context.Context, e Event[CalcChanged]) error {
		got = append(got, e.Payload.Display)
		return nil
	}), WithFilter(func(ev any) bool {
		e, ok := ev.(Event[CalcChanged])
		return ok && e.Payload.Error == ""
	}))

	bus.Publish(context.Background(), NewEvent(TopicDisplayChanged, CalcChanged{Display: "Error", Error: "syntax"}, "engine"))
	bus.Publish(context.Background(), NewEvent(TopicDisplayChanged, CalcChanged{Display: "7"}, "engine"))

	if len(got) != 1 || got[0] != "7" {
		t.Errorf("expected [7], got %v", got)
	}
}

func TestFilterHelpers(t *testing.T) {
	evaluated := NewEvent(TopicEvaluated, CalcChanged{}, "engine")
	output := NewEvent(TopicScriptOutput, ScriptOutput{}, "script")
	emitted := NewEnvelope("script.answer", 42, "script:answer.lua")

	noScripts := ExcludeTopic("script.**")
	if !noScripts(evaluated) || noScripts(output) || noScripts(emitted) {
		t.Error("ExcludeTopic should only drop script topics")
	}

	fromEngine := FromSource("engine")
	if !fromEngine(evaluated) || fromEngine(output) || fromEngine("no metadata") {
		t.Error("FromSource should keep only engine events")
	}
}

func TestBus_PanicAndErrorIsolation(t *testing.T) {
	var panics, errs atomic.Int32
	var panicErr *PanicError
	bus := startBus(t,
		WithBusErrorHandler(func(event any, err error) {
			if errors.As(err, &panicErr) {
				panics.Add(1)
				return
			}
			errs.Add(1)
		}),
	)

	bus.SubscribeFunc(TopicControlPressed, func(context.Context, any) error {
		panic("boom")
	}, WithPriority(PriorityCritical))
	bus.SubscribeFunc(TopicControlPressed, func(context.Context, any) error {
		return errors.New("failed")
	}, WithPriority(PriorityHigh))

	reached := false
	bus.SubscribeFunc(TopicControlPressed, func(context.Context, any) error {
		reached = true
		return nil
	})

	bus.Publish(context.Background(), NewEvent(TopicControlPressed, ControlPressed{}, "input"))

	if !reached {
		t.Error("handler after a panicking one should still run")
	}
	if panics.Load() != 1 || errs.Load() != 1 {
		t.Errorf("expected 1 panic and 1 error, got %d and %d", panics.Load(), errs.Load())
	}

	if panicErr == nil || panicErr.Topic != TopicControlPressed || panicErr.Value != "boom" || len(panicErr.Stack) == 0 {
		t.Errorf("unexpected panic error %+v", panicErr)
	}
	if !errors.Is(panicErr, ErrHandlerPanic) {
		t.Error("PanicError should match ErrHandlerPanic")
	}

	stats := bus.Stats()
	if stats.HandlerPanics != 1 || stats.HandlerErrors != 1 || stats.EventsDelivered != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if stats.ActiveSubscribers != 3 {
		t.Errorf("expected 3 subscribers, got %d", stats.ActiveSubscribers)
	}
}

func TestEnvelope(t *testing.T) {
	bus := startBus(t)

	var payload any
	bus.SubscribeFunc("script.*", func(ctx context.Context, ev any) error {
		payload = ev.(Envelope).Payload
		return nil
	})

	env := NewEnvelope(topic.Topic("script.custom"), map[string]any{"n": 1}, "script:custom.lua")
	if env.Metadata.ID == "" || env.Metadata.Source != "script:custom.lua" {
		t.Errorf("unexpected metadata %+v", env.Metadata)
	}
	bus.Publish(context.Background(), env)

	if m, ok := payload.(map[string]any); !ok || m["n"] != 1 {
		t.Errorf("expected envelope payload, got %#v", payload)
	}
}

func TestNewEvent(t *testing.T) {
	e := NewEvent(TopicDisplayChanged, CalcChanged{Display: "0"}, "engine")
	if e.Metadata.ID == "" {
		t.Error("expected event ID")
	}
	if e.Metadata.Timestamp.IsZero() {
		t.Error("expected timestamp")
	}
	if e.EventTopic() != TopicDisplayChanged {
		t.Errorf("expected %s, got %s", TopicDisplayChanged, e.EventTopic())
	}

	other := NewEvent(TopicDisplayChanged, CalcChanged{}, "engine")
	if other.Metadata.ID == e.Metadata.ID {
		t.Error("event IDs should be unique")
	}

	var mp MetadataProvider = e
	if mp.EventMetadata().Source != "engine" {
		t.Errorf("expected source engine, got %q", mp.EventMetadata().Source)
	}
}

func TestPriorityAndModeStrings(t *testing.T) {
	if PriorityCritical.String() != "critical" || PriorityLow.String() != "low" {
		t.Error("unexpected priority names")
	}
	if DeliverySync.String() != "sync" || DeliveryAsync.String() != "async" {
		t.Error("unexpected delivery mode names")
	}
}
