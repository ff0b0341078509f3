package lua

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keycalc/internal/event"
	"github.com/dshills/keycalc/internal/event/topic"
)

// scriptTopicRoot prefixes every topic published by calc.emit.
const scriptTopicRoot = "script"

type hook struct {
	fn     *lua.LFunction
	script string
}

// luaOn implements calc.on(pattern, fn). fn(topic, payload) runs on the
// executor after the event was published, never inside the publisher.
func (h *Host) luaOn(L *lua.LState) int {
	pattern := topic.Topic(L.CheckString(1))
	fn := L.CheckFunction(2)
	if h.bus == nil {
		L.RaiseError("calc.on: no event bus")
		return 0
	}
	if !pattern.IsValid() {
		L.ArgError(1, "invalid topic pattern")
		return 0
	}

	hk := hook{fn: fn, script: h.current}
	sub, err := h.bus.SubscribeFunc(pattern, func(_ context.Context, ev any) error {
		return h.scheduleHook(hk, ev)
	},
		event.WithDeliveryMode(event.DeliveryAsync),
		event.WithPriority(event.PriorityLow),
		// A hook that prints would otherwise feed itself.
		event.WithFilter(event.ExcludeTopic(event.TopicScriptOutput)),
	)
	if err != nil {
		L.RaiseError("calc.on: %v", err)
		return 0
	}

	h.mu.Lock()
	h.subs = append(h.subs, sub)
	h.mu.Unlock()
	return 0
}

// luaEmit implements calc.emit(name, value), publishing value under
// "script.<name>".
func (h *Host) luaEmit(L *lua.LState) int {
	name := L.CheckString(1)
	t := topic.Topic(scriptTopicRoot).Child(name)
	if name == "" || !t.IsValid() || t.IsWildcard() {
		L.ArgError(1, "invalid event name")
		return 0
	}
	if h.bus == nil {
		return 0
	}
	payload := goValue(L.Get(2))
	env := event.NewEnvelope(t, payload, scriptTopicRoot+":"+h.current)
	if err := h.bus.Publish(context.Background(), env); err != nil {
		h.logger.Debug("script event not published", "topic", t, "error", err)
	}
	return 0
}

// scheduleHook queues one hook call. The bus worker never waits on the
// Lua state.
func (h *Host) scheduleHook(hk hook, ev any) error {
	tp, payload := eventPayload(ev)
	err := h.exec.ExecuteAsync(func() error {
		h.current = hk.script
		defer func() { h.current = "" }()

		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()
		_, err := h.state.CallFunction(ctx, hk.fn, lua.LString(tp), luaValue(h.state.L, payload))
		if err != nil {
			h.logger.Warn("script hook failed", "script", hk.script, "topic", tp, "error", err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("scheduling hook from %s: %w", hk.script, err)
	}
	return nil
}

// eventPayload flattens a published value into a topic and a value the
// luaValue can convert.
func eventPayload(ev any) (string, any) {
	switch e := ev.(type) {
	case event.Event[event.CalcChanged]:
		p := e.Payload
		return e.Type.String(), map[string]any{
			"session":       p.SessionID,
			"op":            p.Op,
			"input":         p.Input,
			"display":       p.Display,
			"history":       p.History,
			"memory":        p.Memory,
			"memory_active": p.MemoryActive,
			"changed":       p.Changed,
			"error":         p.Error,
		}
	case event.Event[event.ControlPressed]:
		return e.Type.String(), map[string]any{
			"control": e.Payload.Control,
			"action":  e.Payload.Action,
			"source":  e.Payload.Source,
		}
	case event.Event[event.ConfigChanged]:
		return e.Type.String(), map[string]any{
			"path":     e.Payload.Path,
			"sections": e.Payload.Sections,
		}
	case event.Event[event.QuitRequested]:
		return e.Type.String(), map[string]any{"reason": e.Payload.Reason}
	case event.Envelope:
		return e.Topic.String(), e.Payload
	case event.TopicProvider:
		return e.EventTopic().String(), nil
	default:
		return "", nil
	}
}
