package app

import (
	"context"

	"github.com/dshills/keycalc/internal/engine"
	"github.com/dshills/keycalc/internal/event"
	"github.com/dshills/keycalc/internal/event/topic"
)

// topicFor returns the bus topic for a completed operation.
func topicFor(op engine.Op) topic.Topic {
	switch op {
	case engine.OpCalculate:
		return event.TopicEvaluated
	case engine.OpMemory:
		return event.TopicMemoryChanged
	default:
		return event.TopicDisplayChanged
	}
}

func calcPayload(sessionID string, ch engine.Change) event.CalcChanged {
	p := event.CalcChanged{
		SessionID:    sessionID,
		Op:           string(ch.Op),
		Display:      ch.After.Display,
		History:      ch.After.History,
		Memory:       ch.After.Memory,
		MemoryActive: ch.After.MemoryActive,
		Changed:      ch.Changed(),
	}
	switch ch.Op {
	case engine.OpAppend:
		p.Input = ch.Token
	case engine.OpMemory:
		p.Input = string(ch.Action)
	}
	if ch.Err != nil {
		p.Error = ch.Err.Error()
	}
	return p
}

// publishChange forwards a calculator change to the bus.
func (app *Application) publishChange(ch engine.Change) {
	ev := event.NewEvent(topicFor(ch.Op), calcPayload(app.calc.ID(), ch), "engine")
	if err := app.bus.Publish(context.Background(), ev); err != nil {
		app.log.Debug("publishing calculator change failed", "op", ch.Op, "error", err)
	}
}
