package app

import (
	"context"

	"github.com/dshills/keycalc/internal/event"
)

// subscriptionManager owns the bus subscriptions between components.
type subscriptionManager struct {
	app           *Application
	subscriptions []event.Subscription
}

func newSubscriptionManager(app *Application) *subscriptionManager {
	return &subscriptionManager{app: app}
}

// setupSubscriptions wires all component subscriptions.
func (sm *subscriptionManager) setupSubscriptions() error {
	bus := sm.app.bus

	sub, err := bus.SubscribeFunc(event.TopicConfigChanged, sm.handleConfigChange)
	if err != nil {
		return err
	}
	sm.addSubscription(sub)

	// Quit is seen first, and only once.
	sub, err = bus.SubscribeFunc(event.TopicAppQuit, sm.handleQuit,
		event.WithPriority(event.PriorityCritical), event.WithOnce())
	if err != nil {
		return err
	}
	sm.addSubscription(sub)

	return nil
}

func (sm *subscriptionManager) addSubscription(sub event.Subscription) {
	sm.subscriptions = append(sm.subscriptions, sub)
}

// cleanup unsubscribes everything.
func (sm *subscriptionManager) cleanup() {
	for _, sub := range sm.subscriptions {
		_ = sm.app.bus.Unsubscribe(sub)
	}
	sm.subscriptions = nil
}

// handleConfigChange applies reloaded sections to the running components.
func (sm *subscriptionManager) handleConfigChange(_ context.Context, ev any) error {
	e, ok := ev.(event.Event[event.ConfigChanged])
	if !ok {
		return nil
	}

	app := sm.app
	for _, section := range e.Payload.Sections {
		switch section {
		case "keymap":
			app.reloadKeymap()
		case "ui":
			app.applyUI()
		case "log":
			if app.opts.LogLevel == "" {
				app.logger.SetLevel(app.config.Log().Level)
			}
		case "scripts", "mcp":
			app.log.Info("config section changed, restart to apply", "section", section)
		}
	}
	return nil
}

func (sm *subscriptionManager) handleQuit(_ context.Context, ev any) error {
	if e, ok := ev.(event.Event[event.QuitRequested]); ok {
		sm.app.log.Info("quit requested", "reason", e.Payload.Reason)
	}
	sm.app.closeQuit()
	return nil
}
