// Package event provides the message bus that connects keycalc's components.
//
// The calculator engine, the input layer, the renderers, the config watcher
// and the script host never call each other directly for notifications.
// They publish events on hierarchical topics and subscribe with wildcard
// patterns.
//
// # Topics
//
//	calc.display.changed   - a calculator operation completed
//	calc.evaluated         - an evaluation was attempted
//	calc.memory.changed    - a memory action was applied
//	input.control.pressed  - a key or click resolved to a control
//	config.changed         - the configuration was reloaded
//	script.output          - a script printed a line
//	app.quit               - shutdown was requested
//
// # Delivery Modes
//
// Handlers run either synchronously in the publisher's goroutine
// (DeliverySync, the default) or on the bus worker pool (DeliveryAsync).
// Renderers subscribe synchronously so a frame is drawn before the next
// key is read; loggers and script hooks subscribe asynchronously.
//
// Within a delivery mode, handlers run in priority order, lowest first.
//
// # Usage
//
//	bus := event.NewBus()
//	if err := bus.Start(); err != nil {
//	    return err
//	}
//	defer bus.Stop(context.Background())
//
//	bus.SubscribeFunc(event.TopicDisplayChanged, func(ctx context.Context, ev any) error {
//	    e := ev.(event.Event[event.CalcChanged])
//	    fmt.Println(e.Payload.Display)
//	    return nil
//	}, event.WithPriority(event.PriorityCritical))
//
//	bus.Publish(ctx, event.NewEvent(event.TopicDisplayChanged, payload, "engine"))
//
// # Thread Safety
//
// The Bus is safe for concurrent use. Handlers manage their own state.
package event
