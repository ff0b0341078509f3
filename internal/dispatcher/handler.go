package dispatcher

import "context"

// Handler executes one kind of action.
type Handler interface {
	Handle(ctx context.Context, action Action) Result
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, action Action) Result

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, action Action) Result {
	return f(ctx, action)
}

// Feedback is told which control originated each dispatched action.
// The renderer uses it to highlight the pressed button.
type Feedback interface {
	Press(control string)
}
