package dispatcher

import (
	"context"
	"log/slog"
)

// PreDispatchHook is called before an action is dispatched.
// Returning false cancels the dispatch.
type PreDispatchHook interface {
	PreDispatch(ctx context.Context, action *Action) bool
}

// PostDispatchHook is called after an action is dispatched.
type PostDispatchHook interface {
	PostDispatch(ctx context.Context, action Action, result *Result)
}

// PreDispatchFunc is a function adapter for PreDispatchHook.
type PreDispatchFunc func(ctx context.Context, action *Action) bool

// PreDispatch implements PreDispatchHook.
func (f PreDispatchFunc) PreDispatch(ctx context.Context, action *Action) bool {
	return f(ctx, action)
}

// PostDispatchFunc is a function adapter for PostDispatchHook.
type PostDispatchFunc func(ctx context.Context, action Action, result *Result)

// PostDispatch implements PostDispatchHook.
func (f PostDispatchFunc) PostDispatch(ctx context.Context, action Action, result *Result) {
	f(ctx, action, result)
}

// LoggingHook logs every dispatch at debug level and failures at warn.
type LoggingHook struct {
	Logger *slog.Logger
}

// NewLoggingHook creates a logging hook.
func NewLoggingHook(logger *slog.Logger) *LoggingHook {
	return &LoggingHook{Logger: logger}
}

// PreDispatch logs the action being dispatched.
func (h *LoggingHook) PreDispatch(ctx context.Context, action *Action) bool {
	h.Logger.DebugContext(ctx, "dispatching action",
		"action", action.String(),
		"control", action.Control,
		"source", action.Source,
	)
	return true
}

// PostDispatch logs the dispatch result.
func (h *LoggingHook) PostDispatch(ctx context.Context, action Action, result *Result) {
	if result.IsError() {
		h.Logger.WarnContext(ctx, "action failed", "action", action.String(), "error", result.Err)
		return
	}
	h.Logger.DebugContext(ctx, "dispatch complete", "action", action.String(), "status", result.Status.String())
}
