package event

import "github.com/dshills/keycalc/internal/event/topic"

// Well-known topics.
const (
	TopicDisplayChanged topic.Topic = "calc.display.changed"
	TopicEvaluated      topic.Topic = "calc.evaluated"
	TopicMemoryChanged  topic.Topic = "calc.memory.changed"
	TopicControlPressed topic.Topic = "input.control.pressed"
	TopicConfigChanged  topic.Topic = "config.changed"
	TopicScriptOutput   topic.Topic = "script.output"
	TopicAppQuit        topic.Topic = "app.quit"
)

// CalcChanged is the payload of every calc.* topic.
type CalcChanged struct {
	SessionID string
	Op        string
	Input     string // Token or memory action, when the operation has one

	Display      string
	History      string
	Memory       float64
	MemoryActive bool
	Changed      bool

	// Error is the absorbed evaluation failure, empty on success.
	Error string
}

// ControlPressed is published when a key or click resolves to a control.
type ControlPressed struct {
	Control string
	Action  string
	Source  string
}

// ConfigChanged is published after a configuration reload.
type ConfigChanged struct {
	Path     string
	Sections []string
}

// ScriptOutput carries one line printed by a script.
type ScriptOutput struct {
	Script string
	Line   string
}

// QuitRequested is published to request shutdown.
type QuitRequested struct {
	Reason string
}
