package renderer

// ControlKind groups controls for styling.
type ControlKind int

const (
	ControlDigit ControlKind = iota
	ControlOperator
	ControlFunction
	ControlMemory
	ControlEquals
)

// Control is one on-screen button.
type Control struct {
	// ID names the control in press events, e.g. "digit-7".
	ID string

	// Label is the button face.
	Label string

	// Action is the dispatcher action, e.g. "append:7".
	Action string

	Kind ControlKind
}

// DefaultControls returns the button grid, top row first.
func DefaultControls() [][]Control {
	return [][]Control{
		{
			{ID: "memory-clear", Label: "MC", Action: "memory:clear", Kind: ControlMemory},
			{ID: "memory-recall", Label: "MR", Action: "memory:recall", Kind: ControlMemory},
			{ID: "memory-add", Label: "M+", Action: "memory:store-add", Kind: ControlMemory},
			{ID: "memory-subtract", Label: "M-", Action: "memory:store-subtract", Kind: ControlMemory},
		},
		{
			{ID: "clear", Label: "C", Action: "clear", Kind: ControlFunction},
			{ID: "backspace", Label: "⌫", Action: "backspace", Kind: ControlFunction},
			{ID: "toggle-sign", Label: "±", Action: "toggle-sign", Kind: ControlFunction},
			{ID: "divide", Label: "÷", Action: "append:÷", Kind: ControlOperator},
		},
		{
			digit("7"), digit("8"), digit("9"),
			{ID: "multiply", Label: "×", Action: "append:×", Kind: ControlOperator},
		},
		{
			digit("4"), digit("5"), digit("6"),
			{ID: "subtract", Label: "-", Action: "append:-", Kind: ControlOperator},
		},
		{
			digit("1"), digit("2"), digit("3"),
			{ID: "add", Label: "+", Action: "append:+", Kind: ControlOperator},
		},
		{
			{ID: "percent", Label: "%", Action: "append:%", Kind: ControlFunction},
			digit("0"),
			{ID: "decimal", Label: ".", Action: "append:.", Kind: ControlDigit},
			{ID: "equals", Label: "=", Action: "calculate", Kind: ControlEquals},
		},
	}
}

func digit(d string) Control {
	return Control{ID: "digit-" + d, Label: d, Action: "append:" + d, Kind: ControlDigit}
}

// FindControl returns the control with the given ID.
func FindControl(controls [][]Control, id string) (Control, bool) {
	for _, row := range controls {
		for _, c := range row {
			if c.ID == id {
				return c, true
			}
		}
	}
	return Control{}, false
}

// ASCII operators share a button with their display glyphs.
var actionAliases = map[string]string{
	"append:*": "append:×",
	"append:/": "append:÷",
}

// ControlForAction returns the first control triggering action, so that
// keyboard input can animate the matching button.
func ControlForAction(controls [][]Control, action string) (Control, bool) {
	if alias, ok := actionAliases[action]; ok {
		action = alias
	}
	for _, row := range controls {
		for _, c := range row {
			if c.Action == action {
				return c, true
			}
		}
	}
	return Control{}, false
}
