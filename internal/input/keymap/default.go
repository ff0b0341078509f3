package keymap

// Default returns the built-in bindings. They follow the classic desktop
// calculator keyboard: digits and operators type themselves, Enter and "="
// evaluate, Escape clears and Backspace deletes.
func Default() *Keymap {
	km := NewKeymap("default").WithSource("default")

	for _, tok := range []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", ".", "%", "(", ")"} {
		km.Add(tok, "append:"+tok)
	}
	for _, op := range []string{"+", "-", "*", "/"} {
		km.Add(op, "append:"+op)
	}
	km.Add("x", "append:×")

	km.Bindings = append(km.Bindings,
		Binding{Keys: "Enter", Action: "calculate", Description: "Evaluate"},
		Binding{Keys: "=", Action: "calculate", Description: "Evaluate"},
		Binding{Keys: "Escape", Action: "clear", Description: "Clear display and history"},
		Binding{Keys: "Delete", Action: "clear", Description: "Clear display and history"},
		Binding{Keys: "Backspace", Action: "backspace", Description: "Delete last character"},
		Binding{Keys: "n", Action: "toggle-sign", Description: "Negate"},
		Binding{Keys: "Ctrl+l", Action: "memory:clear", Description: "Memory clear"},
		Binding{Keys: "r", Action: "memory:recall", Description: "Memory recall"},
		Binding{Keys: "p", Action: "memory:store-add", Description: "Memory add"},
		Binding{Keys: "s", Action: "memory:store-subtract", Description: "Memory subtract"},
		Binding{Keys: "q", Action: "quit", Description: "Quit"},
		Binding{Keys: "Ctrl+c", Action: "quit", Description: "Quit"},
	)
	return km
}
