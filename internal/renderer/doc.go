// Package renderer draws a calculator session on a backend.
//
// The screen is a framed panel: the history annotation with the memory
// indicator, the display line, and a 4x6 grid of buttons. Buttons are
// Controls; a Control knows the dispatcher action it triggers, so mouse
// hits and keyboard presses flow through the same path. A pressed control
// is highlighted for a short time by the Animator.
//
// Usage:
//
//	b, _ := backend.NewTerminal(backend.WithTitle("keycalc"))
//	v := renderer.New(b, renderer.WithTheme(renderer.DefaultTheme()))
//	v.SetState(calc.State())
//	v.Render()
package renderer
