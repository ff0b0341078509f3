// Package gui runs the calculator in a desktop window.
//
// The window is a cell grid with the same geometry as a terminal, so the
// full-screen view, its layout and its press animation are shared with the
// terminal front-end: Window implements backend.Backend and the
// application drives it through RunTerminal. Drawing and input polling
// happen on the ebiten game loop.
package gui
