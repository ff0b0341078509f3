// Package core provides the cell, style, color and geometry types shared by
// the calculator view and its backends.
package core
