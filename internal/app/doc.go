// Package app wires the calculator together and runs its front-ends.
//
// New bootstraps the components in dependency order:
//
//	event bus -> config -> logger -> calculator -> dispatcher ->
//	scripts -> keymap -> change publisher -> subscriptions
//
// RunTerminal drives the full-screen view on a backend; RunLine reads key
// sequences line by line and redraws a one-line readout. Both stop on a
// quit action, Quit, or cancellation of their context.
package app
