// Package viz provides terminal visualization of a solve in progress.
//
// The package implements a Bubble Tea model fed from the solver's observer:
//
//   - [Watch]: live view of an adaptive solve with step statistics
//   - [Canvas]: Braille-based pixel canvas for the phase trail
//   - Theme selection with 3 built-in color schemes
//
// # Key Bindings
//
//	Q     - Stop the solve and quit
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
