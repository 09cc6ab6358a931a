// Package solver drives an embedded Runge-Kutta pair across an initial-value
// problem.
//
// Solve runs a small state machine: initialise (validate, pick h0), attempt a
// step, accept or reject it through the controller, and repeat until the
// final time is reached or a fatal condition stops the run. Accepted points
// are collected in a Trajectory, optionally with dense segments for
// evaluation at arbitrary times.
//
// Failures are returned as *SolveError carrying the partial trajectory; the
// sentinel causes live in package dynamo and match with errors.Is.
//
// The package performs no I/O apart from optional logging through zerolog.
package solver
