// Package dynamo provides the core primitives shared by the integrators,
// the solver and the physics models.
//
// The package defines the substrate every other component operates on:
//
//   - [State]: fixed-length real vector with value semantics
//   - [System]: capability for ODE right-hand sides (dX/dt = f(t, X))
//   - [Codec] and [Typed]: adapters for named-field state aggregates
//   - [Problem]: a system together with its time span and initial state
//
// # Example
//
//	lorenz := physics.NewLorenz(10, 28, 8.0/3.0)
//	prob, err := dynamo.NewProblem(lorenz, 0, 100, dynamo.State{1, 1, 1})
//	if err != nil {
//	    return err
//	}
//	sol, err := solver.Solve(ctx, prob, solver.DefaultConfig())
//
// # Thread Safety
//
// State values are never mutated by the solver, and a System must be a pure
// function of its inputs, so a Problem can be shared across goroutines as
// long as callers do not write into Y0.
package dynamo
