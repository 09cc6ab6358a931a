// Package physics provides the dynamical systems solved by dynode.
//
// Each model implements [dynamo.System]:
//
//   - [Lorenz]: butterfly attractor
//   - [Rossler]: single-scroll chaotic attractor
//   - [VanDerPol]: relaxation oscillator with a limit cycle
//   - [Pendulum]: nonlinear pendulum
//   - [TwoBody]: Kepler problem, with [CircularOrbit] as a closed-form reference
//   - [CR3BP]: circular restricted three-body problem over a named-field [StateVector]
//
// Models implement [dynamo.Configurable] for runtime parameter adjustment
// and, where a conserved quantity exists, [dynamo.Hamiltonian].
//
// # Invariants
//
// For Hamiltonian systems, use [dynamo.Hamiltonian] to monitor drift:
//
//	sys := physics.NewTwoBody(1)
//	if h, ok := sys.(dynamo.Hamiltonian); ok {
//	    energy := h.Energy(state)
//	}
package physics
