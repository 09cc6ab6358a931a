package physics

import (
	"fmt"

	"github.com/san-kum/dynode/internal/dynamo"
)

// VanDerPol implements the Van der Pol oscillator.
// State: [x, y] where y = dx/dt
// Equations:
//
//	dx/dt = y
//	dy/dt = mu(1 - x^2)y - x
//
// Every trajectory except the origin settles on a limit cycle of amplitude
// close to 2.
type VanDerPol struct {
	mu float64
}

func NewVanDerPol() *VanDerPol {
	return &VanDerPol{mu: 0.2}
}

func (v *VanDerPol) Dim() int { return 2 }

func (v *VanDerPol) Derive(_ float64, state dynamo.State) dynamo.State {
	x, y := state[0], state[1]

	dx := y
	dy := v.mu*(1-x*x)*y - x

	return dynamo.State{dx, dy}
}

func (v *VanDerPol) DefaultState() dynamo.State {
	return dynamo.State{0.0, 0.1}
}

func (v *VanDerPol) Params() map[string]float64 {
	return map[string]float64{
		"mu": v.mu,
	}
}

func (v *VanDerPol) SetParam(name string, value float64) error {
	if name != "mu" {
		return fmt.Errorf("vanderpol: unknown param: %s", name)
	}
	v.mu = value
	return nil
}
