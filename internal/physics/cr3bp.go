package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/dynode/internal/dynamo"
)

// EarthMoonMu is the Earth-Moon mass ratio m2/(m1+m2).
const EarthMoonMu = 0.012150585609624

// StateVector is a position and velocity in the rotating frame of the
// circular restricted three-body problem, in normalized units.
type StateVector struct {
	X, Y, Z    float64
	VX, VY, VZ float64
}

// StateCodec maps StateVector onto a six-component dynamo.State.
type StateCodec struct{}

func (StateCodec) Dim() int { return 6 }

func (StateCodec) Encode(v StateVector, dst dynamo.State) {
	dst[0], dst[1], dst[2] = v.X, v.Y, v.Z
	dst[3], dst[4], dst[5] = v.VX, v.VY, v.VZ
}

func (StateCodec) Decode(src dynamo.State) StateVector {
	return StateVector{X: src[0], Y: src[1], Z: src[2], VX: src[3], VY: src[4], VZ: src[5]}
}

// CR3BP is the circular restricted three-body problem: a massless body
// moving under two primaries on circular orbits, primary at (-mu, 0, 0) and
// secondary at (1-mu, 0, 0) in the rotating frame.
type CR3BP struct {
	mu  float64
	sys dynamo.System
}

func NewCR3BP(mu float64) *CR3BP {
	c := &CR3BP{mu: mu}
	c.sys = dynamo.Typed[StateVector](StateCodec{}, c.Accel)
	return c
}

func (c *CR3BP) Dim() int { return 6 }

func (c *CR3BP) Derive(t float64, x dynamo.State) dynamo.State {
	return c.sys.Derive(t, x)
}

func (c *CR3BP) distances(sv StateVector) (r13, r23 float64) {
	r13 = math.Sqrt((sv.X+c.mu)*(sv.X+c.mu) + sv.Y*sv.Y + sv.Z*sv.Z)
	r23 = math.Sqrt((sv.X-1+c.mu)*(sv.X-1+c.mu) + sv.Y*sv.Y + sv.Z*sv.Z)
	return r13, r23
}

// Accel is the right-hand side on the named-field state.
func (c *CR3BP) Accel(_ float64, sv StateVector) StateVector {
	mu := c.mu
	r13, r23 := c.distances(sv)
	p13 := (1 - mu) / (r13 * r13 * r13)
	p23 := mu / (r23 * r23 * r23)

	return StateVector{
		X:  sv.VX,
		Y:  sv.VY,
		Z:  sv.VZ,
		VX: sv.X + 2*sv.VY - p13*(sv.X+mu) - p23*(sv.X-1+mu),
		VY: sv.Y - 2*sv.VX - p13*sv.Y - p23*sv.Y,
		VZ: -p13*sv.Z - p23*sv.Z,
	}
}

// Jacobi returns the Jacobi constant
// C = x^2 + y^2 + 2(1-mu)/r13 + 2mu/r23 - v^2, conserved along solutions.
func (c *CR3BP) Jacobi(x dynamo.State) float64 {
	sv := StateCodec{}.Decode(x)
	r13, r23 := c.distances(sv)
	v2 := sv.VX*sv.VX + sv.VY*sv.VY + sv.VZ*sv.VZ
	return sv.X*sv.X + sv.Y*sv.Y + 2*(1-c.mu)/r13 + 2*c.mu/r23 - v2
}

// Energy is the Jacobi energy -C/2.
func (c *CR3BP) Energy(x dynamo.State) float64 {
	return -0.5 * c.Jacobi(x)
}

func (c *CR3BP) DefaultState() dynamo.State {
	return dynamo.Encode[StateVector](StateCodec{}, HaloOrbit())
}

func (c *CR3BP) Params() map[string]float64 {
	return map[string]float64{"mu": c.mu}
}

func (c *CR3BP) SetParam(name string, value float64) error {
	if name != "mu" {
		return fmt.Errorf("cr3bp: unknown param: %s", name)
	}
	if value <= 0 || value >= 0.5 {
		return fmt.Errorf("cr3bp: mu must lie in (0, 0.5), got %g", value)
	}
	c.mu = value
	return nil
}

// HaloPeriod is the period of the Earth-Moon halo orbit returned by
// HaloOrbit, in normalized time units.
const HaloPeriod = 1.509263667286943

// HaloOrbit is a periodic Earth-Moon halo orbit initial condition.
func HaloOrbit() StateVector {
	return StateVector{
		X:  1.021881345465263,
		Z:  -0.182,
		VY: -0.102950816739606,
	}
}
