package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/dynode/internal/dynamo"
)

// Earth constants in SI units.
const (
	EarthMu     = 3.986004418e14 // m^3/s^2
	EarthRadius = 6_378_137.0    // m
	ISSAltitude = 408_000.0      // m
)

// TwoBody is the Kepler problem in relative coordinates,
// state [x, y, z, vx, vy, vz] and r'' = -mu r / |r|^3.
type TwoBody struct {
	mu float64
}

func NewTwoBody(mu float64) *TwoBody { return &TwoBody{mu: mu} }

func (b *TwoBody) Dim() int { return 6 }

func (b *TwoBody) Mu() float64 { return b.mu }

func (b *TwoBody) Derive(_ float64, u dynamo.State) dynamo.State {
	x, y, z := u[0], u[1], u[2]
	r := math.Sqrt(x*x + y*y + z*z)
	k := -b.mu / (r * r * r)
	return dynamo.State{u[3], u[4], u[5], k * x, k * y, k * z}
}

// Energy is the specific orbital energy v^2/2 - mu/r.
func (b *TwoBody) Energy(u dynamo.State) float64 {
	r := math.Sqrt(u[0]*u[0] + u[1]*u[1] + u[2]*u[2])
	v2 := u[3]*u[3] + u[4]*u[4] + u[5]*u[5]
	return 0.5*v2 - b.mu/r
}

// AngularMomentum returns |r x v|.
func (b *TwoBody) AngularMomentum(u dynamo.State) float64 {
	hx := u[1]*u[5] - u[2]*u[4]
	hy := u[2]*u[3] - u[0]*u[5]
	hz := u[0]*u[4] - u[1]*u[3]
	return math.Sqrt(hx*hx + hy*hy + hz*hz)
}

func (b *TwoBody) Params() map[string]float64 {
	return map[string]float64{"mu": b.mu}
}

func (b *TwoBody) SetParam(name string, value float64) error {
	if name != "mu" {
		return fmt.Errorf("twobody: unknown param: %s", name)
	}
	if value <= 0 {
		return fmt.Errorf("twobody: mu must be positive, got %g", value)
	}
	b.mu = value
	return nil
}

// CircularOrbit is the closed-form circular solution of radius R in the
// xy-plane, starting at (R, 0, 0) and moving counter-clockwise.
type CircularOrbit struct {
	Mu float64
	R  float64
}

// Omega is the angular rate sqrt(mu/R^3).
func (c CircularOrbit) Omega() float64 {
	return math.Sqrt(c.Mu / (c.R * c.R * c.R))
}

func (c CircularOrbit) Period() float64 {
	return 2 * math.Pi / c.Omega()
}

func (c CircularOrbit) Speed() float64 {
	return math.Sqrt(c.Mu / c.R)
}

// State returns the exact state at time t.
func (c CircularOrbit) State(t float64) dynamo.State {
	w := c.Omega()
	s, co := math.Sincos(w * t)
	return dynamo.State{
		c.R * co, c.R * s, 0,
		-w * c.R * s, w * c.R * co, 0,
	}
}

// Initial is State(0).
func (c CircularOrbit) Initial() dynamo.State {
	return dynamo.State{c.R, 0, 0, 0, c.Speed(), 0}
}

// LowEarthOrbit is a circular orbit at ISS altitude.
func LowEarthOrbit() CircularOrbit {
	return CircularOrbit{Mu: EarthMu, R: EarthRadius + ISSAltitude}
}
