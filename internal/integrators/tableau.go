package integrators

import (
	"fmt"
	"math"
)

// Tableau holds the coefficients of an explicit embedded Runge-Kutta pair.
//
// Stages counts the evaluations that build the solution. After the solution
// is formed the stepper evaluates one more derivative at (t+h, y_new); that
// FSAL stage seeds the next step and takes part in the error estimate, so E
// and E3 have Stages+1 entries.
type Tableau struct {
	Name           string
	Order          int
	EstimatorOrder int
	Stages         int

	C []float64   // stage time fractions, len Stages
	A [][]float64 // row i holds A[i][0..i-1]
	B []float64   // solution weights, len Stages

	E  []float64 // primary error weights (b - bhat), len Stages+1
	E3 []float64 // optional secondary estimator, len Stages+1

	Dense *DenseExtension
}

// DenseExtension describes extra stages and interpolation rows for a
// high-order continuous output. Extra stage i combines all earlier stages,
// including the FSAL stage.
type DenseExtension struct {
	C []float64
	A [][]float64
	D [][]float64
}

func (tb *Tableau) String() string {
	return fmt.Sprintf("%s (order %d, %d stages)", tb.Name, tb.Order, tb.Stages)
}

// Validate checks shapes and the row-sum condition sum_j A[i][j] == C[i].
func (tb *Tableau) Validate() error {
	s := tb.Stages
	if s < 1 {
		return fmt.Errorf("tableau %s: no stages", tb.Name)
	}
	if len(tb.C) != s || len(tb.A) != s || len(tb.B) != s {
		return fmt.Errorf("tableau %s: C/A/B must have %d entries", tb.Name, s)
	}
	if len(tb.E) != s+1 {
		return fmt.Errorf("tableau %s: E must have %d entries, got %d", tb.Name, s+1, len(tb.E))
	}
	if tb.E3 != nil && len(tb.E3) != s+1 {
		return fmt.Errorf("tableau %s: E3 must have %d entries, got %d", tb.Name, s+1, len(tb.E3))
	}
	for i, row := range tb.A {
		if len(row) != i {
			return fmt.Errorf("tableau %s: row %d has %d entries, want %d", tb.Name, i, len(row), i)
		}
		if err := checkRowSum(tb.Name, i, row, tb.C[i]); err != nil {
			return err
		}
	}
	sum := 0.0
	for _, b := range tb.B {
		sum += b
	}
	if math.Abs(sum-1) > 1e-12 {
		return fmt.Errorf("tableau %s: weights sum to %g", tb.Name, sum)
	}

	if d := tb.Dense; d != nil {
		if len(d.A) != len(d.C) {
			return fmt.Errorf("tableau %s: dense extension has %d rows for %d stages", tb.Name, len(d.A), len(d.C))
		}
		for k, row := range d.A {
			if len(row) != s+1+k {
				return fmt.Errorf("tableau %s: dense row %d has %d entries, want %d", tb.Name, k, len(row), s+1+k)
			}
			if err := checkRowSum(tb.Name, s+1+k, row, d.C[k]); err != nil {
				return err
			}
		}
		for k, row := range d.D {
			if len(row) != s+1+len(d.C) {
				return fmt.Errorf("tableau %s: interpolation row %d has %d entries", tb.Name, k, len(row))
			}
		}
	}
	return nil
}

func checkRowSum(name string, i int, row []float64, c float64) error {
	sum := 0.0
	for _, a := range row {
		sum += a
	}
	if math.Abs(sum-c) > 1e-12 {
		return fmt.Errorf("tableau %s: row %d sums to %.17g, c = %.17g", name, i, sum, c)
	}
	return nil
}

// TotalStages is the number of stage derivatives a step can hold, counting
// the FSAL stage and any dense extension.
func (tb *Tableau) TotalStages() int {
	n := tb.Stages + 1
	if tb.Dense != nil {
		n += len(tb.Dense.C)
	}
	return n
}

var dop853 = newDOP853()

// DOP853 returns the shared Dormand-Prince 8(5,3) tableau. The value is
// read-only and safe to share between concurrent solves.
func DOP853() *Tableau { return dop853 }

func newDOP853() *Tableau {
	b := dop853B
	e3 := make([]float64, len(b)+1)
	for i := range b {
		e3[i] = b[i] - dop853Bhat3[i]
	}
	return &Tableau{
		Name:           "dop853",
		Order:          8,
		EstimatorOrder: 7,
		Stages:         12,
		C:              dop853C,
		A:              dop853A,
		B:              b,
		E:              dop853E5,
		E3:             e3,
		Dense: &DenseExtension{
			C: dop853DenseC,
			A: dop853DenseA,
			D: dop853D,
		},
	}
}

// Lookup returns a built-in tableau by name.
func Lookup(name string) (*Tableau, error) {
	switch name {
	case "", "dop853":
		return DOP853(), nil
	case "dopri5", "rk45":
		return DormandPrince54(), nil
	}
	return nil, fmt.Errorf("unknown method: %s", name)
}

// Methods lists the names accepted by Lookup.
func Methods() []string {
	return []string{"dop853", "dopri5"}
}
