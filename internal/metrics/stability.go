package metrics

import (
	"math"

	"github.com/san-kum/dynode/internal/dynamo"
)

// Stability is the fraction of samples whose components all stay within
// threshold in absolute value.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(_ float64, x dynamo.State) {
	s.samples++
	for _, val := range x {
		if math.IsNaN(val) || math.Abs(val) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// ReferenceError is the largest Euclidean distance between the samples and
// a known solution.
type ReferenceError struct {
	ref    func(t float64) dynamo.State
	maxErr float64
	last   float64
}

func NewReferenceError(ref func(t float64) dynamo.State) *ReferenceError {
	return &ReferenceError{ref: ref}
}

func (r *ReferenceError) Name() string { return "reference_error" }

func (r *ReferenceError) Observe(t float64, x dynamo.State) {
	r.last = x.Sub(r.ref(t)).Norm()
	r.maxErr = math.Max(r.maxErr, r.last)
}

func (r *ReferenceError) Value() float64 { return r.maxErr }

// Final is the error at the latest sample.
func (r *ReferenceError) Final() float64 { return r.last }

func (r *ReferenceError) Reset() {
	r.maxErr = 0
	r.last = 0
}
