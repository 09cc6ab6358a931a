package solver

import (
	"math"
	"time"
)

// Stats counts the work done by one solve. Step sizes are magnitudes of
// accepted steps.
type Stats struct {
	Accepted int           `json:"accepted" yaml:"accepted"`
	Rejected int           `json:"rejected" yaml:"rejected"`
	Evals    int           `json:"evals" yaml:"evals"`
	HLast    float64       `json:"h_last" yaml:"h_last"`
	HSmall   float64       `json:"h_small" yaml:"h_small"`
	HLarge   float64       `json:"h_large" yaml:"h_large"`
	Elapsed  time.Duration `json:"elapsed" yaml:"elapsed"`
}

func (s Stats) Attempts() int { return s.Accepted + s.Rejected }

func (s *Stats) accept(h float64) {
	h = math.Abs(h)
	if s.Accepted == 0 || h < s.HSmall {
		s.HSmall = h
	}
	if h > s.HLarge {
		s.HLarge = h
	}
	s.HLast = h
	s.Accepted++
}
