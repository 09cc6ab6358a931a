package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/san-kum/dynode/internal/solver"
)

// PowerSpectrum returns |X_k| for the non-negative frequency bins of a
// real signal. The mean is removed and a Hann window applied first.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n == 0 {
		return nil
	}
	x := make([]float64, n)
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)
	for i, v := range data {
		x[i] = v - mean
	}
	window.Apply(x, window.Hann)

	out := fft.FFTReal(x)
	ps := make([]float64, n/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(out[i])
	}
	return ps
}

// Spectrum samples component comp of a dense trajectory at n evenly spaced
// times, excluding the final time, and returns bin frequencies with their
// power.
func Spectrum(tr *solver.Trajectory, comp, n int) (freqs, power []float64, err error) {
	samples, dt, err := sampleUniform(tr, comp, n)
	if err != nil {
		return nil, nil, err
	}
	power = PowerSpectrum(samples)
	freqs = make([]float64, len(power))
	for k := range freqs {
		freqs[k] = float64(k) / (float64(n) * dt)
	}
	return freqs, power, nil
}

// DominantPeriod returns the period of the strongest non-zero frequency in
// component comp, refined by parabolic interpolation around the peak bin.
func DominantPeriod(tr *solver.Trajectory, comp, n int) (float64, error) {
	freqs, power, err := Spectrum(tr, comp, n)
	if err != nil {
		return 0, err
	}
	if len(power) < 3 {
		return 0, fmt.Errorf("too few samples for a spectrum: %d", n)
	}

	peak := 1
	for k := 2; k < len(power); k++ {
		if power[k] > power[peak] {
			peak = k
		}
	}
	if power[peak] == 0 {
		return 0, fmt.Errorf("component %d has no oscillation", comp)
	}

	delta := 0.0
	if peak+1 < len(power) {
		a, b, c := power[peak-1], power[peak], power[peak+1]
		if den := a - 2*b + c; den != 0 {
			delta = 0.5 * (a - c) / den
		}
	}
	df := freqs[1] - freqs[0]
	return 1 / (freqs[peak] + delta*df), nil
}

func sampleUniform(tr *solver.Trajectory, comp, n int) ([]float64, float64, error) {
	if n < 2 {
		return nil, 0, fmt.Errorf("need at least 2 samples, got %d", n)
	}
	if comp < 0 || comp >= len(tr.First().Y) {
		return nil, 0, fmt.Errorf("component %d out of range", comp)
	}
	t0, t1 := tr.First().T, tr.Last().T
	dt := (t1 - t0) / float64(n)
	samples := make([]float64, n)
	for i := range samples {
		y, err := tr.Eval(t0 + float64(i)*dt)
		if err != nil {
			return nil, 0, err
		}
		samples[i] = y[comp]
	}
	return samples, math.Abs(dt), nil
}
