// Package analysis provides chaos and dynamics analysis tools built on
// solved trajectories.
//
//   - [LyapunovExponent]: largest Lyapunov exponent via renormalised separation
//   - [BifurcationDiagram]: parameter sweep recording peaks of one component
//   - [Spectrum], [DominantPeriod]: power spectrum of a dense trajectory
//   - [Portrait], [PhasePortraitToASCII]: 2D phase space plots
//   - [Section]: Poincaré section from upward crossings
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda, err := analysis.LyapunovExponent(ctx, sys, x0, cfg, analysis.LyapunovOptions{})
//	if lambda > 0 {
//	    // System is chaotic
//	}
package analysis
