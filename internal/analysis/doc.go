// Package analysis characterizes solved trajectories.
//
//   - [NewPhasePortrait]: (x, v) points of a solution, rendered by [PhasePortraitToASCII]
//   - [StroboscopicSection]: phase points sampled once per forcing period
//   - [PowerSpectrum], [DominantFrequency]: spectrum of a sampled series
//   - [LyapunovExponent]: largest exponent via trajectory separation
//   - [Sweep]: parameter sweep recording distinct late-time positions
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda := analysis.LyapunovExponent(field, integ, x0, t0, h, steps, 1e-6)
//	if lambda > 0 {
//	    // System is chaotic
//	}
package analysis
