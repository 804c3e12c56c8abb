package analysis

import (
	"math"

	"github.com/san-kum/dynlab/internal/dynamo"
)

// LyapunovExponent estimates the largest Lyapunov exponent using the
// trajectory separation method. A positive value indicates chaos.
//
// Two trajectories start perturbation apart in the first component and are
// stepped together. After every step the log growth of the separation is
// accumulated and the perturbed trajectory is pulled back to distance
// perturbation along the current separation; λ ≈ mean(ln(|δx|/δx(0))) / h.
// Integration errors or non-finite states end the estimate early.
func LyapunovExponent(
	sys dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.Vector,
	t0, h float32,
	steps int,
	perturbation float64,
) float64 {
	if len(x0) == 0 || steps <= 0 || perturbation <= 0 {
		return 0
	}

	x := x0.Clone()
	xp := x0.Clone()
	xp[0] += float32(perturbation)
	d0 := perturbation

	sumLog := 0.0
	count := 0
	t := t0

	for i := 0; i < steps; i++ {
		next, err := integ.Step(sys, x, t, h)
		if err != nil {
			break
		}
		x = next
		nextp, err := integ.Step(sys, xp, t, h)
		if err != nil {
			break
		}
		xp = nextp
		t += h

		sep := 0.0
		for j := range x {
			diff := float64(xp[j] - x[j])
			sep += diff * diff
		}
		sep = math.Sqrt(sep)
		if math.IsNaN(sep) || math.IsInf(sep, 0) {
			break
		}

		if sep == 0 {
			continue
		}
		sumLog += math.Log(sep / d0)
		count++

		scale := float32(d0 / sep)
		for j := range xp {
			xp[j] = x[j] + (xp[j]-x[j])*scale
		}
	}

	if count == 0 {
		return 0
	}
	return sumLog / (float64(count) * float64(h))
}
