package metrics

import "github.com/san-kum/dynlab/internal/dynamo"

// conserved lists presets whose undamped, unforced equation has a known
// energy.
var conserved = map[string]EnergyFunc{
	"harmonic": Oscillator(1),
	"free":     Oscillator(0),
	"pendulum": Pendulum(9.81),
}

// Defaults returns fresh metrics for one solve. Every run tracks stability
// and the first non-finite sample; presets with a conserved energy also
// track its drift.
func Defaults(preset string) []dynamo.Metric {
	ms := []dynamo.Metric{
		NewStability(1e6),
		NewNonFinite(),
	}
	if energy, ok := conserved[preset]; ok {
		ms = append(ms, NewEnergyDrift(energy))
	}
	return ms
}
