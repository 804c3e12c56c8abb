// Package export writes solved runs as JSON, CSV, PNG and SVG.
package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/dynlab/internal/ivp"
)

// Run is a solution together with how it was produced.
type Run struct {
	Name       string
	Equation   string
	Integrator string
	Solution   *ivp.Solution
}

type Data struct {
	Name       string             `json:"name"`
	Equation   string             `json:"equation"`
	Integrator string             `json:"integrator"`
	Symbols    ivp.Symbols        `json:"symbols"`
	Step       float32            `json:"step"`
	Samples    int                `json:"samples"`
	Times      []float32          `json:"times"`
	Positions  []float32          `json:"positions"`
	Velocities []float32          `json:"velocities"`
	Metrics    map[string]float64 `json:"metrics"`
}

// NewData flattens run into its JSON form.
func NewData(run Run) Data {
	sol := run.Solution
	return Data{
		Name:       run.Name,
		Equation:   run.Equation,
		Integrator: run.Integrator,
		Symbols: ivp.Symbols{
			Time:     sol.Time.Symbol(),
			Position: sol.Position.Symbol(),
			Velocity: sol.Velocity.Symbol(),
		},
		Step:       sol.Time.Slope(),
		Samples:    sol.Len(),
		Times:      sol.Time.Values(),
		Positions:  sol.Position.Values(),
		Velocities: sol.Velocity.Values(),
		Metrics:    sol.Metrics,
	}
}

// JSON writes run as indented JSON. Non-finite samples cannot be encoded
// and make it fail.
func JSON(w io.Writer, run Run) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewData(run))
}
