package ivp

import (
	"fmt"

	"github.com/san-kum/dynlab/internal/dynamo"
)

// Symbols are the display names of the three output series.
type Symbols struct {
	Time     string `json:"time" yaml:"time"`
	Position string `json:"position" yaml:"position"`
	Velocity string `json:"velocity" yaml:"velocity"`
}

func DefaultSymbols() Symbols {
	return Symbols{Time: "t", Position: "x", Velocity: "v"}
}

// Problem is x'' = F(x, x', t) on [T0, TN) with x(T0) = Alpha and
// x'(T0) = Beta, sampled at Samples grid points. Field is the reduced
// first-order system, normally built with dynamo.Reduce.
type Problem struct {
	T0, TN  float32
	Samples int
	Alpha   float32
	Beta    float32
	Field   *dynamo.Field
	Symbols Symbols
}

func (p Problem) Validate() error {
	if p.Samples < 2 {
		return fmt.Errorf("%w: need at least 2 samples, got %d", dynamo.ErrInvalidSampleCount, p.Samples)
	}
	if !(p.T0 < p.TN) {
		return fmt.Errorf("%w: t0=%g, tN=%g", dynamo.ErrInvalidInterval, p.T0, p.TN)
	}
	if p.Field == nil {
		return fmt.Errorf("%w: no field", dynamo.ErrDimensionMismatch)
	}
	if p.Field.Dim() != 2 {
		return fmt.Errorf("%w: reduced system has dimension 2, field has %d", dynamo.ErrDimensionMismatch, p.Field.Dim())
	}
	return p.Field.Bound()
}

// StepSize is the fixed grid spacing (TN-T0)/Samples.
func (p Problem) StepSize() float32 {
	return (p.TN - p.T0) / float32(p.Samples)
}
