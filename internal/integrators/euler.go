package integrators

import "github.com/san-kum/dynlab/internal/dynamo"

// Euler is the explicit first-order method.
type Euler struct {
	dx dynamo.Vector
}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.Vector, t, dt float32) (dynamo.Vector, error) {
	if len(e.dx) != len(x) {
		e.dx = make(dynamo.Vector, len(x))
	}
	if err := sys.DeriveInto(e.dx, x, t); err != nil {
		return nil, err
	}
	result := make(dynamo.Vector, len(x))
	for i := range x {
		result[i] = x[i] + dt*e.dx[i]
	}
	return result, nil
}
