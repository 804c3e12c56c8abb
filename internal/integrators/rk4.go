package integrators

import "github.com/san-kum/dynlab/internal/dynamo"

// RK4 is the classical four-stage Runge-Kutta method. Scratch buffers are
// reused between steps, so an RK4 value must not be shared by concurrent
// solves.
type RK4 struct {
	k1, k2, k3, k4 dynamo.Vector
	scratch        dynamo.Vector
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(x dynamo.Vector) {
	if len(r.k1) != len(x) {
		r.k1 = x.Like()
		r.k2 = x.Like()
		r.k3 = x.Like()
		r.k4 = x.Like()
		r.scratch = x.Like()
	}
}

func (r *RK4) Step(sys dynamo.System, x dynamo.Vector, t, dt float32) (dynamo.Vector, error) {
	n := len(x)
	r.ensureScratch(x)
	half := dt * 0.5

	if err := sys.DeriveInto(r.k1, x, t); err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + half*r.k1[i]
	}
	if err := sys.DeriveInto(r.k2, r.scratch, t+half); err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + half*r.k2[i]
	}
	if err := sys.DeriveInto(r.k3, r.scratch, t+half); err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	if err := sys.DeriveInto(r.k4, r.scratch, t+dt); err != nil {
		return nil, err
	}

	result := make(dynamo.Vector, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}

	return result, nil
}
