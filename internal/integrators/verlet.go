package integrators

import "github.com/san-kum/dynlab/internal/dynamo"

// Verlet is velocity Verlet over a state laid out as positions followed by
// velocities. For the reduced second-order system that is (u, v).
type Verlet struct {
	dx, dxNew dynamo.Vector
	scratch   dynamo.Vector
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) ensureScratch(x dynamo.Vector) {
	if len(v.scratch) != len(x) {
		v.scratch = x.Like()
		v.dx = x.Like()
		v.dxNew = x.Like()
	}
}

func (v *Verlet) Step(sys dynamo.System, x dynamo.Vector, t, dt float32) (dynamo.Vector, error) {
	n := len(x)
	half := n / 2
	v.ensureScratch(x)

	if err := sys.DeriveInto(v.dx, x, t); err != nil {
		return nil, err
	}

	result := make(dynamo.Vector, n)
	dt2 := dt * dt
	for i := 0; i < half; i++ {
		result[i] = x[i] + x[half+i]*dt + 0.5*v.dx[half+i]*dt2
	}

	for i := 0; i < half; i++ {
		v.scratch[i] = result[i]
		v.scratch[half+i] = x[half+i]
	}

	if err := sys.DeriveInto(v.dxNew, v.scratch, t+dt); err != nil {
		return nil, err
	}

	halfDt := 0.5 * dt
	for i := 0; i < half; i++ {
		result[half+i] = x[half+i] + (v.dx[half+i]+v.dxNew[half+i])*halfDt
	}

	return result, nil
}
