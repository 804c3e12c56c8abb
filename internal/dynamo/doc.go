// Package dynamo provides the numeric primitives shared by the solver.
//
// The package defines the fundamental types for fixed-step integration of
// ordinary differential equations:
//
//   - [Vector]: fixed-dimension single-precision vector
//   - [Field]: vector of scalar functions, the right-hand side dX/dt = f(X, t)
//   - [System]: anything that can produce a derivative for a state
//   - [Integrator]: numerical stepper interface
//
// # Example
//
//	field := dynamo.Reduce(func(x dynamo.Vector, t float32) float32 {
//		return -x[0]
//	})
//	next, err := integrators.NewRK4().Step(field, dynamo.Vector{1, 0}, 0, 0.01)
//
// # Thread Safety
//
// Vectors and fields carry no locks. A populated Field may be shared by
// concurrent solves as long as its slot functions are themselves safe for
// concurrent use.
package dynamo
