package integrators

import (
	"testing"

	"github.com/san-kum/dynlab/internal/dynamo"
)

func benchStep(b *testing.B, integ dynamo.Integrator) {
	dyn := oscillator()
	x := dynamo.Vector{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x, _ = integ.Step(dyn, x, 0, 0.01)
	}
}

func BenchmarkEuler(b *testing.B) {
	benchStep(b, NewEuler())
}

func BenchmarkRK4(b *testing.B) {
	benchStep(b, NewRK4())
}

func BenchmarkVerlet(b *testing.B) {
	benchStep(b, NewVerlet())
}
