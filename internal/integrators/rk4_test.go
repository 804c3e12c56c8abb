package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/dynlab/internal/dynamo"
)

func oscillator() *dynamo.Field {
	return dynamo.Reduce(func(x dynamo.Vector, t float32) float32 { return -x[0] })
}

func TestRK4Accuracy(t *testing.T) {
	dyn := oscillator()
	integ := NewRK4()

	x := dynamo.Vector{1.0, 0.0}
	dt := float32(0.01)
	steps := 100

	for i := 0; i < steps; i++ {
		var err error
		x, err = integ.Step(dyn, x, float32(i)*dt, dt)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	expectedX := math.Cos(float64(steps) * float64(dt))
	expectedV := -math.Sin(float64(steps) * float64(dt))

	if math.Abs(float64(x[0])-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}

	if math.Abs(float64(x[1])-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestRK4_ExactForLinearMotion(t *testing.T) {
	dyn := dynamo.Reduce(func(x dynamo.Vector, t float32) float32 { return 0 })
	integ := NewRK4()

	x, err := integ.Step(dyn, dynamo.Vector{0, 1}, 0, 0.25)
	if err != nil {
		t.Fatal(err)
	}
	if x[0] != 0.25 || x[1] != 1 {
		t.Errorf("free particle step = %v, want [0.25 1]", x)
	}
}

func TestRK4_TimeDependentField(t *testing.T) {
	// x'' = 6t has x = t^3 for x(0) = x'(0) = 0; RK4 integrates cubics exactly in u.
	dyn := dynamo.Reduce(func(x dynamo.Vector, t float32) float32 { return 6 * t })
	integ := NewRK4()

	x := dynamo.Vector{0, 0}
	dt := float32(0.1)
	for i := 0; i < 10; i++ {
		var err error
		x, err = integ.Step(dyn, x, float32(i)*dt, dt)
		if err != nil {
			t.Fatal(err)
		}
	}
	if math.Abs(float64(x[0])-1) > 1e-4 {
		t.Errorf("x(1) = %v, want 1", x[0])
	}
	if math.Abs(float64(x[1])-3) > 1e-4 {
		t.Errorf("x'(1) = %v, want 3", x[1])
	}
}

func TestIntegrators_PropagateFieldErrors(t *testing.T) {
	unbound := dynamo.Reduce(nil)
	for _, name := range Names() {
		integ, err := Get(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := integ.Step(unbound, dynamo.Vector{0, 0}, 0, 0.1); !errors.Is(err, dynamo.ErrUnboundSlot) {
			t.Errorf("%s: expected ErrUnboundSlot, got %v", name, err)
		}
		if _, err := integ.Step(oscillator(), dynamo.Vector{0, 0, 0}, 0, 0.1); !errors.Is(err, dynamo.ErrDimensionMismatch) {
			t.Errorf("%s: expected ErrDimensionMismatch, got %v", name, err)
		}
	}
}

func TestIntegrators_NonFinitePropagates(t *testing.T) {
	nan := float32(math.NaN())
	dyn := dynamo.Reduce(func(x dynamo.Vector, t float32) float32 { return nan })
	for _, name := range Names() {
		integ, _ := Get(name)
		x, err := integ.Step(dyn, dynamo.Vector{1, 0}, 0, 0.1)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if x.IsValid() {
			t.Errorf("%s: expected non-finite state, got %v", name, x)
		}
	}
}

func TestIntegrators_Order(t *testing.T) {
	dyn := oscillator()
	errAt := func(name string) float64 {
		integ, _ := Get(name)
		x := dynamo.Vector{1, 0}
		dt := float32(0.1)
		for i := 0; i < 10; i++ {
			x, _ = integ.Step(dyn, x, float32(i)*dt, dt)
		}
		return math.Abs(float64(x[0]) - math.Cos(1))
	}

	eEuler := errAt("euler")
	eVerlet := errAt("verlet")
	eRK4 := errAt("rk4")

	if !(eRK4 < eVerlet && eVerlet < eEuler) {
		t.Errorf("unexpected error ordering: euler=%e verlet=%e rk4=%e", eEuler, eVerlet, eRK4)
	}
}

func TestRegistry(t *testing.T) {
	names := Names()
	if len(names) != 3 || names[0] != "euler" || names[1] != "rk4" || names[2] != "verlet" {
		t.Errorf("Names() = %v", names)
	}

	if integ, err := Get(""); err != nil {
		t.Errorf("Get(\"\"): %v", err)
	} else if _, ok := integ.(*RK4); !ok {
		t.Errorf("default integrator is %T, want *RK4", integ)
	}

	if _, err := Get("rk45"); !errors.Is(err, dynamo.ErrUnknownIntegrator) {
		t.Errorf("expected ErrUnknownIntegrator, got %v", err)
	}
	if _, err := Factory("nope"); !errors.Is(err, dynamo.ErrUnknownIntegrator) {
		t.Errorf("expected ErrUnknownIntegrator, got %v", err)
	}

	mk, err := Factory("rk4")
	if err != nil {
		t.Fatal(err)
	}
	if mk() == mk() {
		t.Error("Factory should return distinct instances")
	}
}
