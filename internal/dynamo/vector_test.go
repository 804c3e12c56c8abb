package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestVector_IsValid(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	tests := []struct {
		name  string
		v     Vector
		valid bool
	}{
		{"empty", Vector{}, true},
		{"normal", Vector{1.0, 2.0, 3.0}, true},
		{"zeros", Vector{0.0, 0.0}, true},
		{"with NaN", Vector{1.0, nan}, false},
		{"with +Inf", Vector{1.0, inf}, false},
		{"with -Inf", Vector{1.0, -inf}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestVector_Norm(t *testing.T) {
	tests := []struct {
		v        Vector
		expected float32
	}{
		{Vector{3, 4}, 5.0},
		{Vector{1, 0}, 1.0},
		{Vector{0, 0}, 0.0},
		{Vector{1, 1, 1, 1}, 2.0},
	}

	for _, tt := range tests {
		if got := tt.v.Norm(); math.Abs(float64(got-tt.expected)) > 1e-6 {
			t.Errorf("Norm(%v) = %v, want %v", tt.v, got, tt.expected)
		}
	}
}

func TestVector_Arithmetic(t *testing.T) {
	a := Vector{1, 2, 3}
	b := Vector{4, 5, 6}

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if sum[0] != 5 || sum[1] != 7 || sum[2] != 9 {
		t.Errorf("Add failed: got %v", sum)
	}

	diff, err := b.Sub(a)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	if diff[0] != 3 || diff[1] != 3 || diff[2] != 3 {
		t.Errorf("Sub failed: got %v", diff)
	}

	prod, err := a.Mul(b)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}
	if prod[0] != 4 || prod[1] != 10 || prod[2] != 18 {
		t.Errorf("Mul failed: got %v", prod)
	}

	left := Scale(2, a)
	right := a.Scale(2)
	for i := range a {
		if left[i] != right[i] || right[i] != 2*a[i] {
			t.Errorf("Scale mismatch at %d: %v vs %v", i, left, right)
		}
	}

	if a[0] != 1 || b[0] != 4 {
		t.Error("operands were modified")
	}
}

func TestVector_AddSubRoundTrip(t *testing.T) {
	for d := 1; d <= 8; d++ {
		a := New(d)
		b := New(d)
		for i := 0; i < d; i++ {
			a[i] = float32(i)*0.37 - 1.1
			b[i] = float32(d-i) * 2.9
		}

		sum, err := a.Add(b)
		if err != nil {
			t.Fatal(err)
		}
		back, err := sum.Sub(b)
		if err != nil {
			t.Fatal(err)
		}
		one := a.Scale(1.0)
		for i := 0; i < d; i++ {
			if math.Abs(float64(back[i]-a[i])) > 1e-5 {
				t.Errorf("d=%d: (a+b)-b = %v, want %v", d, back, a)
			}
			if one[i] != a[i] {
				t.Errorf("d=%d: a*1 = %v, want %v", d, one, a)
			}
		}
	}
}

func TestVector_DimensionMismatch(t *testing.T) {
	a := Vector{1, 2}
	b := Vector{1, 2, 3}

	ops := map[string]func(Vector, Vector) (Vector, error){
		"add": Vector.Add,
		"sub": Vector.Sub,
		"mul": Vector.Mul,
	}
	for name, op := range ops {
		if _, err := op(a, b); !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("%s: expected ErrDimensionMismatch, got %v", name, err)
		}
		if _, err := op(b, a); !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("%s reversed: expected ErrDimensionMismatch, got %v", name, err)
		}
	}
}

func TestVector_Bounds(t *testing.T) {
	v := New(2)
	if v.Dim() != 2 {
		t.Fatalf("Dim() = %d, want 2", v.Dim())
	}
	if err := v.Set(1, 3.5); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if x, err := v.At(1); err != nil || x != 3.5 {
		t.Errorf("At(1) = %v, %v", x, err)
	}

	for _, i := range []int{-1, 2, 100} {
		if _, err := v.At(i); !errors.Is(err, ErrIndexOutOfBounds) {
			t.Errorf("At(%d): expected ErrIndexOutOfBounds, got %v", i, err)
		}
		if err := v.Set(i, 1); !errors.Is(err, ErrIndexOutOfBounds) {
			t.Errorf("Set(%d): expected ErrIndexOutOfBounds, got %v", i, err)
		}
	}

	if New(0).Dim() != 0 || New(-3).Dim() != 0 {
		t.Error("placeholder vector should have dimension 0")
	}
}

func TestVector_CloneLike(t *testing.T) {
	v := Vector{1, 2, 3}
	c := v.Clone()
	c[0] = 99
	if v[0] == 99 {
		t.Error("Clone did not create independent copy")
	}

	l := v.Like()
	if l.Dim() != 3 || l[0] != 0 || l[2] != 0 {
		t.Errorf("Like() = %v, want zeroed dimension 3", l)
	}
}

func TestStepError(t *testing.T) {
	err := &StepError{Step: 150, Time: 1.5, Wrapped: ErrUnboundSlot}
	expected := "step 150 (t=1.5000): dynamo: unbound field slot"
	if err.Error() != expected {
		t.Errorf("StepError.Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, ErrUnboundSlot) {
		t.Error("StepError does not unwrap to its cause")
	}
}
