package dynamo

import (
	"fmt"
	"math"
)

// Vector is a fixed-dimension state vector. The dimension is the slice
// length and never changes after construction.
type Vector []float32

// New allocates a zeroed vector of dimension d. New(0) is a placeholder.
func New(d int) Vector {
	if d <= 0 {
		return Vector{}
	}
	return make(Vector, d)
}

func (v Vector) Dim() int { return len(v) }

func (v Vector) Clone() Vector {
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

// Like returns a zeroed vector with the same dimension as v.
func (v Vector) Like() Vector {
	return New(len(v))
}

func (v Vector) At(i int) (float32, error) {
	if i < 0 || i >= len(v) {
		return 0, fmt.Errorf("%w: index %d, dimension %d", ErrIndexOutOfBounds, i, len(v))
	}
	return v[i], nil
}

func (v Vector) Set(i int, x float32) error {
	if i < 0 || i >= len(v) {
		return fmt.Errorf("%w: index %d, dimension %d", ErrIndexOutOfBounds, i, len(v))
	}
	v[i] = x
	return nil
}

func (v Vector) IsValid() bool {
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func (v Vector) Norm() float32 {
	sum := 0.0
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return float32(math.Sqrt(sum))
}

func (v Vector) Add(other Vector) (Vector, error) {
	if err := sameDim(v, other); err != nil {
		return nil, err
	}
	result := make(Vector, len(v))
	for i := range v {
		result[i] = v[i] + other[i]
	}
	return result, nil
}

func (v Vector) Sub(other Vector) (Vector, error) {
	if err := sameDim(v, other); err != nil {
		return nil, err
	}
	result := make(Vector, len(v))
	for i := range v {
		result[i] = v[i] - other[i]
	}
	return result, nil
}

// Mul multiplies element-wise.
func (v Vector) Mul(other Vector) (Vector, error) {
	if err := sameDim(v, other); err != nil {
		return nil, err
	}
	result := make(Vector, len(v))
	for i := range v {
		result[i] = v[i] * other[i]
	}
	return result, nil
}

func (v Vector) Scale(k float32) Vector {
	result := make(Vector, len(v))
	for i := range v {
		result[i] = k * v[i]
	}
	return result
}

// Scale is the scalar-first form of v.Scale(k).
func Scale(k float32, v Vector) Vector {
	return v.Scale(k)
}

func sameDim(a, b Vector) error {
	if len(a) != len(b) {
		return fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	return nil
}
