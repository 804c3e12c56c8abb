package dynamo

import "fmt"

// Func is one component of a vector field: (state, time) -> derivative.
type Func func(x Vector, t float32) float32

// System produces the derivative of a state at a given time.
type System interface {
	Derive(x Vector, t float32) (Vector, error)
	DeriveInto(dst, x Vector, t float32) error
	Dim() int
}

// Integrator advances a state by one fixed step of size h.
type Integrator interface {
	Step(sys System, x Vector, t, h float32) (Vector, error)
}

// Field is an ordered set of scalar functions, one per dimension.
// Every slot must be bound before the field is evaluated.
type Field struct {
	funcs []Func
}

var _ System = (*Field)(nil)

// NewField allocates a field with d empty slots.
func NewField(d int) *Field {
	if d < 0 {
		d = 0
	}
	return &Field{funcs: make([]Func, d)}
}

func (f *Field) Dim() int { return len(f.funcs) }

// Set binds fn to slot i.
func (f *Field) Set(i int, fn Func) error {
	if i < 0 || i >= len(f.funcs) {
		return fmt.Errorf("%w: slot %d, dimension %d", ErrIndexOutOfBounds, i, len(f.funcs))
	}
	if fn == nil {
		return fmt.Errorf("%w: slot %d bound to nil", ErrUnboundSlot, i)
	}
	f.funcs[i] = fn
	return nil
}

// Bound reports whether every slot has a function.
func (f *Field) Bound() error {
	for i, fn := range f.funcs {
		if fn == nil {
			return fmt.Errorf("%w: slot %d", ErrUnboundSlot, i)
		}
	}
	return nil
}

// Derive evaluates every slot at (x, t) into a new vector.
func (f *Field) Derive(x Vector, t float32) (Vector, error) {
	dst := make(Vector, len(f.funcs))
	if err := f.DeriveInto(dst, x, t); err != nil {
		return nil, err
	}
	return dst, nil
}

// DeriveInto evaluates every slot at (x, t) into dst without allocating.
func (f *Field) DeriveInto(dst, x Vector, t float32) error {
	if len(x) != len(f.funcs) || len(dst) != len(f.funcs) {
		return fmt.Errorf("%w: field %d, state %d, output %d", ErrDimensionMismatch, len(f.funcs), len(x), len(dst))
	}
	if err := f.Bound(); err != nil {
		return err
	}
	for i, fn := range f.funcs {
		dst[i] = fn(x, t)
	}
	return nil
}

// Velocity is the reduction's first slot: u' = v.
func Velocity(x Vector, _ float32) float32 {
	return x[1]
}

// Reduce rewrites x'' = F(x, x', t) as the planar system
//
//	u' = v
//	v' = F(u, v, t)
//
// over the state (u, v). A nil F leaves slot 1 unbound.
func Reduce(accel Func) *Field {
	f := NewField(2)
	f.funcs[0] = Velocity
	f.funcs[1] = accel
	return f
}
