// Package series stores sampled trajectories.
//
// A linear series is an evenly spaced grid built in one piece by
// [NewLinear]. A dependent series is created by [NewDependent] together with
// a [Writer]; only the holder of the writer can fill it, and once the writer
// is sealed the series is read-only. A dependent series may borrow a linear
// grid as its independent variable so samples can be looked up by time.
package series

import (
	"fmt"
	"math"

	"github.com/san-kum/dynlab/internal/dynamo"
)

type Series struct {
	values []float32
	indep  *Series
	linear bool
	slope  float32
	symbol string
}

// NewLinear builds count samples spanning the half-open interval
// [start, end): values[i] = start + i*(end-start)/count. The last sample is
// start + (count-1)*slope, not end. The interval must be non-empty so the
// slope is positive.
func NewLinear(start, end float32, count int) (*Series, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: linear series needs count > 0, got %d", dynamo.ErrInvalidSampleCount, count)
	}
	if !(start < end) {
		return nil, fmt.Errorf("%w: linear series needs start < end, got [%g, %g)", dynamo.ErrInvalidInterval, start, end)
	}

	s := &Series{
		values: make([]float32, count),
		linear: true,
		slope:  (end - start) / float32(count),
	}
	n := float32(count)
	for i := range s.values {
		fi := float32(i)
		s.values[i] = (end*fi-start*fi)/n + start
	}
	return s, nil
}

// NewDependent builds a zeroed series of the given size and the writer that
// fills it. The writer should be kept by the algorithm producing samples and
// sealed when done.
func NewDependent(size int) (*Series, *Writer, error) {
	if size < 0 {
		return nil, nil, fmt.Errorf("%w: size %d", dynamo.ErrInvalidSampleCount, size)
	}
	s := &Series{values: make([]float32, size)}
	return s, &Writer{s: s}, nil
}

func (s *Series) Len() int { return len(s.values) }

func (s *Series) IsLinear() bool { return s.linear }

// Slope is the grid spacing of a linear series and 0 otherwise.
func (s *Series) Slope() float32 { return s.slope }

// Symbol is the name used for this series in the originating expression.
func (s *Series) Symbol() string { return s.symbol }

func (s *Series) SetSymbol(sym string) { s.symbol = sym }

// IndependentVariable returns the borrowed grid, or nil.
func (s *Series) IndependentVariable() *Series { return s.indep }

// SetIndependentVariable attaches a grid used by Lookup. The grid must
// outlive s.
func (s *Series) SetIndependentVariable(grid *Series) { s.indep = grid }

// At returns the sample at position i.
func (s *Series) At(i int) (float32, error) {
	if i < 0 || i >= len(s.values) {
		return 0, fmt.Errorf("%w: index %d, size %d", dynamo.ErrIndexOutOfBounds, i, len(s.values))
	}
	return s.values[i], nil
}

// Index maps a value of the independent variable to the nearest sample
// position. A linear series is its own grid.
func (s *Series) Index(t float32) (int, error) {
	grid := s.indep
	if s.linear {
		grid = s
	}
	if grid == nil || !grid.linear {
		return 0, dynamo.ErrNoIndependentVariable
	}
	if len(grid.values) == 0 {
		return 0, dynamo.ErrEmptySeries
	}

	pos := math.Round(float64(t-grid.values[0]) / float64(grid.slope))
	if math.IsNaN(pos) || pos < 0 || pos >= float64(len(s.values)) || pos >= float64(len(grid.values)) {
		return 0, fmt.Errorf("%w: t=%g maps outside [0, %d)", dynamo.ErrIndexOutOfBounds, t, len(s.values))
	}
	return int(pos), nil
}

// Lookup returns the sample nearest to independent-variable value t.
func (s *Series) Lookup(t float32) (float32, error) {
	i, err := s.Index(t)
	if err != nil {
		return 0, err
	}
	return s.values[i], nil
}

func (s *Series) Initial() (float32, error) {
	if len(s.values) == 0 {
		return 0, dynamo.ErrEmptySeries
	}
	return s.values[0], nil
}

func (s *Series) Terminal() (float32, error) {
	if len(s.values) == 0 {
		return 0, dynamo.ErrEmptySeries
	}
	return s.values[len(s.values)-1], nil
}

// Values returns a copy of the samples.
func (s *Series) Values() []float32 {
	c := make([]float32, len(s.values))
	copy(c, s.values)
	return c
}

// Float64s returns a widened copy of the samples for plotting and analysis.
func (s *Series) Float64s() []float64 {
	out := make([]float64, len(s.values))
	for i, x := range s.values {
		out[i] = float64(x)
	}
	return out
}

// Writer is the write capability for one dependent series.
type Writer struct {
	s      *Series
	sealed bool
}

func (w *Writer) Write(i int, x float32) error {
	if w.sealed {
		return dynamo.ErrSealed
	}
	if i < 0 || i >= len(w.s.values) {
		return fmt.Errorf("%w: index %d, size %d", dynamo.ErrIndexOutOfBounds, i, len(w.s.values))
	}
	w.s.values[i] = x
	return nil
}

// Seal ends the fill phase. Later writes fail with ErrSealed.
func (w *Writer) Seal() { w.sealed = true }

func (w *Writer) Len() int { return len(w.s.values) }
