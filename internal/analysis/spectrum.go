package analysis

import (
	"fmt"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/dynlab/internal/dynamo"
	"github.com/san-kum/dynlab/internal/series"
)

// PowerSpectrum returns the magnitudes of the first len(data)/2 bins of the
// DFT of data with its mean removed. Any length is accepted.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}

	mean := 0.0
	for _, x := range data {
		mean += x
	}
	mean /= float64(len(data))

	centered := make([]float64, len(data))
	for i, x := range data {
		centered[i] = x - mean
	}

	bins := fft.FFTReal(centered)
	ps := make([]float64, len(bins)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(bins[i])
	}
	return ps
}

// DominantFrequency returns the frequency, in cycles per unit of the
// independent variable, of the strongest non-constant component of s. The
// bin width is 1/(n*h) where h is the grid slope.
func DominantFrequency(s *series.Series) (float64, error) {
	grid := s
	if !grid.IsLinear() {
		grid = s.IndependentVariable()
	}
	if grid == nil || !grid.IsLinear() {
		return 0, dynamo.ErrNoIndependentVariable
	}
	if s.Len() < 4 {
		return 0, fmt.Errorf("%w: spectrum needs at least 4 samples, got %d", dynamo.ErrInvalidSampleCount, s.Len())
	}

	ps := PowerSpectrum(s.Float64s())
	peak := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[peak] {
			peak = k
		}
	}
	return float64(peak) / (float64(s.Len()) * float64(grid.Slope())), nil
}
