package ivp

import (
	"github.com/san-kum/dynlab/internal/series"
)

// Solution holds the time grid and the two trajectories of one solve.
// Position and Velocity borrow Time as their independent variable.
type Solution struct {
	Time     *series.Series
	Position *series.Series
	Velocity *series.Series
	Metrics  map[string]float64
}

func (s *Solution) Len() int { return s.Time.Len() }

// At returns the i-th sample of all three series.
func (s *Solution) At(i int) (t, x, v float32, err error) {
	if t, err = s.Time.At(i); err != nil {
		return 0, 0, 0, err
	}
	if x, err = s.Position.At(i); err != nil {
		return 0, 0, 0, err
	}
	if v, err = s.Velocity.At(i); err != nil {
		return 0, 0, 0, err
	}
	return t, x, v, nil
}

// Lookup returns position and velocity at the grid point nearest t.
func (s *Solution) Lookup(t float32) (x, v float32, err error) {
	if x, err = s.Position.Lookup(t); err != nil {
		return 0, 0, err
	}
	if v, err = s.Velocity.Lookup(t); err != nil {
		return 0, 0, err
	}
	return x, v, nil
}

// Terminal returns the last sample of all three series.
func (s *Solution) Terminal() (t, x, v float32, err error) {
	return s.At(s.Len() - 1)
}
