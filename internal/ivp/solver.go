// Package ivp solves second-order scalar initial value problems on a fixed
// time grid.
//
// The equation x'' = F(x, x', t) is reduced to the planar system u' = v,
// v' = F(u, v, t) and integrated step by step. The default integrator is the
// classical Runge-Kutta method; every step uses the constant spacing of the
// grid, so there is no step-size control. Non-finite values produced by F
// propagate into later samples unchanged.
//
// A Solver keeps integrator scratch space and metric state and is not safe
// for concurrent use. Independent solves can run in parallel with one Solver
// each; see [Ensemble].
package ivp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/dynlab/internal/dynamo"
	"github.com/san-kum/dynlab/internal/integrators"
	"github.com/san-kum/dynlab/internal/series"
)

type Solver struct {
	integrator dynamo.Integrator
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
	logger     *slog.Logger
}

type Option func(*Solver)

func WithLogger(l *slog.Logger) Option {
	return func(s *Solver) { s.logger = l }
}

// New returns a solver using integrator, or RK4 when integrator is nil.
func New(integrator dynamo.Integrator, opts ...Option) *Solver {
	if integrator == nil {
		integrator = integrators.NewRK4()
	}
	s := &Solver{
		integrator: integrator,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Solver) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Solver) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// Solve integrates p and returns the time grid with both trajectories. On
// cancellation the partially written series are dropped and the error wraps
// both dynamo.ErrCanceled and the context error.
func (s *Solver) Solve(ctx context.Context, p Problem) (*Solution, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	grid, err := series.NewLinear(p.T0, p.TN, p.Samples)
	if err != nil {
		return nil, err
	}
	pos, posW, err := series.NewDependent(p.Samples)
	if err != nil {
		return nil, err
	}
	vel, velW, err := series.NewDependent(p.Samples)
	if err != nil {
		return nil, err
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	h := grid.Slope()
	x := dynamo.Vector{p.Alpha, p.Beta}
	if err := s.record(posW, velW, 0, x, p.T0); err != nil {
		return nil, err
	}

	for i := 0; i < p.Samples-1; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", dynamo.ErrCanceled, ctx.Err())
		default:
		}

		t, err := grid.At(i)
		if err != nil {
			return nil, err
		}

		next, err := s.integrator.Step(p.Field, x, t, h)
		if err != nil {
			return nil, &dynamo.StepError{Step: i, Time: t, Wrapped: err}
		}
		x = next

		tNext, err := grid.At(i + 1)
		if err != nil {
			return nil, err
		}
		if err := s.record(posW, velW, i+1, x, tNext); err != nil {
			return nil, err
		}
	}

	posW.Seal()
	velW.Seal()

	sym := p.Symbols
	if sym == (Symbols{}) {
		sym = DefaultSymbols()
	}
	grid.SetSymbol(sym.Time)
	pos.SetSymbol(sym.Position)
	vel.SetSymbol(sym.Velocity)
	pos.SetIndependentVariable(grid)
	vel.SetIndependentVariable(grid)

	sol := &Solution{
		Time:     grid,
		Position: pos,
		Velocity: vel,
		Metrics:  make(map[string]float64, len(s.metrics)),
	}
	for _, m := range s.metrics {
		sol.Metrics[m.Name()] = m.Value()
	}

	s.logger.Debug("solve complete",
		slog.Int("samples", p.Samples),
		slog.Float64("step", float64(h)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return sol, nil
}

func (s *Solver) record(posW, velW *series.Writer, i int, x dynamo.Vector, t float32) error {
	if err := posW.Write(i, x[0]); err != nil {
		return err
	}
	if err := velW.Write(i, x[1]); err != nil {
		return err
	}
	for _, m := range s.metrics {
		m.Observe(x, t)
	}
	for _, o := range s.observers {
		o.OnSample(i, x, t)
	}
	return nil
}
