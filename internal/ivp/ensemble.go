package ivp

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/dynlab/internal/dynamo"
)

// Ensemble solves independent problems in parallel. Each problem gets its
// own Solver and integrator, so nothing mutable is shared between workers.
type Ensemble struct {
	newIntegrator func() dynamo.Integrator
	newMetrics    func() []dynamo.Metric
	workers       int
	logger        *slog.Logger
}

// NewEnsemble uses newIntegrator to build one integrator per problem.
// workers <= 0 means runtime.GOMAXPROCS(0).
func NewEnsemble(newIntegrator func() dynamo.Integrator, workers int) *Ensemble {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Ensemble{
		newIntegrator: newIntegrator,
		workers:       workers,
		logger:        slog.Default(),
	}
}

// WithMetrics sets a constructor for the metrics attached to every solve.
func (e *Ensemble) WithMetrics(fn func() []dynamo.Metric) *Ensemble {
	e.newMetrics = fn
	return e
}

func (e *Ensemble) WithLogger(l *slog.Logger) *Ensemble {
	e.logger = l
	return e
}

// Run returns one solution per problem, in input order. The first error
// cancels the remaining solves and no solutions are returned.
func (e *Ensemble) Run(ctx context.Context, problems []Problem) ([]*Solution, error) {
	results := make([]*Solution, len(problems))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := range problems {
		idx := i
		g.Go(func() error {
			var integ dynamo.Integrator
			if e.newIntegrator != nil {
				integ = e.newIntegrator()
			}
			s := New(integ, WithLogger(e.logger))
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					s.AddMetric(m)
				}
			}

			sol, err := s.Solve(ctx, problems[idx])
			if err != nil {
				return err
			}
			results[idx] = sol
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
