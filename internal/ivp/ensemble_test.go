package ivp_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dynlab/internal/dynamo"
	"github.com/san-kum/dynlab/internal/integrators"
	"github.com/san-kum/dynlab/internal/ivp"
	"github.com/san-kum/dynlab/internal/metrics"
)

var _ = Describe("Ensemble", func() {
	It("solves independent problems in input order", func() {
		mk, err := integrators.Factory("rk4")
		Expect(err).NotTo(HaveOccurred())

		problems := make([]ivp.Problem, 16)
		for i := range problems {
			problems[i] = ivp.Problem{
				T0: 0, TN: 1, Samples: 200,
				Alpha: float32(i), Beta: 0,
				Field: dynamo.Reduce(harmonic),
			}
		}

		sols, err := ivp.NewEnsemble(mk, 4).
			WithMetrics(func() []dynamo.Metric { return []dynamo.Metric{metrics.NewNonFinite()} }).
			Run(context.Background(), problems)
		Expect(err).NotTo(HaveOccurred())
		Expect(sols).To(HaveLen(16))

		for i, sol := range sols {
			x0, _ := sol.Position.Initial()
			Expect(x0).To(BeEquivalentTo(i))

			tN, xN, _, _ := sol.Terminal()
			Expect(float64(xN)).To(BeNumerically("~", float64(i)*math.Cos(float64(tN)), 1e-4*math.Max(1, float64(i))))
			Expect(sol.Metrics["first_non_finite"]).To(BeEquivalentTo(-1))
		}
	})

	It("fails as a whole when one problem is invalid", func() {
		problems := []ivp.Problem{
			{T0: 0, TN: 1, Samples: 10, Field: dynamo.Reduce(harmonic)},
			{T0: 0, TN: 1, Samples: 1, Field: dynamo.Reduce(harmonic)},
		}
		sols, err := ivp.NewEnsemble(nil, 0).Run(context.Background(), problems)
		Expect(sols).To(BeNil())
		Expect(err).To(MatchError(dynamo.ErrInvalidSampleCount))
	})
})
