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

func harmonic(x dynamo.Vector, t float32) float32 { return -x[0] }
func free(x dynamo.Vector, t float32) float32     { return 0 }

type sampleCounter struct {
	indices []int
}

func (c *sampleCounter) OnSample(i int, x dynamo.Vector, t float32) {
	c.indices = append(c.indices, i)
}

var _ = Describe("Solver", func() {
	var (
		ctx    context.Context
		solver *ivp.Solver
	)

	BeforeEach(func() {
		ctx = context.Background()
		solver = ivp.New(nil)
	})

	Describe("simple harmonic oscillator", func() {
		var sol *ivp.Solution

		BeforeEach(func() {
			var err error
			sol, err = solver.Solve(ctx, ivp.Problem{
				T0:      0,
				TN:      2 * math.Pi,
				Samples: 1000,
				Alpha:   1,
				Beta:    0,
				Field:   dynamo.Reduce(harmonic),
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("starts at the initial conditions", func() {
			t0, x0, v0, err := sol.At(0)
			Expect(err).NotTo(HaveOccurred())
			Expect(t0).To(BeEquivalentTo(0))
			Expect(x0).To(BeEquivalentTo(1))
			Expect(v0).To(BeEquivalentTo(0))
		})

		It("tracks cos/-sin at the last grid point", func() {
			tN, xN, vN, err := sol.Terminal()
			Expect(err).NotTo(HaveOccurred())
			Expect(float64(xN)).To(BeNumerically("~", math.Cos(float64(tN)), 1e-3))
			Expect(float64(vN)).To(BeNumerically("~", -math.Sin(float64(tN)), 1e-3))
			Expect(float64(xN)).To(BeNumerically("~", 1, 1e-3))
		})

		It("uses the half-open grid", func() {
			Expect(sol.Len()).To(Equal(1000))
			Expect(sol.Time.IsLinear()).To(BeTrue())
			last, err := sol.Time.Terminal()
			Expect(err).NotTo(HaveOccurred())
			Expect(float64(last)).To(BeNumerically("~", 2*math.Pi*999/1000, 1e-5))
		})

		It("attaches the grid to both trajectories", func() {
			Expect(sol.Position.IndependentVariable()).To(BeIdenticalTo(sol.Time))
			Expect(sol.Velocity.IndependentVariable()).To(BeIdenticalTo(sol.Time))
			Expect(sol.Time.Symbol()).To(Equal("t"))
			Expect(sol.Position.Symbol()).To(Equal("x"))
			Expect(sol.Velocity.Symbol()).To(Equal("v"))
		})

		It("looks samples up by grid value", func() {
			for _, i := range []int{0, 1, 250, 500, 998, 999} {
				ti, err := sol.Time.At(i)
				Expect(err).NotTo(HaveOccurred())
				x, v, err := sol.Lookup(ti)
				Expect(err).NotTo(HaveOccurred())
				_, xi, vi, _ := sol.At(i)
				Expect(x).To(Equal(xi))
				Expect(v).To(Equal(vi))
			}
		})

		It("returns the same sample on repeated reads", func() {
			first, _ := sol.Position.At(321)
			for i := 0; i < 5; i++ {
				again, _ := sol.Position.At(321)
				Expect(again).To(Equal(first))
			}
		})

		It("rejects lookups outside the grid", func() {
			_, _, err := sol.Lookup(-1)
			Expect(err).To(MatchError(dynamo.ErrIndexOutOfBounds))
			_, _, err = sol.Lookup(7)
			Expect(err).To(MatchError(dynamo.ErrIndexOutOfBounds))
		})
	})

	Describe("free particle", func() {
		DescribeTable("position equals time",
			func(t0, tN float32, n int) {
				sol, err := solver.Solve(ctx, ivp.Problem{
					T0: t0, TN: tN, Samples: n, Alpha: t0, Beta: 1,
					Field: dynamo.Reduce(free),
				})
				Expect(err).NotTo(HaveOccurred())

				for i := 0; i < n; i++ {
					ti, x, v, err := sol.At(i)
					Expect(err).NotTo(HaveOccurred())
					tol := 1e-5 * math.Max(1, math.Abs(float64(ti)))
					Expect(float64(x)).To(BeNumerically("~", float64(ti), tol))
					Expect(v).To(BeEquivalentTo(1))
				}
			},
			Entry("unit interval", float32(0), float32(1), 2),
			Entry("hundred samples", float32(0), float32(10), 100),
			Entry("negative start", float32(-5), float32(5), 64),
		)

		It("keeps U[i] == T[i] from the origin", func() {
			sol, err := solver.Solve(ctx, ivp.Problem{
				T0: 0, TN: 3, Samples: 300, Alpha: 0, Beta: 1,
				Field: dynamo.Reduce(free),
			})
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < sol.Len(); i++ {
				ti, xi, _, _ := sol.At(i)
				Expect(float64(xi)).To(BeNumerically("~", float64(ti), 1e-5))
			}
		})
	})

	Describe("validation", func() {
		valid := func() ivp.Problem {
			return ivp.Problem{T0: 0, TN: 1, Samples: 10, Alpha: 1, Field: dynamo.Reduce(harmonic)}
		}

		DescribeTable("sample count",
			func(n int) {
				p := valid()
				p.Samples = n
				_, err := solver.Solve(ctx, p)
				Expect(err).To(MatchError(dynamo.ErrInvalidSampleCount))
			},
			Entry("zero", 0),
			Entry("one", 1),
			Entry("negative", -4),
		)

		DescribeTable("interval",
			func(t0, tN float32) {
				p := valid()
				p.T0, p.TN = t0, tN
				_, err := solver.Solve(ctx, p)
				Expect(err).To(MatchError(dynamo.ErrInvalidInterval))
			},
			Entry("equal bounds", float32(1), float32(1)),
			Entry("reversed", float32(2), float32(1)),
			Entry("NaN", float32(math.NaN()), float32(1)),
		)

		It("rejects a field of the wrong dimension", func() {
			p := valid()
			p.Field = dynamo.NewField(3)
			_, err := solver.Solve(ctx, p)
			Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))

			p.Field = nil
			_, err = solver.Solve(ctx, p)
			Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
		})

		It("rejects an unbound slot", func() {
			p := valid()
			p.Field = dynamo.Reduce(nil)
			_, err := solver.Solve(ctx, p)
			Expect(err).To(MatchError(dynamo.ErrUnboundSlot))
		})
	})

	It("propagates non-finite values without masking", func() {
		m := metrics.NewNonFinite()
		solver.AddMetric(m)
		sol, err := solver.Solve(ctx, ivp.Problem{
			T0: 0, TN: 1, Samples: 5, Alpha: 1,
			Field: dynamo.Reduce(func(x dynamo.Vector, t float32) float32 {
				if t > 0.3 {
					return float32(math.NaN())
				}
				return 0
			}),
		})
		Expect(err).NotTo(HaveOccurred())

		x, _ := sol.Position.Terminal()
		Expect(math.IsNaN(float64(x))).To(BeTrue())
		Expect(sol.Metrics).To(HaveKey("first_non_finite"))
		Expect(sol.Metrics["first_non_finite"]).To(BeNumerically(">", 0))
	})

	It("discards output when the context is canceled", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		sol, err := solver.Solve(cctx, ivp.Problem{
			T0: 0, TN: 1, Samples: 100, Alpha: 1, Field: dynamo.Reduce(harmonic),
		})
		Expect(sol).To(BeNil())
		Expect(err).To(MatchError(dynamo.ErrCanceled))
		Expect(err).To(MatchError(context.Canceled))
	})

	It("notifies observers and metrics once per sample", func() {
		counter := &sampleCounter{}
		drift := metrics.NewEnergyDrift(metrics.Oscillator(1))
		solver.AddObserver(counter)
		solver.AddMetric(drift)

		sol, err := solver.Solve(ctx, ivp.Problem{
			T0: 0, TN: 10, Samples: 500, Alpha: 1, Field: dynamo.Reduce(harmonic),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(counter.indices).To(HaveLen(500))
		Expect(counter.indices[0]).To(Equal(0))
		Expect(counter.indices[499]).To(Equal(499))
		Expect(sol.Metrics["energy_drift"]).To(BeNumerically("<", 1e-4))
	})

	It("honors custom symbols and integrators", func() {
		integ, err := integrators.Get("euler")
		Expect(err).NotTo(HaveOccurred())
		sol, err := ivp.New(integ).Solve(ctx, ivp.Problem{
			T0: 0, TN: 1, Samples: 10, Alpha: 0, Beta: 2,
			Field:   dynamo.Reduce(free),
			Symbols: ivp.Symbols{Time: "s", Position: "y", Velocity: "dy"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(sol.Time.Symbol()).To(Equal("s"))
		Expect(sol.Position.Symbol()).To(Equal("y"))
		Expect(sol.Velocity.Symbol()).To(Equal("dy"))

		_, x, _, _ := sol.Terminal()
		Expect(float64(x)).To(BeNumerically("~", 1.8, 1e-5))
	})
})
