package metrics

import "github.com/san-kum/dynlab/internal/dynamo"

// Stability is the fraction of samples that are finite with Euclidean norm
// within threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(x dynamo.Vector, t float32) {
	s.samples++
	if !x.IsValid() || float64(x.Norm()) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// NonFinite records the first sample index holding NaN or Inf, or -1.
// The solver never masks non-finite values; this only reports them.
type NonFinite struct {
	first   int
	samples int
}

func NewNonFinite() *NonFinite {
	return &NonFinite{first: -1}
}

func (n *NonFinite) Name() string { return "first_non_finite" }

func (n *NonFinite) Observe(x dynamo.Vector, t float32) {
	if n.first < 0 && !x.IsValid() {
		n.first = n.samples
	}
	n.samples++
}

func (n *NonFinite) Value() float64 { return float64(n.first) }

func (n *NonFinite) Reset() {
	n.first = -1
	n.samples = 0
}
