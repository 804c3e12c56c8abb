package dynamo

// Metric accumulates a scalar summary over the samples of one solve.
type Metric interface {
	Name() string
	Observe(x Vector, t float32)
	Value() float64
	Reset()
}

// Observer is notified of every stored sample.
type Observer interface {
	OnSample(i int, x Vector, t float32)
}
