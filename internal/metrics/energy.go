package metrics

import (
	"math"

	"github.com/san-kum/dynlab/internal/dynamo"
)

// EnergyFunc maps a (position, velocity) state to a conserved quantity.
type EnergyFunc func(x dynamo.Vector) float64

// Oscillator is the energy of x'' = -k x with unit mass.
func Oscillator(k float64) EnergyFunc {
	return func(x dynamo.Vector) float64 {
		u, v := float64(x[0]), float64(x[1])
		return 0.5*v*v + 0.5*k*u*u
	}
}

// Pendulum is the energy of x'' = -(g/l) sin x per unit m*l^2.
func Pendulum(gOverL float64) EnergyFunc {
	return func(x dynamo.Vector) float64 {
		u, v := float64(x[0]), float64(x[1])
		return 0.5*v*v + gOverL*(1-math.Cos(u))
	}
}

// EnergyDrift is the largest relative deviation of energy from its value at
// the first sample.
type EnergyDrift struct {
	name          string
	energy        EnergyFunc
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(energy EnergyFunc) *EnergyDrift {
	return &EnergyDrift{
		name:   "energy_drift",
		energy: energy,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(x dynamo.Vector, t float32) {
	if len(x) < 2 {
		return
	}
	energy := e.energy(x)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
