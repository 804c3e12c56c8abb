package config

import (
	"sort"

	"github.com/san-kum/dynlab/internal/ivp"
)

var angular = ivp.Symbols{Time: "t", Position: "theta", Velocity: "omega"}

// Presets are ready-made problems keyed by name.
var Presets = map[string]ProblemConfig{
	"harmonic": {
		Equation: "-x", Symbols: ivp.DefaultSymbols(),
		T0: 0, TN: 6.2831855, Samples: 1000, Alpha: 1, Beta: 0,
	},
	"free": {
		Equation: "0", Symbols: ivp.DefaultSymbols(),
		T0: 0, TN: 10, Samples: 100, Alpha: 0, Beta: 1,
	},
	"damped": {
		Equation: "-4*x - 0.4*v", Symbols: ivp.DefaultSymbols(),
		T0: 0, TN: 20, Samples: 2000, Alpha: 1, Beta: 0,
	},
	"pendulum": {
		Equation: "-9.81 * sin(theta)", Symbols: angular,
		T0: 0, TN: 20, Samples: 2000, Alpha: 2.5, Beta: 0,
	},
	"duffing": {
		Equation: "-0.2*v + x - x*x*x + 0.3*cos(1.2*t)", Symbols: ivp.DefaultSymbols(),
		T0: 0, TN: 100, Samples: 10000, Alpha: 1, Beta: 0,
	},
	"vanderpol": {
		Equation: "2*(1 - x*x)*v - x", Symbols: ivp.DefaultSymbols(),
		T0: 0, TN: 30, Samples: 3000, Alpha: 0.5, Beta: 0,
	},
	"forced": {
		Equation: "-x + 0.5*cos(0.9*t)", Symbols: ivp.DefaultSymbols(),
		T0: 0, TN: 60, Samples: 6000, Alpha: 0, Beta: 0,
	},
	"projectile": {
		Equation: "-9.81", Symbols: ivp.Symbols{Time: "t", Position: "y", Velocity: "vy"},
		T0: 0, TN: 2, Samples: 200, Alpha: 0, Beta: 9.81,
	},
}

// GetPreset returns a config holding the named problem, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Problem = p
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
