package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/dynlab/internal/dynamo"
	"github.com/san-kum/dynlab/internal/integrators"
	"github.com/san-kum/dynlab/internal/ivp"
	"github.com/san-kum/dynlab/internal/rhs"
)

const (
	DefaultDataDir  = ".dynlab"
	DefaultEquation = "-x"
	DefaultT0       = 0.0
	DefaultTN       = 10.0
	DefaultSamples  = 1000
	DefaultAlpha    = 1.0
	DefaultBeta     = 0.0
)

type Config struct {
	LogLevel   slog.Level    `yaml:"log_level"`
	DataDir    string        `yaml:"data_dir"`
	Integrator string        `yaml:"integrator"`
	Problem    ProblemConfig `yaml:"problem"`
}

// ProblemConfig describes x'' = equation(x, v, t) with x(t0) = alpha and
// x'(t0) = beta, sampled at samples points of [t0, tn).
type ProblemConfig struct {
	Equation string      `yaml:"equation"`
	Symbols  ivp.Symbols `yaml:"symbols"`
	T0       float32     `yaml:"t0"`
	TN       float32     `yaml:"tn"`
	Samples  int         `yaml:"samples"`
	Alpha    float32     `yaml:"alpha"`
	Beta     float32     `yaml:"beta"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel:   slog.LevelInfo,
		DataDir:    DefaultDataDir,
		Integrator: integrators.Default,
		Problem: ProblemConfig{
			Equation: DefaultEquation,
			Symbols:  ivp.DefaultSymbols(),
			T0:       DefaultT0,
			TN:       DefaultTN,
			Samples:  DefaultSamples,
			Alpha:    DefaultAlpha,
			Beta:     DefaultBeta,
		},
	}
}

func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.DataDir, validation.Required),
		validation.Field(&c.Integrator, validation.Required, validation.In(stringsToAny(integrators.Names())...)),
	); err != nil {
		return err
	}
	return c.Problem.Validate()
}

func (p *ProblemConfig) Validate() error {
	if err := validation.ValidateStruct(p,
		validation.Field(&p.Equation, validation.Required),
	); err != nil {
		return err
	}
	if p.Samples < 2 {
		return fmt.Errorf("problem: %w: need at least 2 samples, got %d", dynamo.ErrInvalidSampleCount, p.Samples)
	}
	if !(p.T0 < p.TN) {
		return fmt.Errorf("problem: %w: t0 (%g) must be less than tn (%g)", dynamo.ErrInvalidInterval, p.T0, p.TN)
	}
	return nil
}

// Build compiles the equation and returns the solver input.
func (p *ProblemConfig) Build() (ivp.Problem, error) {
	e, err := rhs.Compile(p.Equation, p.Symbols)
	if err != nil {
		return ivp.Problem{}, err
	}
	return ivp.Problem{
		T0:      p.T0,
		TN:      p.TN,
		Samples: p.Samples,
		Alpha:   p.Alpha,
		Beta:    p.Beta,
		Field:   e.Field(),
		Symbols: e.Symbols(),
	}, nil
}

// Load reads a YAML config, expanding ${VAR} references from the
// environment, on top of DefaultConfig.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads path, or returns DefaultConfig when path is empty or
// does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return Load(path)
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
