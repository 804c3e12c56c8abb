// Package rhs compiles user-written right-hand sides such as "-x - 0.1*v"
// into field slot functions.
//
// Expressions see the three problem symbols (position, velocity and time,
// named by ivp.Symbols) plus the usual math functions and the constants pi
// and e. Evaluation errors at run time yield NaN, which then propagates
// through the solve like any other non-finite value.
package rhs

import (
	"errors"
	"fmt"
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/san-kum/dynlab/internal/dynamo"
	"github.com/san-kum/dynlab/internal/ivp"
)

var ErrEmptyExpression = errors.New("rhs: empty expression")

var builtins = map[string]any{
	"pi":    math.Pi,
	"e":     math.E,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"atan2": math.Atan2,
	"sinh":  math.Sinh,
	"cosh":  math.Cosh,
	"tanh":  math.Tanh,
	"exp":   math.Exp,
	"log":   math.Log,
	"sqrt":  math.Sqrt,
	"pow":   math.Pow,
	"sign": func(x float64) float64 {
		switch {
		case x > 0:
			return 1
		case x < 0:
			return -1
		}
		return 0
	},
}

// Expression is a compiled right-hand side.
type Expression struct {
	source  string
	symbols ivp.Symbols
	program *vm.Program
}

// Compile checks src against the symbol names and the builtin functions.
func Compile(src string, sym ivp.Symbols) (*Expression, error) {
	if src == "" {
		return nil, ErrEmptyExpression
	}
	if sym == (ivp.Symbols{}) {
		sym = ivp.DefaultSymbols()
	}
	if err := checkSymbols(sym); err != nil {
		return nil, err
	}

	program, err := expr.Compile(src, expr.Env(env(sym, 0, 0, 0)), expr.AsFloat64())
	if err != nil {
		return nil, fmt.Errorf("rhs: compile %q: %w", src, err)
	}
	return &Expression{source: src, symbols: sym, program: program}, nil
}

func (e *Expression) String() string { return e.source }

func (e *Expression) Symbols() ivp.Symbols { return e.symbols }

// Eval evaluates the expression at (x, v, t).
func (e *Expression) Eval(x, v, t float64) (float64, error) {
	out, err := expr.Run(e.program, env(e.symbols, x, v, t))
	if err != nil {
		return math.NaN(), err
	}
	switch r := out.(type) {
	case float64:
		return r, nil
	case int:
		return float64(r), nil
	}
	return math.NaN(), fmt.Errorf("rhs: %q evaluated to %T", e.source, out)
}

// Func adapts the expression to a slot function over the reduced state (x, v).
func (e *Expression) Func() dynamo.Func {
	return func(s dynamo.Vector, t float32) float32 {
		r, err := e.Eval(float64(s[0]), float64(s[1]), float64(t))
		if err != nil {
			return float32(math.NaN())
		}
		return float32(r)
	}
}

// Field returns the reduced planar system with this expression as x''.
func (e *Expression) Field() *dynamo.Field {
	return dynamo.Reduce(e.Func())
}

func env(sym ivp.Symbols, x, v, t float64) map[string]any {
	m := make(map[string]any, len(builtins)+3)
	for k, fn := range builtins {
		m[k] = fn
	}
	m[sym.Position] = x
	m[sym.Velocity] = v
	m[sym.Time] = t
	return m
}

func checkSymbols(sym ivp.Symbols) error {
	names := []string{sym.Time, sym.Position, sym.Velocity}
	seen := make(map[string]bool, 3)
	for _, n := range names {
		if n == "" {
			return fmt.Errorf("rhs: empty symbol in %+v", sym)
		}
		if _, ok := builtins[n]; ok {
			return fmt.Errorf("rhs: symbol %q shadows a builtin", n)
		}
		if seen[n] {
			return fmt.Errorf("rhs: duplicate symbol %q", n)
		}
		seen[n] = true
	}
	return nil
}
