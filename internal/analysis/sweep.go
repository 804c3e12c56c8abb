package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/dynlab/internal/ivp"
)

// SweepPoint holds the distinct late-time positions found for one value of
// the swept parameter.
type SweepPoint struct {
	Param  float64
	Values []float64
}

// SweepParams are the problem fields a sweep can vary.
var SweepParams = map[string]func(p *ivp.Problem, value float32){
	"alpha": func(p *ivp.Problem, value float32) { p.Alpha = value },
	"beta":  func(p *ivp.Problem, value float32) { p.Beta = value },
	"tn":    func(p *ivp.Problem, value float32) { p.TN = value },
}

// SweepParamNames lists SweepParams in sorted order.
func SweepParamNames() []string {
	names := make([]string, 0, len(SweepParams))
	for name := range SweepParams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sweep solves base once per parameter value on the ensemble and records the
// distinct positions seen after the first transient fraction of each run.
// Positions are considered equal when they agree to three decimals.
func Sweep(
	ctx context.Context,
	ens *ivp.Ensemble,
	base ivp.Problem,
	param string,
	paramMin, paramMax float64,
	paramSteps int,
	transient float64,
) ([]SweepPoint, error) {
	apply, ok := SweepParams[param]
	if !ok {
		return nil, fmt.Errorf("unknown sweep parameter %q (want one of %s)", param, strings.Join(SweepParamNames(), ", "))
	}
	if paramSteps <= 1 {
		paramSteps = 2
	}
	if transient < 0 || transient >= 1 {
		return nil, fmt.Errorf("transient fraction %v outside [0, 1)", transient)
	}
	paramStep := (paramMax - paramMin) / float64(paramSteps-1)

	problems := make([]ivp.Problem, paramSteps)
	params := make([]float64, paramSteps)
	for i := range problems {
		params[i] = paramMin + float64(i)*paramStep
		problems[i] = base
		apply(&problems[i], float32(params[i]))
	}

	solutions, err := ens.Run(ctx, problems)
	if err != nil {
		return nil, err
	}

	results := make([]SweepPoint, len(solutions))
	for i, sol := range solutions {
		xs := sol.Position.Float64s()
		first := int(float64(len(xs)) * transient)

		values := make([]float64, 0, 16)
		seen := make(map[int]bool)
		for _, val := range xs[first:] {
			if math.IsNaN(val) || math.IsInf(val, 0) {
				continue
			}
			key := int(math.Round(val * 1000))
			if !seen[key] {
				seen[key] = true
				values = append(values, val)
			}
		}
		results[i] = SweepPoint{Param: params[i], Values: values}
	}
	return results, nil
}

// SweepToASCII plots every recorded value against its parameter column.
func SweepToASCII(data []SweepPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	var minVal, maxVal float64
	foundFirst := false
	for _, p := range data {
		for _, v := range p.Values {
			if !foundFirst {
				minVal, maxVal = v, v
				foundFirst = true
				continue
			}
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	if !foundFirst {
		return ""
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i, p := range data {
		col := i * width / len(data)
		if col >= width {
			col = width - 1
		}
		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
