package viz

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/dynlab/internal/ivp"
	"github.com/san-kum/dynlab/internal/series"
)

// PlotSeries charts one series against its sample index, captioned with
// the series symbol and the time span of its grid when it has one.
func PlotSeries(s *series.Series, width, height int) string {
	data := plottable(s.Float64s())
	if data == nil {
		return Subtle.Render(fmt.Sprintf("%s: no finite samples", s.Symbol()))
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption(s)),
	)
}

// PlotSolution charts position and velocity together.
func PlotSolution(sol *ivp.Solution, width, height int) string {
	pos := plottable(sol.Position.Float64s())
	vel := plottable(sol.Velocity.Float64s())
	if pos == nil || vel == nil {
		return Subtle.Render("no finite samples")
	}
	return asciigraph.PlotMany([][]float64{pos, vel},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Goldenrod),
		asciigraph.SeriesLegends(sol.Position.Symbol(), sol.Velocity.Symbol()),
		asciigraph.Caption(caption(sol.Position)),
	)
}

func caption(s *series.Series) string {
	grid := s
	if !grid.IsLinear() {
		grid = s.IndependentVariable()
	}
	if grid == nil {
		return s.Symbol()
	}
	t0, err0 := grid.Initial()
	tN, err1 := grid.Terminal()
	if err0 != nil || err1 != nil {
		return s.Symbol()
	}
	return fmt.Sprintf("%s over %s in [%.4g, %.4g]", s.Symbol(), grid.Symbol(), t0, tN)
}

// plottable maps infinities to NaN, which asciigraph leaves as gaps, and
// returns nil when nothing finite is left.
func plottable(values []float64) []float64 {
	seen := false
	for i, v := range values {
		if math.IsInf(v, 0) {
			values[i] = math.NaN()
			continue
		}
		if !math.IsNaN(v) {
			seen = true
		}
	}
	if !seen {
		return nil
	}
	return values
}
