package export

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	figureWidth  = 8.0
	figureHeight = 6.0
	figureDPI    = 150
)

var (
	positionColor = color.RGBA{R: 0, G: 114, B: 178, A: 255}
	velocityColor = color.RGBA{R: 213, G: 94, B: 0, A: 255}
)

// TrajectoryPlot draws position and velocity against time.
func TrajectoryPlot(run Run) (*plot.Plot, error) {
	sol := run.Solution
	ts := sol.Time.Float64s()

	p := plot.New()
	p.Title.Text = title(run)
	p.X.Label.Text = sol.Time.Symbol()
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for _, s := range []struct {
		name  string
		ys    []float64
		color color.Color
	}{
		{sol.Position.Symbol(), sol.Position.Float64s(), positionColor},
		{sol.Velocity.Symbol(), sol.Velocity.Float64s(), velocityColor},
	} {
		line, err := newLine(ts, s.ys, s.color)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		p.Add(line)
		p.Legend.Add(s.name, line)
	}
	return p, nil
}

// PhasePlot draws velocity against position.
func PhasePlot(run Run) (*plot.Plot, error) {
	sol := run.Solution

	p := plot.New()
	p.Title.Text = title(run) + " phase portrait"
	p.X.Label.Text = sol.Position.Symbol()
	p.Y.Label.Text = sol.Velocity.Symbol()
	p.Add(plotter.NewGrid())

	line, err := newLine(sol.Position.Float64s(), sol.Velocity.Float64s(), positionColor)
	if err != nil {
		return nil, err
	}
	p.Add(line)
	return p, nil
}

func title(run Run) string {
	if run.Equation == "" {
		return run.Name
	}
	return fmt.Sprintf("%s: %s'' = %s", run.Name, run.Solution.Position.Symbol(), run.Equation)
}

// newLine drops non-finite points, which gonum refuses to plot.
func newLine(xs, ys []float64, c color.Color) (*plotter.Line, error) {
	pts := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsInf(xs[i], 0) || math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: xs[i], Y: ys[i]})
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("no finite samples to plot")
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = c
	return line, nil
}

// WritePNG renders p on a raster canvas of the given size in inches.
func WritePNG(w io.Writer, p *plot.Plot, widthIn, heightIn float64) error {
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(figureDPI),
	)
	p.Draw(draw.New(c))

	bw := bufio.NewWriter(w)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}

// WriteSVG renders p as SVG.
func WriteSVG(w io.Writer, p *plot.Plot, widthIn, heightIn float64) error {
	wt, err := p.WriterTo(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch, "svg")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// SaveImage writes p to filename, choosing SVG or PNG by extension.
func SaveImage(p *plot.Plot, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(filename), ".svg") {
		return WriteSVG(f, p, figureWidth, figureHeight)
	}
	return WritePNG(f, p, figureWidth, figureHeight)
}
