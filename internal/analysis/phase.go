package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/dynlab/internal/dynamo"
	"github.com/san-kum/dynlab/internal/ivp"
)

type Point struct{ X, Y float64 }

// PhasePortrait holds (position, velocity) points of a trajectory.
type PhasePortrait struct {
	XLabel, YLabel string
	Points         []Point
}

// NewPhasePortrait collects every sample of sol into phase space.
func NewPhasePortrait(sol *ivp.Solution) *PhasePortrait {
	xs := sol.Position.Float64s()
	vs := sol.Velocity.Float64s()

	portrait := &PhasePortrait{
		XLabel: sol.Position.Symbol(),
		YLabel: sol.Velocity.Symbol(),
		Points: make([]Point, len(xs)),
	}
	for i := range xs {
		portrait.Points[i] = Point{X: xs[i], Y: vs[i]}
	}
	return portrait
}

// StroboscopicSection samples the phase point once per period, starting at
// the first grid time. For a periodically forced oscillator the points
// settle on a fixed point, a finite orbit, or a strange attractor.
func StroboscopicSection(sol *ivp.Solution, period float32) (*PhasePortrait, error) {
	if !(period > 0) {
		return nil, fmt.Errorf("%w: period %v", dynamo.ErrInvalidInterval, period)
	}
	t0, err := sol.Time.Initial()
	if err != nil {
		return nil, err
	}
	tEnd, err := sol.Time.Terminal()
	if err != nil {
		return nil, err
	}

	section := &PhasePortrait{
		XLabel: sol.Position.Symbol(),
		YLabel: sol.Velocity.Symbol(),
	}
	for k := 0; ; k++ {
		t := t0 + float32(k)*period
		if t > tEnd {
			break
		}
		x, v, err := sol.Lookup(t)
		if err != nil {
			return nil, err
		}
		section.Points = append(section.Points, Point{X: float64(x), Y: float64(v)})
	}
	return section, nil
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y

	for _, p := range portrait.Points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// axes, where they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
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
