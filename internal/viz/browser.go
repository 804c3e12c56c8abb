package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/dynlab/internal/ivp"
)

const (
	canvasWidth  = 48
	canvasHeight = 16
	sparkWidth   = 48
)

// Browser steps through the samples of a solved run, showing the phase
// trace with the current sample marked.
type Browser struct {
	title  string
	sol    *ivp.Solution
	xs, vs []float64
	bounds Bounds
	canvas *Canvas

	cursor    int
	searching bool
	query     string
	err       error
}

func NewBrowser(title string, sol *ivp.Solution) Browser {
	xs := sol.Position.Float64s()
	vs := sol.Velocity.Float64s()
	return Browser{
		title:  title,
		sol:    sol,
		xs:     xs,
		vs:     vs,
		bounds: BoundsOf(xs, vs),
		canvas: NewCanvas(canvasWidth, canvasHeight),
	}
}

// Cursor is the index of the selected sample.
func (b Browser) Cursor() int { return b.cursor }

// Err is the last lookup error, if any.
func (b Browser) Err() error { return b.err }

func (b Browser) Init() tea.Cmd { return nil }

func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return b, nil
	}
	if b.searching {
		return b.updateSearch(key)
	}

	last := b.sol.Len() - 1
	page := max(b.sol.Len()/10, 1)

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return b, tea.Quit
	case "right", "l":
		b.cursor++
	case "left", "h":
		b.cursor--
	case "pgdown":
		b.cursor += page
	case "pgup":
		b.cursor -= page
	case "home", "g":
		b.cursor = 0
	case "end", "G":
		b.cursor = last
	case "/":
		b.searching = true
		b.query = ""
		b.err = nil
	}
	b.cursor = min(max(b.cursor, 0), last)
	return b, nil
}

func (b Browser) updateSearch(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyCtrlC:
		return b, tea.Quit
	case tea.KeyEsc:
		b.searching = false
	case tea.KeyEnter:
		b.searching = false
		b.err = b.seek(b.query)
	case tea.KeyBackspace:
		if len(b.query) > 0 {
			b.query = b.query[:len(b.query)-1]
		}
	case tea.KeyRunes:
		for _, r := range key.Runes {
			if strings.ContainsRune("0123456789.-+eE", r) {
				b.query += string(r)
			}
		}
	}
	return b, nil
}

func (b *Browser) seek(query string) error {
	t, err := strconv.ParseFloat(query, 32)
	if err != nil {
		return fmt.Errorf("not a time: %q", query)
	}
	i, err := b.sol.Position.Index(float32(t))
	if err != nil {
		return err
	}
	b.cursor = i
	return nil
}

func (b Browser) View() string {
	t, x, v, err := b.sol.At(b.cursor)
	if err != nil {
		return ErrorText.Render(err.Error())
	}

	b.canvas.Clear()
	b.canvas.Trace(b.bounds, b.xs, b.vs)
	b.canvas.Mark(b.bounds, float64(x), float64(v))

	sym := [3]string{b.sol.Time.Symbol(), b.sol.Position.Symbol(), b.sol.Velocity.Symbol()}

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(b.title) + "\n\n")
	s.WriteString(MetricLabel.Render("sample") + MetricValue.Render(fmt.Sprintf("%d / %d", b.cursor, b.sol.Len()-1)) + "\n")
	s.WriteString(MetricLabel.Render(sym[0]) + MetricValue.Render(fmt.Sprintf("%.6g", t)) + "\n")
	s.WriteString(MetricLabel.Render(sym[1]) + MetricValue.Render(fmt.Sprintf("%.6g", x)) + "\n")
	s.WriteString(MetricLabel.Render(sym[2]) + MetricValue.Render(fmt.Sprintf("%.6g", v)) + "\n\n")

	progress := 0.0
	if b.sol.Len() > 1 {
		progress = float64(b.cursor) / float64(b.sol.Len()-1)
	}
	s.WriteString(ProgressBar(progress, sparkWidth) + "\n")
	s.WriteString(Sparkline(b.xs, sparkWidth) + "  " + Subtle.Render(sym[1]) + "\n")

	if b.searching {
		s.WriteString("\n" + Title.Render(sym[0]+" = ") + b.query + "█\n")
	} else if b.err != nil {
		s.WriteString("\n" + ErrorText.Render(b.err.Error()) + "\n")
	}
	s.WriteString(KeyHint.Render("\n←/→ step  PgUp/PgDn jump  / lookup  q quit"))

	phase := Panel.Render(Subtle.Render(sym[2]+" vs "+sym[1]) + "\n" + b.canvas.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, phase, "  ", s.String())
}

// Browse runs the browser until the user quits.
func Browse(title string, sol *ivp.Solution) error {
	_, err := tea.NewProgram(NewBrowser(title, sol)).Run()
	return err
}
