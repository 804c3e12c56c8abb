package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/san-kum/dynlab/internal/ivp"
)

// CSV writes one header row of symbols and one row per sample. Values use
// the shortest form that reads back to the same float32.
func CSV(out io.Writer, sol *ivp.Solution) error {
	w := csv.NewWriter(out)

	header := []string{sol.Time.Symbol(), sol.Position.Symbol(), sol.Velocity.Symbol()}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := 0; i < sol.Len(); i++ {
		t, x, v, err := sol.At(i)
		if err != nil {
			return err
		}
		row := []string{FormatFloat(t), FormatFloat(x), FormatFloat(v)}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func FormatFloat(x float32) string {
	return strconv.FormatFloat(float64(x), 'g', -1, 32)
}

func ParseFloat(s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, err
	}
	return float32(f), nil
}
