package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/dynlab/internal/export"
	"github.com/san-kum/dynlab/internal/ivp"
	"github.com/san-kum/dynlab/internal/series"
)

var (
	ErrRunNotFound  = errors.New("storage: run not found")
	ErrInvalidRunID = errors.New("storage: invalid run id")
	ErrCorruptRun   = errors.New("storage: corrupt run data")
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
	catalogFile  = "catalog.db"
)

var runIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

type Store struct {
	baseDir string
	catalog *catalog
	logger  *slog.Logger
}

// Open creates baseDir if needed and opens its run catalog.
func Open(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	cat, err := openCatalog(filepath.Join(baseDir, catalogFile))
	if err != nil {
		return nil, err
	}
	return &Store{baseDir: baseDir, catalog: cat, logger: slog.Default()}, nil
}

func (s *Store) Close() error {
	return s.catalog.close()
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Integrator string             `json:"integrator"`
	Equation   string             `json:"equation"`
	Symbols    ivp.Symbols        `json:"symbols"`
	T0         float32            `json:"t0"`
	TN         float32            `json:"tn"`
	Samples    int                `json:"samples"`
	Alpha      float32            `json:"alpha"`
	Beta       float32            `json:"beta"`
	Elapsed    time.Duration      `json:"elapsed_ns"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes meta and the solution samples under a new run id and returns
// the id. meta.ID, meta.Timestamp and meta.Samples are filled in.
func (s *Store) Save(meta RunMetadata, sol *ivp.Solution) (string, error) {
	name := meta.Name
	if name == "" || !runIDPattern.MatchString(name) {
		name = "run"
	}
	meta.ID = fmt.Sprintf("%s_%d_%s", name, time.Now().Unix(), uuid.NewString()[:8])
	meta.Timestamp = time.Now()
	meta.Samples = sol.Len()
	if meta.Metrics == nil {
		meta.Metrics = sol.Metrics
	}
	meta.Metrics = s.finiteMetrics(meta.Metrics)

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := s.writeRun(runDir, &meta, sol); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	if err := s.catalog.insert(&meta); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}

	s.logger.Info("run saved", slog.String("id", meta.ID), slog.Int("samples", meta.Samples))
	return meta.ID, nil
}

func (s *Store) writeRun(runDir string, meta *RunMetadata, sol *ivp.Solution) error {
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}

	csvFile, err := os.Create(filepath.Join(runDir, samplesFile))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	return export.CSV(csvFile, sol)
}

func (s *Store) List() ([]RunMetadata, error) {
	return s.catalog.list()
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	if !runIDPattern.MatchString(runID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRunID, runID)
	}
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRun, runID, err)
	}
	return &meta, nil
}

// LoadSolution restores a saved run. The time grid is rebuilt from the
// metadata so value lookups behave exactly as they did after the solve.
func (s *Store) LoadSolution(runID string) (*RunMetadata, *ivp.Solution, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 3
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrCorruptRun, runID, err)
	}
	if len(records)-1 != meta.Samples {
		return nil, nil, fmt.Errorf("%w: %s: %d rows for %d samples", ErrCorruptRun, runID, len(records)-1, meta.Samples)
	}

	grid, err := series.NewLinear(meta.T0, meta.TN, meta.Samples)
	if err != nil {
		return nil, nil, err
	}
	pos, posW, err := series.NewDependent(meta.Samples)
	if err != nil {
		return nil, nil, err
	}
	vel, velW, err := series.NewDependent(meta.Samples)
	if err != nil {
		return nil, nil, err
	}

	for i, record := range records[1:] {
		x, err := export.ParseFloat(record[1])
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s row %d: %v", ErrCorruptRun, runID, i+1, err)
		}
		v, err := export.ParseFloat(record[2])
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s row %d: %v", ErrCorruptRun, runID, i+1, err)
		}
		if err := posW.Write(i, x); err != nil {
			return nil, nil, err
		}
		if err := velW.Write(i, v); err != nil {
			return nil, nil, err
		}
	}
	posW.Seal()
	velW.Seal()

	header := records[0]
	grid.SetSymbol(header[0])
	pos.SetSymbol(header[1])
	vel.SetSymbol(header[2])
	pos.SetIndependentVariable(grid)
	vel.SetIndependentVariable(grid)

	return meta, &ivp.Solution{Time: grid, Position: pos, Velocity: vel, Metrics: meta.Metrics}, nil
}

func (s *Store) Delete(runID string) error {
	if !runIDPattern.MatchString(runID) {
		return fmt.Errorf("%w: %q", ErrInvalidRunID, runID)
	}
	if err := s.catalog.delete(runID); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(s.baseDir, runID))
}

// finiteMetrics drops metric values JSON cannot hold.
func (s *Store) finiteMetrics(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for name, v := range in {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			s.logger.Warn("dropping non-finite metric", slog.String("metric", name))
			continue
		}
		out[name] = v
	}
	return out
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
