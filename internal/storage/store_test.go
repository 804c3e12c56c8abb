package storage

import (
	"context"
	"errors"
	"maps"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/dynlab/internal/dynamo"
	"github.com/san-kum/dynlab/internal/ivp"
)

func harmonicSolution(t *testing.T) *ivp.Solution {
	t.Helper()
	field := dynamo.Reduce(func(x dynamo.Vector, _ float32) float32 { return -x[0] })
	sol, err := ivp.New(nil).Solve(context.Background(), ivp.Problem{
		T0: 0, TN: 1, Samples: 11, Alpha: 1, Beta: 0, Field: field,
	})
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	sol.Metrics = map[string]float64{"energy_drift": 1.5e-7}
	return sol
}

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()
	st, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st, tmpDir
}

func TestStoreSaveLoad(t *testing.T) {
	st, _ := openStore(t)
	sol := harmonicSolution(t)

	runID, err := st.Save(RunMetadata{
		Name: "harmonic", Equation: "-x", Integrator: "rk4",
		Symbols: ivp.DefaultSymbols(), T0: 0, TN: 1, Alpha: 1,
	}, sol)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "harmonic" {
		t.Errorf("expected name 'harmonic', got '%s'", meta.Name)
	}
	if meta.Samples != 11 {
		t.Errorf("expected 11 samples, got %d", meta.Samples)
	}
	if meta.Metrics["energy_drift"] != 1.5e-7 {
		t.Errorf("expected energy_drift 1.5e-7, got %g", meta.Metrics["energy_drift"])
	}

	_, loaded, err := st.LoadSolution(runID)
	if err != nil {
		t.Fatalf("load solution failed: %v", err)
	}
	if loaded.Len() != sol.Len() {
		t.Fatalf("expected %d samples, got %d", sol.Len(), loaded.Len())
	}
	for i := 0; i < sol.Len(); i++ {
		t1, x1, v1, _ := sol.At(i)
		t2, x2, v2, _ := loaded.At(i)
		if t1 != t2 || x1 != x2 || v1 != v2 {
			t.Errorf("sample %d: got (%v, %v, %v), want (%v, %v, %v)", i, t2, x2, v2, t1, x1, v1)
		}
	}

	tq, _ := loaded.Time.At(5)
	x, err := loaded.Position.Lookup(tq)
	if err != nil {
		t.Fatalf("lookup on reloaded series failed: %v", err)
	}
	if math.Abs(float64(x)-math.Cos(float64(tq))) > 1e-5 {
		t.Errorf("x(%v) = %v, want %v", tq, x, math.Cos(float64(tq)))
	}
	if loaded.Velocity.Symbol() != "v" {
		t.Errorf("expected velocity symbol 'v', got %q", loaded.Velocity.Symbol())
	}
}

func TestStoreList(t *testing.T) {
	st, _ := openStore(t)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	sol := harmonicSolution(t)
	id, err := st.Save(RunMetadata{Name: "a", Equation: "-x", Integrator: "rk4", TN: 1}, sol)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].ID != id || runs[0].Equation != "-x" || runs[0].TN != 1 {
		t.Errorf("unexpected catalog row %+v", runs[0])
	}

	if err := st.Delete(id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	runs, _ = st.List()
	if len(runs) != 0 {
		t.Errorf("expected 0 runs after delete, got %d", len(runs))
	}
	if _, err := st.Load(id); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	st, tmpDir := openStore(t)

	runID, err := st.Save(RunMetadata{Name: "test"}, harmonicSolution(t))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{metadataFile, samplesFile} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
	if _, err := os.Stat(filepath.Join(tmpDir, catalogFile)); os.IsNotExist(err) {
		t.Error("catalog not created")
	}
}

func TestStoreRejectsBadIDs(t *testing.T) {
	st, _ := openStore(t)

	for _, id := range []string{"", "../etc", "a/b", "run id"} {
		if _, err := st.Load(id); !errors.Is(err, ErrInvalidRunID) {
			t.Errorf("Load(%q): expected ErrInvalidRunID, got %v", id, err)
		}
		if err := st.Delete(id); !errors.Is(err, ErrInvalidRunID) {
			t.Errorf("Delete(%q): expected ErrInvalidRunID, got %v", id, err)
		}
	}
}

func TestStoreCorruptSamples(t *testing.T) {
	st, tmpDir := openStore(t)

	runID, err := st.Save(RunMetadata{Name: "test"}, harmonicSolution(t))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	path := filepath.Join(tmpDir, runID, samplesFile)
	if err := os.WriteFile(path, []byte("t,x,v\n0,1,0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := st.LoadSolution(runID); !errors.Is(err, ErrCorruptRun) {
		t.Errorf("expected ErrCorruptRun, got %v", err)
	}
}

func TestStoreListMatchesLoad(t *testing.T) {
	st, _ := openStore(t)

	id, err := st.Save(RunMetadata{
		Name: "pendulum", Equation: "-9.81 * sin(theta)", Integrator: "verlet",
		Symbols: ivp.Symbols{Time: "t", Position: "theta", Velocity: "omega"},
		T0: 0, TN: 1, Alpha: 2.5, Beta: 0.5, Elapsed: 3 * time.Millisecond,
	}, harmonicSolution(t))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	listed := runs[0]
	loaded, err := st.Load(id)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if listed.ID != loaded.ID || listed.Name != loaded.Name ||
		listed.Integrator != loaded.Integrator || listed.Equation != loaded.Equation {
		t.Errorf("identity differs: list %+v, load %+v", listed, *loaded)
	}
	if listed.Symbols != loaded.Symbols || listed.Symbols.Position != "theta" {
		t.Errorf("symbols: list %+v, load %+v", listed.Symbols, loaded.Symbols)
	}
	if listed.T0 != loaded.T0 || listed.TN != loaded.TN || listed.Samples != loaded.Samples {
		t.Errorf("grid: list (%v, %v, %d), load (%v, %v, %d)",
			listed.T0, listed.TN, listed.Samples, loaded.T0, loaded.TN, loaded.Samples)
	}
	if listed.Alpha != 2.5 || listed.Beta != 0.5 || listed.Alpha != loaded.Alpha || listed.Beta != loaded.Beta {
		t.Errorf("initial values: list (%v, %v), load (%v, %v)", listed.Alpha, listed.Beta, loaded.Alpha, loaded.Beta)
	}
	if listed.Elapsed != loaded.Elapsed || !listed.Timestamp.Equal(loaded.Timestamp) {
		t.Errorf("times: list (%v, %v), load (%v, %v)", listed.Elapsed, listed.Timestamp, loaded.Elapsed, loaded.Timestamp)
	}
	if !maps.Equal(listed.Metrics, loaded.Metrics) || listed.Metrics["energy_drift"] != 1.5e-7 {
		t.Errorf("metrics: list %v, load %v", listed.Metrics, loaded.Metrics)
	}
}

func TestStoreSaveFailureLeavesNoRun(t *testing.T) {
	st, tmpDir := openStore(t)
	if err := st.catalog.close(); err != nil {
		t.Fatal(err)
	}

	if _, err := st.Save(RunMetadata{Name: "lost"}, harmonicSolution(t)); err == nil {
		t.Fatal("expected save to fail with the catalog closed")
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.IsDir() {
			t.Errorf("run directory %s left behind", e.Name())
		}
	}
}
