package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/san-kum/dynlab/internal/dynamo"
	"github.com/san-kum/dynlab/internal/export"
	"github.com/san-kum/dynlab/internal/ivp"
	"github.com/san-kum/dynlab/internal/storage"
)

// RunStore is the read side of storage.Store.
type RunStore interface {
	List() ([]storage.RunMetadata, error)
	Load(runID string) (*storage.RunMetadata, error)
	LoadSolution(runID string) (*storage.RunMetadata, *ivp.Solution, error)
}

// Handler holds API route handlers.
type Handler struct {
	store RunStore
}

func NewHandler(store RunStore) *Handler {
	return &Handler{store: store}
}

// Sample is one row of a run.
type Sample struct {
	Index    int     `json:"index"`
	Time     float32 `json:"t"`
	Position float32 `json:"x"`
	Velocity float32 `json:"v"`
}

// ListRuns handles GET /runs.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.store.List()
	if err != nil {
		slog.Error("list runs failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"total": len(runs),
	})
}

// GetRun handles GET /runs/{id}.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	meta, err := h.store.Load(chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// GetSamples handles GET /runs/{id}/samples as CSV.
func (h *Handler) GetSamples(w http.ResponseWriter, r *http.Request) {
	_, sol, err := h.store.LoadSolution(chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	if err := export.CSV(w, sol); err != nil {
		slog.Error("csv export failed", slog.String("error", err.Error()))
	}
}

// GetSample handles GET /runs/{id}/samples/{index}.
func (h *Handler) GetSample(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("index must be an integer"))
		return
	}
	_, sol, err := h.store.LoadSolution(chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	h.writeSample(w, sol, index)
}

// Lookup handles GET /runs/{id}/lookup?t=, returning the sample nearest t.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	t, err := strconv.ParseFloat(r.URL.Query().Get("t"), 32)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("t must be a number"))
		return
	}
	_, sol, err := h.store.LoadSolution(chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	index, err := sol.Position.Index(float32(t))
	if err != nil {
		writeSolutionError(w, err)
		return
	}
	h.writeSample(w, sol, index)
}

// GetPlot handles GET /runs/{id}/plot.png.
func (h *Handler) GetPlot(w http.ResponseWriter, r *http.Request) {
	meta, sol, err := h.store.LoadSolution(chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	p, err := export.TrajectoryPlot(export.Run{
		Name: meta.Name, Equation: meta.Equation, Integrator: meta.Integrator, Solution: sol,
	})
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := export.WritePNG(w, p, 8, 5); err != nil {
		slog.Error("png export failed", slog.String("error", err.Error()))
	}
}

func (h *Handler) writeSample(w http.ResponseWriter, sol *ivp.Solution, index int) {
	t, x, v, err := sol.At(index)
	if err != nil {
		writeSolutionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Sample{Index: index, Time: t, Position: x, Velocity: v})
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrRunNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, storage.ErrInvalidRunID):
		writeJSON(w, http.StatusBadRequest, errorBody("invalid run id"))
	default:
		slog.Error("load run failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func writeSolutionError(w http.ResponseWriter, err error) {
	if errors.Is(err, dynamo.ErrIndexOutOfBounds) {
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
}
