// Package api serves stored runs over HTTP, read-only.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a chi router with all run routes mounted.
func NewRouter(store RunStore) chi.Router {
	h := NewHandler(store)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/runs", h.ListRuns)
	r.Route("/runs/{id}", func(r chi.Router) {
		r.Get("/", h.GetRun)
		r.Get("/samples", h.GetSamples)
		r.Get("/samples/{index}", h.GetSample)
		r.Get("/lookup", h.Lookup)
		r.Get("/plot.png", h.GetPlot)
	})
	return r
}
