// Package httpapi exposes the sync engine over HTTP.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter mounts the v1 API. metrics, when non-nil, is served at /metrics.
func NewRouter(handler *Handler, metrics http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware(handler.logger))
	r.Use(accessLogMiddleware(handler.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": "ok"})
	})
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/accounts/{accountID}/sync", handler.syncOne)
		r.Get("/accounts/{accountID}/metrics", handler.listMetrics)
		r.Post("/sync", handler.syncMany)
	})
	return r
}
