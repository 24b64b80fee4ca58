package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pulse-go/internal/pulse"
)

// SyncService is the slice of pulse.Service the HTTP surface calls.
type SyncService interface {
	SyncOne(ctx context.Context, accountID string) (*pulse.MetricRecord, error)
	SyncMany(ctx context.Context, filter pulse.SyncFilter) (*pulse.BatchSyncResult, error)
	ListMetrics(ctx context.Context, accountID string, limit int) ([]*pulse.MetricRecord, error)
}

type Handler struct {
	service SyncService
	logger  pulse.Logger
}

func NewHandler(service SyncService, logger pulse.Logger) *Handler {
	if logger == nil {
		logger = pulse.NewNopLogger()
	}
	return &Handler{service: service, logger: logger}
}

func (h *Handler) syncOne(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.SyncOne(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, syncOneResponse{Success: true, Metrics: toMetricResponse(rec)})
}

func (h *Handler) syncMany(w http.ResponseWriter, r *http.Request) {
	var req syncManyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json body", requestIDFromContext(r.Context()))
		return
	}

	batch, err := h.service.SyncMany(r.Context(), pulse.SyncFilter{
		ClientID: req.ClientID,
		Platform: pulse.Platform(req.Platform),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, syncManyResponse{
		Success: true,
		Synced:  batch.Synced,
		Failed:  batch.Failed,
		Results: toSyncResults(batch.Results),
		Errors:  toSyncResults(batch.Errors),
	})
}

func (h *Handler) listMetrics(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be a positive integer", requestIDFromContext(r.Context()))
			return
		}
		limit = n
	}

	records, err := h.service.ListMetrics(r.Context(), chi.URLParam(r, "accountID"), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]metricRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, *toMetricResponse(rec))
	}
	writeJSON(w, http.StatusOK, listMetricsResponse{Success: true, Metrics: out})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := mapSyncError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "request_id", requestIDFromContext(r.Context()), "path", r.URL.Path, "error", err)
	}
	writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
}

// decodeBody decodes a single JSON value into dst. An empty body leaves dst untouched.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}
