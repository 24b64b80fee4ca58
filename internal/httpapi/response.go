package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"pulse-go/internal/pulse"
)

type apiError struct {
	Success   bool   `json:"success"`
	Code      string `json:"code"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, code, message, requestID string) {
	writeJSON(w, statusCode, apiError{
		Success:   false,
		Code:      code,
		Error:     message,
		RequestID: requestID,
	})
}

// mapSyncError maps the sync error taxonomy to an HTTP status and code.
func mapSyncError(err error) (int, string) {
	switch {
	case errors.Is(err, pulse.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, pulse.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, pulse.ErrConfiguration):
		return http.StatusInternalServerError, "CONFIGURATION_ERROR"
	case errors.Is(err, pulse.ErrUpstream):
		return http.StatusInternalServerError, "UPSTREAM_ERROR"
	case errors.Is(err, pulse.ErrTransport):
		return http.StatusInternalServerError, "TRANSPORT_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
