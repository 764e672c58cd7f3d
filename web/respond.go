// ABOUTME: JSON response helpers and error-to-status mapping for the REST API
// ABOUTME: Attaches collected backend warnings to responses
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/harperreed/dealdesk/hook"
	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/records"
	"github.com/harperreed/dealdesk/service"
)

type errorBody struct {
	Error    string            `json:"error"`
	Fields   map[string]string `json:"fields,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string, warnings []string) {
	writeJSON(w, status, errorBody{Error: msg, Warnings: warnings})
}

// writeStoreError maps a failed store call onto a status code.
func writeStoreError(w http.ResponseWriter, err error, col *records.Collector) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), col.Messages())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, err.Error(), col.Messages())
	default:
		writeError(w, http.StatusBadGateway, err.Error(), col.Messages())
	}
}

func capture(ctx context.Context) (context.Context, *records.Collector) {
	var col records.Collector
	return records.WithNotifier(ctx, &col), &col
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id", nil)
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return false
	}
	return true
}

// held returns the server's copy of a collection. The first request loads
// it; later requests reuse it unless ?refresh=1 is set or the last load
// failed or came back degraded.
func held[T hook.Entity, In any](ctx context.Context, r *http.Request, h *hook.Hook[T, In]) hook.State[T] {
	before := h.Snapshot()
	state := h.Use(ctx)
	if before.Loading {
		return state
	}
	if r.URL.Query().Get("refresh") == "1" || state.Err != "" || state.Degraded {
		_ = h.Refetch(ctx)
		state = h.Snapshot()
	}
	return state
}

func optional(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
