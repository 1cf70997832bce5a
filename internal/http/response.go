package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"daybook/internal/core"
	"daybook/internal/ledger"
	"daybook/internal/log"
	"daybook/internal/services"
)

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, services.ErrRangeTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotesTooLong):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrEntryNotProvisioned):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as JSON. Server-side failures are logged and their
// details withheld from the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		fields := log.NewFields().WithRequestID(requestIDFrom(r.Context()))
		s.requests.LogError(r.Context(), "Request failed", err, op, fields)
		msg = http.StatusText(status)
	} else {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Request rejected",
			log.FieldOperation, op,
			log.FieldError, err)
	}
	writeJSON(w, status, errorBody{Error: msg, RequestID: requestIDFrom(r.Context())})
}
