package http

import (
	"context"
	"errors"
	"net/http"

	"salesdash/internal/amqp"
	"salesdash/internal/core"
	"salesdash/internal/export"
	"salesdash/internal/log"
	"salesdash/internal/middleware/trace"
)

var validationErrors = []error{
	ErrBadRequest,
	core.ErrInvalidThreshold,
	core.ErrInvalidChartType,
	core.ErrEmptyFilterValue,
	core.ErrInvalidFilterYear,
	core.ErrUnknownAction,
	core.ErrUnknownQuickFilter,
	export.ErrUnknownFormat,
	amqp.ErrInvalidRequest,
}

// statusForError maps input errors to 400, a missing store to 503 and
// everything else to 500.
func statusForError(err error) int {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	if errors.Is(err, errNoStore) {
		return http.StatusServiceUnavailable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// writeError logs server-side failures and writes the JSON error body.
// Internal error text is not exposed to clients.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusForError(err)
	msg := err.Error()
	if status >= 500 {
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, log.ComponentHTTP, op, nil)
		msg = http.StatusText(status)
	}
	ErrorResponse(status, msg).
		Data(ErrorBody{Error: msg, RequestID: trace.GetRequestID(r.Context())}).
		Write(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	NewJSONResponse().Status(status).Data(v).Write(w)
}

// allowMethods writes a 405 and returns false when r.Method is not listed.
func allowMethods(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	allow := ""
	for i, m := range methods {
		if i > 0 {
			allow += ", "
		}
		allow += m
	}
	MethodNotAllowedError(allow).Write(w)
	return false
}
