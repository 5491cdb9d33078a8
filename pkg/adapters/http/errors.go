package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/recoverly/flowedit/pkg/domain"
	"github.com/recoverly/flowedit/pkg/persistence/middleware"
)

// errorBody is the JSON shape of every non-2xx response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// statusFor maps domain errors to HTTP status codes and stable error codes.
// Dangling references are checked first: they may be wrapped in an
// InvalidOperationError.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrDanglingReference):
		return http.StatusConflict, "dangling_reference"
	case errors.Is(err, domain.ErrInvalidOperation):
		return http.StatusBadRequest, "invalid_operation"
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, domain.ErrAutomationNotFound):
		return http.StatusNotFound, "automation_not_found"
	case errors.Is(err, domain.ErrTemplateNotFound):
		return http.StatusNotFound, "template_not_found"
	case errors.Is(err, middleware.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "store_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, errorBody{Error: err.Error(), Code: code})
}

// fail writes the mapped error and logs it at a level matching its severity.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, attrs ...any) {
	status, code := statusFor(err)
	attrs = append(attrs, "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", attrs...)
	} else {
		s.logger.Warn("request rejected", attrs...)
	}
	writeError(w, status, code, err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}
