package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/formatrack/server/internal/core"
	"github.com/formatrack/server/internal/logging"
)

// writeJSON encodes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent; logging is all that is left.
		slog.Error("json encode error", "error", err)
	}
}

// writeError writes a `{"error": message}` body with the given status.
// The full detail is logged server-side with the request id.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", message,
	)
	writeJSON(w, status, map[string]string{"error": message})
}

// respondError maps core error kinds onto HTTP statuses: validation
// errors are 400, missing rows 404, and everything else (storage
// failures included) 500 with the message passed through.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *core.ValidationError
		notFound   *core.NotFoundError
	)
	switch {
	case errors.As(err, &validation):
		writeError(w, r, http.StatusBadRequest, validation.Message)
	case errors.As(err, &notFound):
		writeError(w, r, http.StatusNotFound, notFound.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, err.Error())
	}
}
