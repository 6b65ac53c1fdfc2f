package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/questline/treasurehunt/internal/hunt"
)

// writeEngineError translates the engine's error taxonomy into HTTP
// responses. Anything outside the taxonomy is an internal failure: it
// is logged with full context and surfaced as a generic 500 that
// leaks nothing.
func writeEngineError(w http.ResponseWriter, logger *slog.Logger, r *http.Request, err error) {
	var ve *hunt.ValidationError
	var sc *hunt.StateConflictError

	switch {
	case errors.Is(err, hunt.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, hunt.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "invalid or expired session token")
	case errors.Is(err, hunt.ErrExhausted):
		writeError(w, http.StatusConflict, "attempts exhausted")
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": ve.Reason,
			"field": ve.Field,
		})
	case errors.As(err, &sc):
		writeError(w, http.StatusConflict, sc.Reason)
	default:
		logger.Error("internal error",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
