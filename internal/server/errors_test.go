package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/questline/treasurehunt/internal/hunt"
)

func TestWriteEngineErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", hunt.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("game: %w", hunt.ErrNotFound), http.StatusNotFound},
		{"unauthorized", hunt.ErrUnauthorized, http.StatusUnauthorized},
		{"exhausted", hunt.ErrExhausted, http.StatusConflict},
		{"validation", hunt.Invalid("teamName", "unknown team"), http.StatusBadRequest},
		{"state conflict", hunt.Conflict("game already started"), http.StatusConflict},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/session/submit", nil)

			writeEngineError(rec, logger, req, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestWriteEngineErrorNamesValidationField(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/games", nil)

	writeEngineError(rec, logger, req, hunt.Invalid("name", "too short"))

	var body struct {
		Error string `json:"error"`
		Field string `json:"field"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Field != "name" || body.Error != "too short" {
		t.Errorf("body = %+v, want the offending field named", body)
	}
}
