package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/npc-forge/internal/storage"
	"github.com/jwebster45206/npc-forge/pkg/editor"
)

type ErrorResponse struct {
	Error string `json:"error"`
	// Confirm carries the question to ask the user when a destructive change
	// was declined. Repeat the request with ?confirm=true to approve it.
	Confirm string `json:"confirm,omitempty"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	writeJSON(w, logger, status, ErrorResponse{Error: message})
}

// statusFor maps editor and storage errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, editor.ErrInvalidFormat), errors.Is(err, editor.ErrIndexOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, editor.ErrMissingNpcID):
		return http.StatusUnprocessableEntity
	case errors.Is(err, editor.ErrCancelled), errors.Is(err, storage.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, storage.ErrSessionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
