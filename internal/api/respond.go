package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rohitkotecha14/sellscale-challenge/internal/apperr"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError translates domain errors into client-facing status codes.
// Anything outside the taxonomy collapses to a generic 500 so internal detail
// is never leaked.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		validationErr   *apperr.ValidationError
		positionErr     *apperr.PositionNotFoundError
		insufficientErr *apperr.InsufficientQuantityError
	)
	switch {
	case errors.Is(err, apperr.ErrUsernameTaken):
		writeError(w, http.StatusBadRequest, "Username is already registered")
	case errors.Is(err, apperr.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "Email is already registered")
	case errors.Is(err, apperr.ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, "Invalid username or password")
	case errors.Is(err, apperr.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "Not authenticated")
	case errors.Is(err, apperr.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, apperr.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "API rate limit exceeded")
	case errors.Is(err, apperr.ErrUpstreamUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Market data provider unavailable")
	case errors.As(err, &validationErr),
		errors.As(err, &positionErr),
		errors.As(err, &insufficientErr):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("internal error", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
