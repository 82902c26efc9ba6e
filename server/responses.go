package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-reddit-gateway/internal/errors"
)

const contentTypeJSON = "application/json; charset=utf-8"

// errorResponse is the uniform error body: a short machine category plus the
// upstream-sourced detail.
type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError translates the error taxonomy into an HTTP status. Rate limits
// and not-found upstream failures keep their own statuses instead of
// collapsing into 400.
func writeError(w http.ResponseWriter, err error) {
	writeErrorStatus(w, statusForError(err), err)
}

func writeErrorStatus(w http.ResponseWriter, status int, err error) {
	if status >= 500 {
		log.Error().Err(err).Msg("internal error")
	}
	writeJSON(w, status, errorResponse{Error: categoryForError(err), Detail: err.Error()})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, errors.ErrAuthentication),
		errors.Is(err, errors.ErrInvalidToken),
		errors.Is(err, errors.ErrTokenExpired),
		errors.Is(err, errors.ErrMalformedToken),
		errors.Is(err, errors.ErrInvalidTokenType):
		return http.StatusUnauthorized
	case errors.Is(err, errors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, errors.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrUpstream):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func categoryForError(err error) string {
	switch {
	case errors.Is(err, errors.ErrAuthentication):
		return "authentication_failed"
	case errors.Is(err, errors.ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, errors.ErrMalformedToken):
		return "malformed_token"
	case errors.Is(err, errors.ErrInvalidTokenType):
		return "invalid_token_type"
	case errors.Is(err, errors.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, errors.ErrForbidden):
		return "forbidden"
	case errors.Is(err, errors.ErrNotFound):
		return "not_found"
	case errors.Is(err, errors.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, errors.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, errors.ErrUpstream):
		return "upstream_error"
	default:
		return "internal_error"
	}
}
