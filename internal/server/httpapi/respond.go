// Package httpapi exposes the HTTP/JSON API handlers.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/skribb-ai/backend/internal/errs"
)

// writeJSON encodes payload with the given status. Encoding failures are
// ignored: the status line is already on the wire.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// errorBody is the common failure shape: {success:false, message|error:string}.
type errorBody struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	Error        string `json:"error,omitempty"`
	RequiresAuth bool   `json:"requiresAuth,omitempty"`
	RetryAfter   int    `json:"retryAfter,omitempty"`
}

// statusFor maps sentinel errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, errs.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage strips the sentinel prefix, leaving the client-facing text.
func clientMessage(err error) string {
	msg := err.Error()
	for _, s := range []error{errs.ErrValidation, errs.ErrAlreadyExists, errs.ErrUnauthorized} {
		msg = strings.TrimPrefix(msg, s.Error()+": ")
	}
	return msg
}

// writeError maps err onto the wire. Validation, conflict, auth, and
// ownership errors carry their message; anything else is generic.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusConflict:
		writeJSON(w, status, errorBody{Message: clientMessage(err)})
	case http.StatusForbidden:
		writeJSON(w, status, errorBody{Message: "You do not have permission to access this resource"})
	case http.StatusNotFound:
		writeJSON(w, status, errorBody{Message: "Not found"})
	case http.StatusTooManyRequests:
		writeJSON(w, status, errorBody{Message: "Too many login attempts. Please try again later."})
	default:
		writeJSON(w, status, errorBody{Message: "Internal server error"})
	}
}

// writeUpstreamError reports an external-service failure. Raw upstream detail
// is attached only outside production.
func (s *Server) writeUpstreamError(w http.ResponseWriter, generic string, err error) {
	body := errorBody{Error: generic}
	if s.dev {
		body.Error = generic + ": " + err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, body)
}
