// Package httpx holds the JSON envelope helpers shared by the HTTP handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayush/blog-app/backend/internal/common"
	"github.com/ayush/blog-app/backend/internal/logging"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Error writes the {"error": msg} envelope.
func Error(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// StatusFor maps a domain error to its HTTP status and client-facing message.
// notFound is the message used for common.ErrNotFound.
func StatusFor(err error, notFound string) (int, string) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Msg
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, notFound
	case errors.Is(err, common.ErrDuplicateKey):
		return http.StatusConflict, "already exists"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// WriteError maps err to a status and writes the envelope. Only unexpected
// failures are logged; their detail never reaches the client.
func WriteError(w http.ResponseWriter, r *http.Request, log logging.Logger, op string, err error, notFound string) {
	status, msg := StatusFor(err, notFound)
	if status == http.StatusInternalServerError {
		log.Error(r.Context(), op+" failed", "err", err, "path", r.URL.Path)
	}
	Error(w, status, msg)
}

// DecodeJSON decodes the request body into v and writes a 400 on failure.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
