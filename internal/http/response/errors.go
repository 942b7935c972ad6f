package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/solenne/studio-booking/internal/domain"
	"github.com/solenne/studio-booking/pkg/logger"
)

// ErrorResponse is the JSON error envelope shared by every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Common error codes
const (
	CodeInvalidInput  = "INVALID_INPUT"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeRateLimit     = "RATE_LIMIT_EXCEEDED"
	CodeAccountLocked = "ACCOUNT_LOCKED"
	CodeInternalError = "INTERNAL_ERROR"
)

func WriteJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func WriteError(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// MapError converts service errors into HTTP responses. Known sentinels
// keep their message; anything else is logged in full and surfaced as a
// generic 500 with no internal detail.
func MapError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, err.Error(), CodeInvalidInput)
	case errors.Is(err, domain.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error(), CodeNotFound)
	case errors.Is(err, domain.ErrOverlap):
		WriteError(w, http.StatusConflict, err.Error(), CodeConflict)
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrInvalidToken):
		WriteError(w, http.StatusUnauthorized, err.Error(), CodeUnauthorized)
	case errors.Is(err, domain.ErrAccountLocked):
		WriteError(w, http.StatusForbidden, err.Error(), CodeAccountLocked)
	default:
		logger.ErrorContext(r.Context(), "Unexpected error", "error", err, "path", r.URL.Path)
		WriteError(w, http.StatusInternalServerError, "internal error", CodeInternalError)
	}
}

// Convenience writers
func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message, CodeInvalidInput)
}

func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message, CodeUnauthorized)
}

func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message, CodeForbidden)
}

func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message, CodeNotFound)
}

func Conflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, message, CodeConflict)
}

func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message, CodeInternalError)
}
