package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	domerrors "github.com/amirhosseinghanipour/taskmanager/internal/domain/errors"
)

// API error codes returned alongside the HTTP status for stable client handling.
const (
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidation       = "validation_failed"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "rate_limited"
	ErrCodeUnsupportedMedia = "unsupported_media_type"
	ErrCodeInternal         = "internal_error"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Status    int                    `json:"status"`
	Message   string                 `json:"message"`
	Timestamp time.Time              `json:"timestamp"`
	Path      string                 `json:"path"`
	Code      string                 `json:"code,omitempty"`
	Errors    []domerrors.FieldError `json:"errors,omitempty"`
}

// WriteError sends an ErrorResponse. If errCode is empty, a default is derived from status.
func WriteError(w http.ResponseWriter, r *http.Request, status int, errCode, message string, fields ...domerrors.FieldError) {
	if errCode == "" {
		errCode = DefaultErrCode(status)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Status:    status,
		Message:   message,
		Timestamp: time.Now().UTC(),
		Path:      r.URL.Path,
		Code:      errCode,
		Errors:    fields,
	})
}

func DefaultErrCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrCodeInvalidRequest
	case http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusConflict:
		return ErrCodeConflict
	case http.StatusUnsupportedMediaType:
		return ErrCodeUnsupportedMedia
	case http.StatusTooManyRequests:
		return ErrCodeRateLimited
	default:
		return ErrCodeInternal
	}
}
