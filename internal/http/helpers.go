package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/interchange"
	"fintrack/internal/log"
)

// statusFor maps domain failures onto HTTP status codes. Anything unknown is
// an internal error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errMalformedBody):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrInsufficientBalance), errors.Is(err, core.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, core.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, core.ErrNothingToExport), errors.Is(err, core.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, interchange.ErrSheetExportDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrEmptyTitle),
		errors.Is(err, core.ErrEmptyCreditor),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrEmptyUsername),
		errors.Is(err, core.ErrNegativeAmount):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and replies with its mapped status. Internal errors
// are not echoed to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	logger := log.FromContext(r.Context())
	if code >= http.StatusInternalServerError && code != http.StatusServiceUnavailable {
		logger.ErrorContext(r.Context(), "Request failed", log.FieldError, err)
		InternalServerError("internal error").Write(w)
		return
	}
	logger.DebugContext(r.Context(), "Request rejected", log.FieldError, err, log.FieldStatusCode, code)
	ErrorResponse(code, err.Error()).Write(w)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}

// intParam returns the integer query parameter key, or def when absent or invalid.
func intParam(r *http.Request, key string, def int) int {
	if v := strings.TrimSpace(r.URL.Query().Get(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
