package http

import (
	"errors"
	"log/slog"
	"net/http"

	"auth/internal/domain"
	"auth/internal/dto"
	obsmw "auth/internal/observability/middleware"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrDuplicate),
		errors.Is(err, domain.ErrInvalidOTP):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status code. Messages of unclassified errors
// are logged and replaced with a generic one.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch {
	case errors.Is(err, domain.ErrDelivery):
		msg = domain.ErrDelivery.Error()
	case status == http.StatusInternalServerError:
		msg = "internal server error"
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "path", r.URL.Path, "error", err,
			"request_id", obsmw.RequestIDFromContext(r.Context()), "trace_id", obsmw.TraceIDFromContext(r.Context()))
	}
	writeMessage(w, status, msg)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.StatusResponse{Status: dto.StatusError, Message: msg})
}
