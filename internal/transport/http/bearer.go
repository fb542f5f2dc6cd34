package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"auth/internal/domain"
	obsmw "auth/internal/observability/middleware"
	"auth/internal/service"
)

// BearerAuth validates access tokens issued by this service and puts the
// subject into the request context.
type BearerAuth struct {
	tokens service.TokenService
}

func NewBearerAuth(tokens service.TokenService) *BearerAuth {
	return &BearerAuth{tokens: tokens}
}

func (b *BearerAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := obsmw.RequestIDFromContext(r.Context())
		traceID := obsmw.TraceIDFromContext(r.Context())
		raw := r.Header.Get("Authorization")
		if len(raw) < len("Bearer ") || !strings.EqualFold(raw[:len("Bearer ")], "bearer ") {
			writeMessage(w, http.StatusUnauthorized, "missing bearer token")
			slog.Warn("auth missing bearer", "request_id", reqID, "trace_id", traceID)
			return
		}
		tokStr := strings.TrimSpace(raw[len("Bearer "):])

		sub, err := b.tokens.Parse(tokStr)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "invalid token")
			slog.Warn("auth invalid token", "error", err, "request_id", reqID, "trace_id", traceID)
			return
		}
		next.ServeHTTP(w, r.WithContext(contextWithSubject(r.Context(), sub)))
	})
}

type subjectKey struct{}

func contextWithSubject(ctx context.Context, sub domain.UserID) context.Context {
	return context.WithValue(ctx, subjectKey{}, sub)
}

func SubjectFrom(ctx context.Context) (domain.UserID, bool) {
	v, ok := ctx.Value(subjectKey{}).(domain.UserID)
	return v, ok
}
