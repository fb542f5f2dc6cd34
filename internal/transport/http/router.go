package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"auth/internal/dto"
	"auth/internal/netutil"
	obsmw "auth/internal/observability/middleware"
	"auth/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 1 << 20

type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	TrustProxy  bool
	CORSOrigins []string
	// RateLimit is the number of requests allowed per minute per client IP.
	// Zero disables the limiter.
	RateLimit int
}

type handler struct {
	auth       service.AuthService
	trustProxy bool
}

func NewRouter(auth service.AuthService, tokens service.TokenService, db Pinger, opts Options) http.Handler {
	h := &handler{auth: auth, trustProxy: opts.TrustProxy}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(obsmw.WithRequestAndTrace)
	r.Use(obsmw.WithMetrics)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type", obsmw.HeaderRequestID, obsmw.HeaderTraceID},
			ExposedHeaders: []string{obsmw.HeaderRequestID, obsmw.HeaderTraceID},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			slog.Error("health check failed", "error", err, "request_id", obsmw.RequestIDFromContext(r.Context()))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		if opts.RateLimit > 0 {
			r.Use(httprate.Limit(opts.RateLimit, time.Minute, httprate.WithKeyFuncs(h.rateLimitKey)))
		}
		r.Post("/register", h.registerPhone)
		r.Post("/verify-otp", h.verifyOTP)
		r.Post("/email/register", h.registerEmail)
		r.Post("/email/login", h.loginEmail)

		r.Group(func(pr chi.Router) {
			pr.Use(NewBearerAuth(tokens).Middleware)
			pr.Get("/me", h.me)
		})
	})

	return r
}

func (h *handler) registerPhone(w http.ResponseWriter, r *http.Request) {
	var req dto.PhoneRegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.auth.RegisterPhone(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.auth.VerifyOTP(r.Context(), req, h.clientIP(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) registerEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.EmailRegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.auth.RegisterEmail(r.Context(), req, h.clientIP(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) loginEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.EmailLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.auth.LoginEmail(r.Context(), req, h.clientIP(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	sub, ok := SubjectFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	user, err := h.auth.Me(r.Context(), sub)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.UserResponse{Status: dto.StatusSuccess, User: user})
}

func (h *handler) clientIP(r *http.Request) string {
	return netutil.ClientIP(r, h.trustProxy)
}

func (h *handler) rateLimitKey(r *http.Request) (string, error) {
	return h.clientIP(r), nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}
