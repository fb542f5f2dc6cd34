package impl

import (
	"context"
	"errors"
	"log/slog"

	"auth/internal/config"
	"auth/internal/domain"
	"auth/internal/dto"
	"auth/internal/observability/metrics"
	"auth/internal/observability/middleware"
	"auth/internal/service"
	"auth/internal/store"
	"auth/internal/validation"
)

// AuthServiceImpl drives the phone and email flows and shapes their
// results for the transport layer.
type AuthServiceImpl struct {
	Store       dataStore
	OTP         service.OTPService
	Credentials service.CredentialService
}

// NewAuthServiceImpl wires the phone and email flows on top of st.
func NewAuthServiceImpl(st *store.Store, cfg config.Config, sender service.SMSSender, tokens service.TokenService) *AuthServiceImpl {
	ds := newStoreAdapter(st)
	apps := NewAppUsageServiceImpl(ds, cfg.DefaultAppName)
	limiter := NewRateLimiterImpl(ds, cfg.LoginWindow, cfg.MaxFailedLogins)

	return &AuthServiceImpl{
		Store:       ds,
		OTP:         NewOTPServiceImpl(ds, sender, tokens, apps, limiter, cfg.OTPTTL),
		Credentials: NewCredentialServiceImpl(ds, NewPasswordServiceArgon2id(), tokens, apps, limiter, cfg.MinPasswordLength),
	}
}

func (a *AuthServiceImpl) RegisterPhone(ctx context.Context, r dto.PhoneRegisterRequest) (*dto.StatusResponse, error) {
	if err := validation.Struct(r); err != nil {
		return nil, err
	}
	if _, err := a.OTP.Issue(ctx, r.PhoneNumber); err != nil {
		logFailure(ctx, "otp issue failed", err)
		return nil, err
	}
	slog.Info("otp sent", "request_id", middleware.RequestIDFromContext(ctx), "trace_id", middleware.TraceIDFromContext(ctx))
	return &dto.StatusResponse{Status: dto.StatusSuccess, Message: "OTP sent successfully"}, nil
}

func (a *AuthServiceImpl) VerifyOTP(ctx context.Context, r dto.VerifyOTPRequest, ip string) (*dto.AuthResponse, error) {
	if err := validation.Struct(r); err != nil {
		return nil, err
	}
	res, err := a.OTP.Verify(ctx, domain.VerifyInput{
		PhoneNumber: r.PhoneNumber,
		Code:        r.OTP,
		Name:        r.Name,
		AppName:     r.AppName,
		IP:          ip,
	})
	if err != nil {
		metrics.AuthLoginsTotal.WithLabelValues("phone", resultLabel(err)).Inc()
		logFailure(ctx, "otp verification failed", err)
		return nil, err
	}
	if res.Created {
		metrics.AuthRegistrationsTotal.WithLabelValues("phone", "success").Inc()
	}
	metrics.AuthLoginsTotal.WithLabelValues("phone", "success").Inc()
	slog.Info("otp verified", "user_id", res.User.ID, "created", res.Created,
		"request_id", middleware.RequestIDFromContext(ctx), "trace_id", middleware.TraceIDFromContext(ctx))
	return authResponse(res), nil
}

func (a *AuthServiceImpl) RegisterEmail(ctx context.Context, r dto.EmailRegisterRequest, ip string) (*dto.AuthResponse, error) {
	if err := validation.Struct(r); err != nil {
		metrics.AuthRegistrationsTotal.WithLabelValues("email", "invalid").Inc()
		return nil, err
	}
	res, err := a.Credentials.RegisterEmailUser(ctx, r.Email, r.Password, r.Name, r.AppName)
	if err != nil {
		metrics.AuthRegistrationsTotal.WithLabelValues("email", resultLabel(err)).Inc()
		logFailure(ctx, "email registration failed", err)
		return nil, err
	}
	metrics.AuthRegistrationsTotal.WithLabelValues("email", "success").Inc()
	slog.Info("email user registered", "user_id", res.User.ID, "ip", ip,
		"request_id", middleware.RequestIDFromContext(ctx), "trace_id", middleware.TraceIDFromContext(ctx))
	return authResponse(res), nil
}

func (a *AuthServiceImpl) LoginEmail(ctx context.Context, r dto.EmailLoginRequest, ip string) (*dto.AuthResponse, error) {
	if err := validation.Struct(r); err != nil {
		return nil, err
	}
	res, err := a.Credentials.AuthenticateEmailUser(ctx, r.Email, r.Password, ip, r.AppName)
	if err != nil {
		metrics.AuthLoginsTotal.WithLabelValues("email", resultLabel(err)).Inc()
		logFailure(ctx, "email login failed", err)
		return nil, err
	}
	metrics.AuthLoginsTotal.WithLabelValues("email", "success").Inc()
	slog.Info("email user logged in", "user_id", res.User.ID,
		"request_id", middleware.RequestIDFromContext(ctx), "trace_id", middleware.TraceIDFromContext(ctx))
	return authResponse(res), nil
}

func (a *AuthServiceImpl) Me(ctx context.Context, userID domain.UserID) (*dto.UserView, error) {
	u, err := a.Store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, storeError("get user", err)
	}
	return dto.NewUserView(u), nil
}

func authResponse(res *domain.AuthResult) *dto.AuthResponse {
	return &dto.AuthResponse{
		Status:      dto.StatusSuccess,
		AccessToken: res.Token,
		TokenType:   "Bearer",
		ExpiresAt:   res.ExpiresAt,
		User:        dto.NewUserView(res.User),
	}
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrDuplicate):
		return "invalid"
	case errors.Is(err, domain.ErrInvalidOTP), errors.Is(err, domain.ErrInvalidCredentials):
		return "rejected"
	default:
		return "failure"
	}
}

// logFailure logs expected rejections at info and everything else at error.
func logFailure(ctx context.Context, msg string, err error) {
	reqID := middleware.RequestIDFromContext(ctx)
	traceID := middleware.TraceIDFromContext(ctx)
	if resultLabel(err) == "failure" {
		slog.Error(msg, "error", err, "request_id", reqID, "trace_id", traceID)
		return
	}
	slog.Info(msg, "reason", err.Error(), "request_id", reqID, "trace_id", traceID)
}
